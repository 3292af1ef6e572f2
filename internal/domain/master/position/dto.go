package position

import (
	"time"

	"github.com/kelola-hr/hrm-backend-go/internal/pkg/validator"
)

type PositionResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	DepartmentID   *string   `json:"department_id,omitempty"`
	DepartmentName *string   `json:"department_name,omitempty"`
	Level          int       `json:"level"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

func ToResponse(p *Position) *PositionResponse {
	return &PositionResponse{
		ID:             p.ID,
		Name:           p.Name,
		DepartmentID:   p.DepartmentID,
		DepartmentName: p.DepartmentName,
		Level:          p.Level,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
	}
}

type CreatePositionRequest struct {
	Name         string  `json:"name"`
	DepartmentID *string `json:"department_id,omitempty"`
	Level        int     `json:"level"`
}

func (r *CreatePositionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	} else if len(r.Name) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 100 characters",
		})
	}
	if r.Level < 0 || r.Level > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "level",
			Message: "level must be between 0 and 100",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdatePositionRequest struct {
	Name         *string `json:"name,omitempty"`
	DepartmentID *string `json:"department_id,omitempty"`
	Level        *int    `json:"level,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

func (r *UpdatePositionRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not be empty",
			})
		} else if len(*r.Name) > 100 {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not exceed 100 characters",
			})
		}
	}
	if r.Level != nil && (*r.Level < 0 || *r.Level > 100) {
		errs = append(errs, validator.ValidationError{
			Field:   "level",
			Message: "level must be between 0 and 100",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
