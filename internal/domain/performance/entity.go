package performance

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft        Status = "draft"
	StatusSubmitted    Status = "submitted"
	StatusAcknowledged Status = "acknowledged"
)

// Scores maps a criterion name to a 1..5 rating. Stored as JSONB.
type Scores map[string]int

func (s Scores) Value() (driver.Value, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s)
}

func (s *Scores) Scan(src interface{}) error {
	if src == nil {
		*s = Scores{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported scores type %T", src)
	}
	return json.Unmarshal(raw, s)
}

// OverallRating averages the criterion scores, rounded to 2 decimals.
// Zero when no criteria were scored.
func (s Scores) OverallRating() decimal.Decimal {
	if len(s) == 0 {
		return decimal.Zero
	}
	sum := 0
	for _, score := range s {
		sum += score
	}
	return decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(len(s)))).Round(2)
}

// Review is a periodic performance review. It moves
// draft -> submitted -> acknowledged; only drafts are editable, and only the
// reviewed employee acknowledges.
type Review struct {
	ID             string
	EmployeeID     string
	ReviewerID     string
	PeriodYear     int
	PeriodQuarter  *int
	Scores         Scores
	OverallRating  decimal.Decimal
	Strengths      *string
	Improvements   *string
	Status         Status
	SubmittedAt    *time.Time
	AcknowledgedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Joined fields, populated by list/detail queries
	EmployeeName *string
	ReviewerName *string
}
