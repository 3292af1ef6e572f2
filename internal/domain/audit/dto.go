package audit

import "time"

type EntryResponse struct {
	ID         string     `json:"id"`
	ActorID    *string    `json:"actor_id,omitempty"`
	Action     string     `json:"action"`
	EntityType string     `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	OldValues  Values     `json:"old_values,omitempty"`
	NewValues  Values     `json:"new_values,omitempty"`
	RequestID  *string    `json:"request_id,omitempty"`
	IPAddress  *string    `json:"ip_address,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func ToResponse(e *Entry) *EntryResponse {
	return &EntryResponse{
		ID:         e.ID,
		ActorID:    e.ActorID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		OldValues:  e.OldValues,
		NewValues:  e.NewValues,
		RequestID:  e.RequestID,
		IPAddress:  e.IPAddress,
		CreatedAt:  e.CreatedAt,
	}
}
