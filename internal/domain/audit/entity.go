package audit

import "time"

// Values is the before/after snapshot of a change, stored as JSONB.
type Values map[string]interface{}

// Entry is one append-only audit row. Entries are never updated or deleted.
type Entry struct {
	ID         string
	ActorID    *string
	Action     string
	EntityType string
	EntityID   string
	OldValues  Values
	NewValues  Values
	RequestID  *string
	IPAddress  *string
	CreatedAt  time.Time
}

// Common actions. Transition entries use the transition action verbatim
// (approve, reject, cancel, delegate) so the trail reads like the API.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)
