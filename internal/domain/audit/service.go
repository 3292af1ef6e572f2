package audit

import "context"

// Recorder persists audit entries without failing the caller: persistence
// errors are logged and swallowed. Services depend on this rather than the
// repository so a broken audit store can never revert a committed change.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

type AuditService interface {
	Recorder
	List(ctx context.Context, filter Filter) ([]EntryResponse, int, error)
}
