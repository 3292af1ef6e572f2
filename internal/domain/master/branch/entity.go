package branch

import "time"

type Branch struct {
	ID        string
	Name      string
	Address   *string
	Timezone  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
