// internal/model/lead.go
package model

import "time"

// Lead delivery states. A lead is one row per distinct address; it is
// created on enqueue and never deleted.
const (
	LeadStatusPending    = "PENDING"
	LeadStatusSent       = "SENT"
	LeadStatusError      = "ERROR"
	LeadStatusHardBounce = "HARD_BOUNCE"
)

type Lead struct {
	Email     string     `db:"email" json:"email"`
	Name      string     `db:"name" json:"name"`
	Status    string     `db:"status" json:"status"`
	Attempts  int        `db:"attempts" json:"attempts"`
	LastError *string    `db:"last_error" json:"last_error,omitempty"`
	ClaimedBy *string    `db:"claimed_by" json:"-"`
	ClaimedAt *time.Time `db:"claimed_at" json:"-"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}
