// internal/model/campaign_log.go
package model

import "time"

// Audit log actions, one entry per delivery attempt outcome.
const (
	LogActionSent        = "SENT"
	LogActionFailed      = "FAILED"
	LogActionRetried     = "RETRIED"
	LogActionHardBounced = "HARD_BOUNCED"
)

// CampaignLog is append-only; it is the audit anchor for every attempt.
type CampaignLog struct {
	ID        int       `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Action    string    `db:"action" json:"action"`
	Details   string    `db:"details" json:"details"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}
