// internal/model/campaign.go
package model

import "time"

// Recipient states within a campaign snapshot.
const (
	RecipientStatusSent   = "SENT"
	RecipientStatusFailed = "FAILED"
	RecipientStatusOpened = "OPENED"
)

// CampaignStats are owned entirely by the campaign store. uniqueOpens and
// totalOpens are recomputed from the full recipient list on every open,
// never drifted incrementally.
type CampaignStats struct {
	TotalSent   int `db:"total_sent" json:"total_sent"`
	Delivered   int `db:"delivered" json:"delivered"`
	Failed      int `db:"failed" json:"failed"`
	UniqueOpens int `db:"unique_opens" json:"unique_opens"`
	TotalOpens  int `db:"total_opens" json:"total_opens"`
}

type Campaign struct {
	ID           string          `db:"id" json:"id"`
	Subject      string          `db:"subject" json:"subject"`
	Category     string          `db:"category" json:"category"`
	HTMLTemplate string          `db:"html_template" json:"html_template"`
	AnalysisNote *string         `db:"analysis_note" json:"analysis_note,omitempty"`
	Stats        CampaignStats   `json:"stats"`
	Recipients   []RecipientStat `json:"recipients,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// RecipientStat is one entry of the immutable recipient snapshot. Only the
// open fields mutate after creation. ID is the stable identity embedded in
// tracking pixel URLs.
type RecipientStat struct {
	ID         string     `db:"id" json:"id"`
	CampaignID string     `db:"campaign_id" json:"-"`
	Position   int        `db:"position" json:"-"`
	Email      string     `db:"email" json:"email"`
	Status     string     `db:"status" json:"status"`
	OpenCount  int        `db:"open_count" json:"open_count"`
	LastOpenAt *time.Time `db:"last_open_at" json:"last_open_at,omitempty"`
}
