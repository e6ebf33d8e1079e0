package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/leadmasterhq/leadmaster-backend/internal/model"
)

// CampaignLogRepositoryInterface reads the append-only delivery audit trail.
// Writes happen inside LeadRepository.RecordOutcome so the lead mutation and
// its audit entry commit in one transaction.
type CampaignLogRepositoryInterface interface {
	ListByEmail(ctx context.Context, email string, limit int) ([]model.CampaignLog, error)
}

type CampaignLogRepository struct {
	DB *sql.DB
}

var _ CampaignLogRepositoryInterface = (*CampaignLogRepository)(nil)

func (r *CampaignLogRepository) ListByEmail(ctx context.Context, email string, limit int) ([]model.CampaignLog, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, email, action, COALESCE(details, ''), timestamp
        FROM campaign_logs
        WHERE email = $1
        ORDER BY timestamp DESC, id DESC
        LIMIT $2
    `, email, limit)
	if err != nil {
		return nil, fmt.Errorf("list campaign logs: %w", err)
	}
	defer rows.Close()

	logs := []model.CampaignLog{}
	for rows.Next() {
		var l model.CampaignLog
		if err := rows.Scan(&l.ID, &l.Email, &l.Action, &l.Details, &l.Timestamp); err != nil {
			return nil, fmt.Errorf("scan campaign log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
