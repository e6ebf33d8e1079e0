package repository

import (
	"context"
	"database/sql"
	"fmt"

	appErrors "github.com/leadmasterhq/leadmaster-backend/internal/errors"
	"github.com/leadmasterhq/leadmaster-backend/internal/model"
)

// CampaignRepositoryInterface owns campaign snapshots and their aggregate
// stats. The recipient list is fixed at creation; only open counters and
// the aggregates derived from them mutate afterward.
type CampaignRepositoryInterface interface {
	// Create persists the campaign and its full recipient snapshot in a
	// single transaction; partial writes are not acceptable.
	Create(ctx context.Context, c *model.Campaign) error

	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	List(ctx context.Context, limit int) ([]model.Campaign, error)

	// RecordOpen increments the open counter of the recipient addressed by
	// the tracking identifiers and recomputes uniqueOpens/totalOpens from
	// the full recipient list, all in one transaction.
	RecordOpen(ctx context.Context, campaignID, recipientID string) error

	// Annotate attaches a derived note; the campaign must exist.
	Annotate(ctx context.Context, campaignID, note string) error
}

type CampaignRepository struct {
	DB *sql.DB
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin campaign tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
        INSERT INTO campaigns
            (id, subject, category, html_template, total_sent, delivered, failed,
             unique_opens, total_opens, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, 0, 0, NOW())
    `, c.ID, c.Subject, c.Category, c.HTMLTemplate,
		c.Stats.TotalSent, c.Stats.Delivered, c.Stats.Failed)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}

	for _, rec := range c.Recipients {
		_, err = tx.ExecContext(ctx, `
            INSERT INTO campaign_recipients
                (id, campaign_id, position, email, status, open_count)
            VALUES ($1, $2, $3, $4, $5, 0)
        `, rec.ID, c.ID, rec.Position, rec.Email, rec.Status)
		if err != nil {
			return fmt.Errorf("insert campaign recipient %s: %w", rec.Email, err)
		}
	}

	return tx.Commit()
}

func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	c := &model.Campaign{}
	err := r.DB.QueryRowContext(ctx, `
        SELECT id, subject, category, html_template, analysis_note,
               total_sent, delivered, failed, unique_opens, total_opens, created_at
        FROM campaigns WHERE id = $1
    `, id).Scan(
		&c.ID, &c.Subject, &c.Category, &c.HTMLTemplate, &c.AnalysisNote,
		&c.Stats.TotalSent, &c.Stats.Delivered, &c.Stats.Failed,
		&c.Stats.UniqueOpens, &c.Stats.TotalOpens, &c.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, campaign_id, position, email, status, open_count, last_open_at
        FROM campaign_recipients
        WHERE campaign_id = $1
        ORDER BY position ASC
    `, id)
	if err != nil {
		return nil, fmt.Errorf("get campaign recipients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec model.RecipientStat
		if err := rows.Scan(&rec.ID, &rec.CampaignID, &rec.Position, &rec.Email,
			&rec.Status, &rec.OpenCount, &rec.LastOpenAt); err != nil {
			return nil, fmt.Errorf("scan campaign recipient: %w", err)
		}
		c.Recipients = append(c.Recipients, rec)
	}
	return c, rows.Err()
}

func (r *CampaignRepository) List(ctx context.Context, limit int) ([]model.Campaign, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, subject, category, html_template, analysis_note,
               total_sent, delivered, failed, unique_opens, total_opens, created_at
        FROM campaigns
        ORDER BY created_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []model.Campaign{}
	for rows.Next() {
		var c model.Campaign
		if err := rows.Scan(
			&c.ID, &c.Subject, &c.Category, &c.HTMLTemplate, &c.AnalysisNote,
			&c.Stats.TotalSent, &c.Stats.Delivered, &c.Stats.Failed,
			&c.Stats.UniqueOpens, &c.Stats.TotalOpens, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *CampaignRepository) RecordOpen(ctx context.Context, campaignID, recipientID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin open tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
        UPDATE campaign_recipients
        SET open_count = open_count + 1,
            status = 'OPENED',
            last_open_at = NOW()
        WHERE id = $1 AND campaign_id = $2
    `, recipientID, campaignID)
	if err != nil {
		return fmt.Errorf("record open: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.NewRecipientNotFound(campaignID, recipientID)
	}

	// Full recompute over the recipient set inside the same transaction.
	// Incremental counters drift under concurrent opens; these never do.
	res, err = tx.ExecContext(ctx, `
        UPDATE campaigns
        SET unique_opens = (
                SELECT COUNT(*) FROM campaign_recipients
                WHERE campaign_id = $1 AND open_count > 0
            ),
            total_opens = (
                SELECT COALESCE(SUM(open_count), 0) FROM campaign_recipients
                WHERE campaign_id = $1
            )
        WHERE id = $1
    `, campaignID)
	if err != nil {
		return fmt.Errorf("recompute open stats: %w", err)
	}
	n, err = res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.NewCampaignNotFound(campaignID)
	}

	return tx.Commit()
}

func (r *CampaignRepository) Annotate(ctx context.Context, campaignID, note string) error {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE campaigns SET analysis_note = $2 WHERE id = $1
    `, campaignID, note)
	if err != nil {
		return fmt.Errorf("annotate campaign: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.NewCampaignNotFound(campaignID)
	}
	return nil
}
