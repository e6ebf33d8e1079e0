package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/leadmasterhq/leadmaster-backend/internal/model"
)

// LeadRepositoryInterface defines the recipient queue operations used by
// the delivery worker and the admission service.
type LeadRepositoryInterface interface {
	// Enqueue inserts a lead if absent. Re-enqueueing an existing address
	// is a silent no-op that never resets its state. Returns true when a
	// row was actually created.
	Enqueue(ctx context.Context, email, name string) (bool, error)

	// ClaimBatch leases up to n claimable leads for workerID, oldest
	// updated_at first, and returns them in that order.
	ClaimBatch(ctx context.Context, workerID string, maxAttempts, n int) ([]*model.Lead, error)

	// RecordOutcome atomically writes the lead row mutation (status,
	// attempts+1, last_error, lease cleared, updated_at) together with one
	// append-only audit entry.
	RecordOutcome(ctx context.Context, email, status string, lastError *string, action, details string) error

	GetByEmail(ctx context.Context, email string) (*model.Lead, error)
}

type LeadRepository struct {
	DB *sql.DB
}

var _ LeadRepositoryInterface = (*LeadRepository)(nil)

func (r *LeadRepository) Enqueue(ctx context.Context, email, name string) (bool, error) {
	// ON CONFLICT DO NOTHING makes the insert idempotent under concurrent
	// callers; a read-then-insert here would race.
	res, err := r.DB.ExecContext(ctx, `
        INSERT INTO leads (email, name, status, attempts, created_at, updated_at)
        VALUES ($1, $2, 'PENDING', 0, NOW(), NOW())
        ON CONFLICT (email) DO NOTHING
    `, email, name)
	if err != nil {
		return false, fmt.Errorf("enqueue lead: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// leaseTTL guards against claims orphaned by a crashed worker: an expired
// lease makes the row claimable again.
const leaseTTL = "5 minutes"

func (r *LeadRepository) ClaimBatch(ctx context.Context, workerID string, maxAttempts, n int) ([]*model.Lead, error) {
	rows, err := r.DB.QueryContext(ctx, `
        WITH claimed AS (
            UPDATE leads
            SET claimed_by = $1, claimed_at = NOW()
            WHERE email IN (
                SELECT email FROM leads
                WHERE status IN ('PENDING', 'ERROR')
                  AND attempts < $2
                  AND (claimed_at IS NULL OR claimed_at < NOW() - INTERVAL '`+leaseTTL+`')
                ORDER BY updated_at ASC
                LIMIT $3
                FOR UPDATE SKIP LOCKED
            )
            RETURNING email, name, status, attempts, last_error, created_at, updated_at
        )
        SELECT email, name, status, attempts, last_error, created_at, updated_at
        FROM claimed
        ORDER BY updated_at ASC
    `, workerID, maxAttempts, n)
	if err != nil {
		return nil, fmt.Errorf("claim batch: %w", err)
	}
	defer rows.Close()

	leads := []*model.Lead{}
	for rows.Next() {
		l := &model.Lead{}
		if err := rows.Scan(&l.Email, &l.Name, &l.Status, &l.Attempts, &l.LastError, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan claimed lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) RecordOutcome(ctx context.Context, email, status string, lastError *string, action, details string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin outcome tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
        UPDATE leads
        SET status = $2,
            attempts = attempts + 1,
            last_error = $3,
            claimed_by = NULL,
            claimed_at = NULL,
            updated_at = NOW()
        WHERE email = $1
    `, email, status, lastError)
	if err != nil {
		return fmt.Errorf("update lead outcome: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO campaign_logs (email, action, details, timestamp)
        VALUES ($1, $2, $3, NOW())
    `, email, action, details)
	if err != nil {
		return fmt.Errorf("append campaign log: %w", err)
	}

	return tx.Commit()
}

func (r *LeadRepository) GetByEmail(ctx context.Context, email string) (*model.Lead, error) {
	l := &model.Lead{}
	err := r.DB.QueryRowContext(ctx, `
        SELECT email, name, status, attempts, last_error, created_at, updated_at
        FROM leads WHERE email = $1
    `, email).Scan(&l.Email, &l.Name, &l.Status, &l.Attempts, &l.LastError, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return l, nil
}
