// internal/service/delivery_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/leadmasterhq/leadmaster-backend/internal/config"
	appErrors "github.com/leadmasterhq/leadmaster-backend/internal/errors"
	"github.com/leadmasterhq/leadmaster-backend/internal/logger"
	"github.com/leadmasterhq/leadmaster-backend/internal/model"
	"github.com/leadmasterhq/leadmaster-backend/internal/repository"
	"github.com/leadmasterhq/leadmaster-backend/internal/smtp"
)

// BatchThrottler paces successive sends within one batch so the provider
// is not hammered. Waiting is a scheduling property, not a correctness one.
type BatchThrottler interface {
	Wait(ctx context.Context) error
}

// TickResult summarizes one processed batch.
type TickResult struct {
	Claimed int
	Sent    int
	Errored int
	Bounced int
}

// DeliveryService runs one delivery batch per tick: verify the gateway,
// claim leased leads, send with throttling, record every outcome.
type DeliveryService struct {
	LeadRepo  repository.LeadRepositoryInterface
	Gateway   smtp.Gateway
	Throttler BatchThrottler
	SMTP      config.SMTPConfig
	Worker    config.WorkerConfig
	WorkerID  string
	Log       *logger.Logger
}

// ProcessTick executes one batch. A gateway verify failure aborts before
// anything is claimed: nothing changes state, nothing is logged to the
// audit trail. Per-lead failures are isolated; a lead's outcome write
// failure is reported but never aborts its siblings.
func (s *DeliveryService) ProcessTick(ctx context.Context) (TickResult, error) {
	var res TickResult

	if err := s.Gateway.Verify(ctx); err != nil {
		return res, fmt.Errorf("smtp verify: %w", err)
	}

	leads, err := s.LeadRepo.ClaimBatch(ctx, s.WorkerID, s.Worker.MaxAttempts, s.Worker.BatchSize)
	if err != nil {
		return res, fmt.Errorf("claim batch: %w", err)
	}
	res.Claimed = len(leads)
	if len(leads) == 0 {
		return res, nil
	}

	for i, lead := range leads {
		if i > 0 {
			if err := s.Throttler.Wait(ctx); err != nil {
				// Shutdown requested: the in-flight lead is done, stop
				// before claiming more work.
				s.Log.Info().Int("remaining", len(leads)-i).Msg("batch drained early")
				return res, nil
			}
		}
		if ctx.Err() != nil {
			return res, nil
		}

		s.deliver(ctx, lead, &res)
	}

	return res, nil
}

func (s *DeliveryService) deliver(ctx context.Context, lead *model.Lead, res *TickResult) {
	msg := smtp.Message{
		FromName:  s.SMTP.FromName,
		FromEmail: s.SMTP.FromEmail,
		To:        lead.Email,
		Subject:   s.Worker.Subject,
		HTML: RenderTemplate(s.Worker.Template, map[string]string{
			"username": lead.Name,
			"fullname": lead.Name,
		}),
	}

	messageID, sendErr := s.Gateway.Send(ctx, msg)
	if sendErr != nil {
		sendErr = smtp.Classify(lead.Email, sendErr)
	}

	status, action, details, lastError := s.outcomeFor(lead, messageID, sendErr)

	switch status {
	case model.LeadStatusSent:
		res.Sent++
	case model.LeadStatusHardBounce:
		res.Bounced++
	default:
		res.Errored++
	}

	// The send already happened; a shutdown signal cancelling ctx must not
	// lose the outcome, or the lead is re-sent after the lease expires.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()

	if err := s.LeadRepo.RecordOutcome(persistCtx, lead.Email, status, lastError, action, details); err != nil {
		perr := appErrors.NewPersistence(lead.Email, err)
		s.Log.Error().Err(perr).Str("email", lead.Email).Msg("outcome not persisted")
		return
	}

	if sendErr != nil {
		s.Log.Warn().Str("email", lead.Email).Str("status", status).
			Int("attempts", lead.Attempts+1).Err(sendErr).Msg("delivery failed")
	} else {
		s.Log.Info().Str("email", lead.Email).Str("message_id", messageID).Msg("delivered")
	}
}

// outcomeFor applies the retry policy: success is terminal SENT; a
// PermanentDeliveryError goes straight to HARD_BOUNCE without consuming
// the remaining attempts; a transient failure becomes HARD_BOUNCE only
// when this attempt reaches the cap.
func (s *DeliveryService) outcomeFor(lead *model.Lead, messageID string, sendErr error) (status, action, details string, lastError *string) {
	if sendErr == nil {
		return model.LeadStatusSent, model.LogActionSent,
			fmt.Sprintf("MessageID: %s", messageID), nil
	}

	errMsg := sendErr.Error()
	lastError = &errMsg
	attemptNo := lead.Attempts + 1

	if appErrors.IsPermanent(sendErr) || attemptNo >= s.Worker.MaxAttempts {
		return model.LeadStatusHardBounce, model.LogActionHardBounced, errMsg, lastError
	}

	// A failed retry is audited as RETRIED; a first failure as FAILED.
	action = model.LogActionFailed
	if lead.Status == model.LeadStatusError {
		action = model.LogActionRetried
	}
	return model.LeadStatusError, action, errMsg, lastError
}
