// internal/service/lead_service.go
package service

import (
	"context"

	"github.com/leadmasterhq/leadmaster-backend/internal/repository"
	"github.com/leadmasterhq/leadmaster-backend/internal/validation"
)

// RecipientValidator gates admission into the delivery queue.
type RecipientValidator interface {
	ValidateBatch(ctx context.Context, emails []string) []validation.Result
	ValidateEmail(ctx context.Context, email string) bool
}

// AdmissionResult reports what happened to one candidate address.
type AdmissionResult struct {
	Email    string `json:"email"`
	IsValid  bool   `json:"isValid"`
	Enqueued bool   `json:"enqueued"`
}

// LeadService admits candidate recipients: MX-validate the batch, then
// idempotently enqueue the valid ones. An invalid address never enters the
// delivery state machine.
type LeadService struct {
	LeadRepo  repository.LeadRepositoryInterface
	Validator RecipientValidator
}

// AdmitBatch validates all candidates (order-preserving fan-out) and
// enqueues the valid ones. Enqueue failures surface per address without
// disturbing siblings.
func (s *LeadService) AdmitBatch(ctx context.Context, candidates []CampaignRecipient) ([]AdmissionResult, error) {
	emails := make([]string, len(candidates))
	for i, c := range candidates {
		emails[i] = c.Email
	}

	verdicts := s.Validator.ValidateBatch(ctx, emails)

	results := make([]AdmissionResult, len(candidates))
	for i, v := range verdicts {
		results[i] = AdmissionResult{Email: v.Email, IsValid: v.IsValid}
		if !v.IsValid {
			continue
		}
		// Re-enqueueing an existing lead is a silent no-op but still
		// counts as admitted. A store error fails this address only.
		if _, err := s.LeadRepo.Enqueue(ctx, candidates[i].Email, candidates[i].Name); err != nil {
			continue
		}
		results[i].Enqueued = true
	}

	return results, nil
}
