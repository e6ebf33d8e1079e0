// internal/service/campaign_service.go
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/leadmasterhq/leadmaster-backend/internal/model"
	"github.com/leadmasterhq/leadmaster-backend/internal/repository"
)

// CampaignRecipient is one target of a new campaign snapshot.
type CampaignRecipient struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// CampaignService owns campaign records and their open-tracking aggregates.
type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
}

// CreateCampaign builds an immutable recipient snapshot with initial
// optimistic status SENT and persists it atomically. The recipient list is
// fixed from this point on; only open counters mutate afterward.
func (s *CampaignService) CreateCampaign(ctx context.Context, subject, category, html string, recipients []CampaignRecipient) (*model.Campaign, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, fmt.Errorf("subject cannot be empty")
	}
	if strings.TrimSpace(html) == "" {
		return nil, fmt.Errorf("html template cannot be empty")
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("campaign needs at least one recipient")
	}

	c := &model.Campaign{
		ID:           uuid.New().String(),
		Subject:      subject,
		Category:     category,
		HTMLTemplate: html,
		Stats: model.CampaignStats{
			TotalSent: len(recipients),
			Delivered: len(recipients),
			Failed:    0,
		},
	}

	for i, r := range recipients {
		c.Recipients = append(c.Recipients, model.RecipientStat{
			ID:         uuid.New().String(),
			CampaignID: c.ID,
			Position:   i,
			Email:      r.Email,
			Status:     model.RecipientStatusSent,
		})
	}

	if err := s.CampaignRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RecordOpen resolves the opening recipient from the identifiers embedded
// in the tracking request and bumps the counters. Repeat hits are expected;
// each one raises totalOpens while uniqueOpens only grows on the first.
func (s *CampaignService) RecordOpen(ctx context.Context, campaignID, recipientID string) error {
	return s.CampaignRepo.RecordOpen(ctx, campaignID, recipientID)
}

// Annotate attaches a derived analysis note to an existing campaign.
func (s *CampaignService) Annotate(ctx context.Context, campaignID, note string) error {
	if strings.TrimSpace(note) == "" {
		return fmt.Errorf("analysis note cannot be empty")
	}
	return s.CampaignRepo.Annotate(ctx, campaignID, note)
}

// GetCampaign returns a campaign with its recipient stats.
func (s *CampaignService) GetCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	return s.CampaignRepo.GetByID(ctx, id)
}

// ListCampaigns returns recent campaigns, newest first.
func (s *CampaignService) ListCampaigns(ctx context.Context, limit int) ([]model.Campaign, error) {
	return s.CampaignRepo.List(ctx, limit)
}
