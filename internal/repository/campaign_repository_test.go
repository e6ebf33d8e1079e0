package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	appErrors "github.com/leadmasterhq/leadmaster-backend/internal/errors"
	"github.com/leadmasterhq/leadmaster-backend/internal/model"
)

func TestCreateCampaignWritesSnapshotAtomically(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	c := &model.Campaign{
		ID:           "camp-1",
		Subject:      "Q3 outreach",
		Category:     "outreach",
		HTMLTemplate: "<p>hi</p>",
		Stats:        model.CampaignStats{TotalSent: 2, Delivered: 2, Failed: 0},
		Recipients: []model.RecipientStat{
			{ID: "rec-1", Position: 0, Email: "a@x.com", Status: model.RecipientStatusSent},
			{ID: "rec-2", Position: 1, Email: "b@x.com", Status: model.RecipientStatusSent},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO campaigns")).
		WithArgs("camp-1", "Q3 outreach", "outreach", "<p>hi</p>", 2, 2, 0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO campaign_recipients")).
		WithArgs("rec-1", "camp-1", 0, "a@x.com", "SENT").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO campaign_recipients")).
		WithArgs("rec-2", "camp-1", 1, "b@x.com", "SENT").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	repo := &CampaignRepository{DB: db}
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRecordOpenRecomputesAggregates(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE campaign_recipients")).
		WithArgs("rec-1", "camp-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE campaigns")).
		WithArgs("camp-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := &CampaignRepository{DB: db}
	if err := repo.RecordOpen(context.Background(), "camp-1", "rec-1"); err != nil {
		t.Fatalf("RecordOpen returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRecordOpenUnknownRecipient(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE campaign_recipients")).
		WithArgs("ghost", "camp-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	repo := &CampaignRepository{DB: db}
	err := repo.RecordOpen(context.Background(), "camp-1", "ghost")
	if !appErrors.IsNotFound(err) {
		t.Fatalf("expected a not-found error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGetByIDUnknownCampaign(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM campaigns WHERE id = $1")).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := &CampaignRepository{DB: db}
	_, err := repo.GetByID(context.Background(), "nope")
	if !appErrors.IsNotFound(err) {
		t.Fatalf("expected a not-found error, got %v", err)
	}
}

func TestGetByIDOrdersRecipientsByPosition(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM campaigns WHERE id = $1")).
		WithArgs("camp-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "subject", "category", "html_template", "analysis_note",
			"total_sent", "delivered", "failed", "unique_opens", "total_opens", "created_at",
		}).AddRow("camp-1", "Q3 outreach", "outreach", "<p>hi</p>", nil, 2, 2, 0, 1, 3, now))

	mock.ExpectQuery(regexp.QuoteMeta("FROM campaign_recipients")).
		WithArgs("camp-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "campaign_id", "position", "email", "status", "open_count", "last_open_at",
		}).
			AddRow("rec-1", "camp-1", 0, "a@x.com", "OPENED", 3, now).
			AddRow("rec-2", "camp-1", 1, "b@x.com", "SENT", 0, nil))

	repo := &CampaignRepository{DB: db}
	c, err := repo.GetByID(context.Background(), "camp-1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if len(c.Recipients) != 2 {
		t.Fatalf("expected 2 recipients, got %d", len(c.Recipients))
	}
	if c.Recipients[0].Email != "a@x.com" || c.Recipients[1].Email != "b@x.com" {
		t.Error("recipients not in snapshot order")
	}
	if c.Stats.TotalOpens != 3 || c.Stats.UniqueOpens != 1 {
		t.Errorf("unexpected aggregates: %+v", c.Stats)
	}
}

func TestAnnotateUnknownCampaign(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE campaigns SET analysis_note")).
		WithArgs("nope", "interesting").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := &CampaignRepository{DB: db}
	err := repo.Annotate(context.Background(), "nope", "interesting")
	if !appErrors.IsNotFound(err) {
		t.Fatalf("expected a not-found error, got %v", err)
	}
}
