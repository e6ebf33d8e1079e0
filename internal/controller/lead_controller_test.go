package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadmasterhq/leadmaster-backend/internal/model"
	"github.com/leadmasterhq/leadmaster-backend/internal/service"
)

type memLeadQueue struct {
	leads map[string]*model.Lead
}

func newMemLeadQueue() *memLeadQueue {
	return &memLeadQueue{leads: map[string]*model.Lead{}}
}

func (q *memLeadQueue) Enqueue(ctx context.Context, email, name string) (bool, error) {
	if _, ok := q.leads[email]; ok {
		return false, nil
	}
	q.leads[email] = &model.Lead{Email: email, Name: name, Status: model.LeadStatusPending}
	return true, nil
}

func (q *memLeadQueue) ClaimBatch(ctx context.Context, workerID string, maxAttempts, n int) ([]*model.Lead, error) {
	return nil, nil
}

func (q *memLeadQueue) RecordOutcome(ctx context.Context, email, status string, lastError *string, action, details string) error {
	return nil
}

func (q *memLeadQueue) GetByEmail(ctx context.Context, email string) (*model.Lead, error) {
	return q.leads[email], nil
}

type memLogStore struct {
	logs map[string][]model.CampaignLog
}

func (s *memLogStore) ListByEmail(ctx context.Context, email string, limit int) ([]model.CampaignLog, error) {
	return s.logs[email], nil
}

func leadRouter(q *memLeadQueue, logs *memLogStore, valid map[string]bool) chi.Router {
	ctrl := &LeadController{
		LeadService: &service.LeadService{
			LeadRepo:  q,
			Validator: &stubValidator{valid: valid},
		},
		LogRepo: logs,
	}
	r := chi.NewRouter()
	r.Post("/api/leads", ctrl.CreateLeads)
	r.Get("/api/leads/{email}/logs", ctrl.LeadLogs)
	return r
}

func TestCreateLeadsAdmitsValidOnly(t *testing.T) {
	q := newMemLeadQueue()
	router := leadRouter(q, &memLogStore{}, map[string]bool{"a@x.com": true})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(`{
		"recipients": [{"email": "a@x.com", "name": "Ana"}, {"email": "bad@@x.com", "name": "Bob"}]
	}`)))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Results []service.AdmissionResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 2)
	assert.True(t, body.Results[0].Enqueued)
	assert.False(t, body.Results[1].IsValid)
	assert.False(t, body.Results[1].Enqueued)

	_, admitted := q.leads["a@x.com"]
	assert.True(t, admitted)
	_, rejected := q.leads["bad@@x.com"]
	assert.False(t, rejected)
}

func TestCreateLeadsRejectsEmptyBatch(t *testing.T) {
	router := leadRouter(newMemLeadQueue(), &memLogStore{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/leads",
		strings.NewReader(`{"recipients": []}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeadLogsEndpoint(t *testing.T) {
	logs := &memLogStore{logs: map[string][]model.CampaignLog{
		"a@x.com": {
			{ID: 2, Email: "a@x.com", Action: model.LogActionSent, Details: "MessageID: <m@test>", Timestamp: time.Now()},
			{ID: 1, Email: "a@x.com", Action: model.LogActionFailed, Details: "i/o timeout", Timestamp: time.Now().Add(-time.Hour)},
		},
	}}
	router := leadRouter(newMemLeadQueue(), logs, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leads/a@x.com/logs", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Logs []model.CampaignLog `json:"logs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Logs, 2)
	assert.Equal(t, model.LogActionSent, body.Logs[0].Action)
}
