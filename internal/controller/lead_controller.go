// internal/controller/lead_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/leadmasterhq/leadmaster-backend/internal/repository"
	"github.com/leadmasterhq/leadmaster-backend/internal/service"
)

// LeadController admits recipients into the delivery queue and exposes
// their audit trail.
type LeadController struct {
	LeadService *service.LeadService
	LogRepo     repository.CampaignLogRepositoryInterface
}

// CreateLeads MX-validates the candidate batch and enqueues the valid
// addresses. The per-address results keep the input order.
func (c *LeadController) CreateLeads(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Recipients []service.CampaignRecipient `json:"recipients"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if len(body.Recipients) == 0 {
		http.Error(w, "recipients cannot be empty", http.StatusBadRequest)
		return
	}

	results, err := c.LeadService.AdmitBatch(r.Context(), body.Recipients)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"results": results,
	})
}

// LeadLogs returns the delivery audit trail for one address, newest first.
func (c *LeadController) LeadLogs(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	logs, err := c.LogRepo.ListByEmail(r.Context(), email, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"logs": logs,
	})
}
