// internal/handler/tracking_handler.go
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/leadmasterhq/leadmaster-backend/internal/errors"
	"github.com/leadmasterhq/leadmaster-backend/internal/logger"
	"github.com/leadmasterhq/leadmaster-backend/internal/service"
)

// 1x1 transparent GIF
var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00,
	0x80, 0x00, 0x00, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x2c,
	0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02,
	0x02, 0x44, 0x01, 0x00, 0x3b,
}

// TrackingHandler serves the open-tracking pixel. The endpoint is fetched
// by arbitrary mail clients, so it carries no auth and always answers with
// the pixel; duplicate hits are expected and recorded, not rejected.
type TrackingHandler struct {
	CampaignService *service.CampaignService
	Log             *logger.Logger
}

// HandleOpen resolves the opening recipient from the path identifiers and
// records the open before serving the pixel.
func (h *TrackingHandler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignID")
	recipientID := chi.URLParam(r, "recipientID")

	if err := h.CampaignService.RecordOpen(r.Context(), campaignID, recipientID); err != nil {
		// Never expose errors to mail clients; still serve the pixel.
		if !appErrors.IsNotFound(err) {
			h.Log.Error().Err(err).Str("campaign_id", campaignID).Msg("open not recorded")
		}
	} else {
		h.Log.Info().Str("campaign_id", campaignID).Str("recipient_id", recipientID).Msg("open recorded")
	}

	h.servePixel(w)
}

func (h *TrackingHandler) servePixel(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Write(pixelGIF)
}
