package handlers

import (
	"errors"
	"net/http"

	"github.com/AnshRaj112/emotional-diary-backend/internal/services"
	"go.uber.org/zap"
)

// GetBackgrounds handles GET /images/backgrounds
func (h *Handler) GetBackgrounds(w http.ResponseWriter, r *http.Request) {
	images, source, err := h.images.Fetch(r.Context())
	if err != nil {
		h.metrics.BackgroundFetches.WithLabelValues("error").Inc()
		if errors.Is(err, services.ErrImagesNotConfigured) {
			h.logger.Error("background image API key is not configured")
			writeError(w, http.StatusInternalServerError, "API key is not configured")
			return
		}
		h.logger.Error("failed to fetch background images", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch background images")
		return
	}

	h.metrics.BackgroundFetches.WithLabelValues(source).Inc()
	writeJSON(w, http.StatusOK, images)
}
