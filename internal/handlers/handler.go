package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/AnshRaj112/emotional-diary-backend/internal/metrics"
	"github.com/AnshRaj112/emotional-diary-backend/internal/services"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// storeTimeout bounds each request's single store operation.
const storeTimeout = 5 * time.Second

// Handler serves the diary API. Every handler is stateless; all state lives
// in the post store.
type Handler struct {
	posts    *services.PostService
	images   *services.BackgroundImageService
	uploader services.ImageUploader // nil when uploads are not configured
	metrics  *metrics.Collector
	logger   *zap.Logger
}

func New(posts *services.PostService, images *services.BackgroundImageService, uploader services.ImageUploader, m *metrics.Collector, logger *zap.Logger) *Handler {
	return &Handler{
		posts:    posts,
		images:   images,
		uploader: uploader,
		metrics:  m,
		logger:   logger,
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

var errTrailingData = errors.New("unexpected data after JSON body")

// decodeJSON reads a single JSON value into v. An empty body leaves v
// untouched; anything after the value is rejected.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

// fail maps a service error onto the HTTP error taxonomy. Store failures are
// logged and answered with internalMsg only.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, internalMsg string, fields ...zap.Field) {
	switch {
	case errors.Is(err, services.ErrInvalidID):
		writeError(w, http.StatusBadRequest, "Invalid post ID")
	case errors.Is(err, services.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "Missing required fields")
	case errors.Is(err, services.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, services.ErrPostNotFound):
		writeError(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, services.ErrCommentNotFound):
		writeError(w, http.StatusNotFound, "Comment not found or already deleted")
	default:
		fields = append(fields,
			zap.Error(err),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
		h.logger.Error(internalMsg, fields...)
		writeError(w, http.StatusInternalServerError, internalMsg)
	}
}
