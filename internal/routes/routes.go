package routes

import (
	"net/http"

	"github.com/AnshRaj112/emotional-diary-backend/internal/handlers"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes registers the diary API at the root and again under /api.
func SetupRoutes(r chi.Router, h *handlers.Handler, metricsHandler http.Handler) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	registerAPI(r, h)
	r.Route("/api", func(r chi.Router) {
		registerAPI(r, h)
	})
}

func registerAPI(r chi.Router, h *handlers.Handler) {
	// Posts
	r.Get("/posts", h.ListPosts)
	r.Post("/posts", h.CreatePost)
	r.Get("/posts/{id}", h.GetPost)
	r.Post("/posts/{id}/like", h.LikePost)
	r.Post("/posts/{id}/comment", h.AddComment)

	// Admin moderation
	r.Delete("/admin/posts/{postId}", h.DeletePost)
	r.Delete("/admin/posts/{postId}/comments/{commentId}", h.DeleteComment)

	// Images
	r.Get("/images/backgrounds", h.GetBackgrounds)
	r.Post("/uploads", h.UploadImage)
}
