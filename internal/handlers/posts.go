package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/AnshRaj112/emotional-diary-backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ListPosts handles GET /posts, newest first.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	posts, err := h.posts.ListPosts(ctx)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// CreatePost handles POST /posts
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req services.CreatePostInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	post, err := h.posts.CreatePost(ctx, req)
	if err != nil {
		h.fail(w, r, err, "Failed to create post")
		return
	}

	h.metrics.PostsCreated.Inc()
	h.logger.Info("post created", zap.String("post_id", post.ID.Hex()))
	writeJSON(w, http.StatusCreated, post)
}

// GetPost handles GET /posts/{id}
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	post, err := h.posts.GetPost(ctx, id)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch post", zap.String("post_id", id))
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// LikePost handles POST /posts/{id}/like
func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	if err := h.posts.LikePost(ctx, id); err != nil {
		h.fail(w, r, err, "Failed to like post", zap.String("post_id", id))
		return
	}

	h.metrics.PostLikes.Inc()
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// AddComment handles POST /posts/{id}/comment
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req services.CommentInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	comment, err := h.posts.AddComment(ctx, id, req)
	if errors.Is(err, services.ErrMissingFields) {
		writeError(w, http.StatusBadRequest, "Author and content are required")
		return
	}
	if err != nil {
		h.fail(w, r, err, "Failed to add comment", zap.String("post_id", id))
		return
	}

	h.metrics.CommentsAdded.Inc()
	writeJSON(w, http.StatusOK, comment)
}
