package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AdminRequest struct {
	Password string `json:"password"`
}

// DeletePost handles DELETE /admin/posts/{postId}
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "postId")

	var req AdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	if err := h.posts.DeletePost(ctx, id, req.Password); err != nil {
		h.fail(w, r, err, "Failed to delete post", zap.String("post_id", id))
		return
	}

	h.metrics.PostsDeleted.Inc()
	h.logger.Info("post deleted by admin", zap.String("post_id", id))
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// DeleteComment handles DELETE /admin/posts/{postId}/comments/{commentId}
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postId")
	commentID := chi.URLParam(r, "commentId")

	var req AdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	if err := h.posts.DeleteComment(ctx, postID, commentID, req.Password); err != nil {
		h.fail(w, r, err, "Failed to delete comment",
			zap.String("post_id", postID),
			zap.String("comment_id", commentID),
		)
		return
	}

	h.metrics.CommentsDeleted.Inc()
	h.logger.Info("comment deleted by admin",
		zap.String("post_id", postID),
		zap.String("comment_id", commentID),
	)
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
