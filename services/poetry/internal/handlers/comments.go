package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/example/poetry-platform/internal/platform/analytics"
	"github.com/example/poetry-platform/internal/platform/api"
	"github.com/example/poetry-platform/internal/platform/httpserver"
	"github.com/example/poetry-platform/internal/platform/metrics"
	"github.com/example/poetry-platform/internal/platform/validation"
	"github.com/example/poetry-platform/services/poetry/internal/commenttree"
	"github.com/example/poetry-platform/services/poetry/internal/store"
)

type createCommentRequest struct {
	PoemID   int64  `json:"poemID" validate:"required,gt=0"`
	Content  string `json:"content" validate:"required,max=2000"`
	Username string `json:"username" validate:"max=50"`
	ParentID *int64 `json:"parentID" validate:"omitempty,gt=0"`
}

type createCommentResponse struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	InsertedID int64  `json:"insertedId"`
}

// ListComments handles GET /api/poems/{poemID}/comments. The body's data is
// the comment forest, newest root first.
func ListComments(s store.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := poemIDParam(r)
		if !ok {
			api.BadRequest(w, "INVALID_ID", "古诗ID无效。", requestID(r), nil)
			return
		}
		records, err := s.ListComments(r.Context(), id)
		if err != nil {
			httpserver.Logger(r.Context(), log).Error("list comments", zap.Int64("poem_id", id), zap.Error(err))
			api.Internal(w, requestID(r))
			return
		}
		roots := commenttree.Build(records)
		metrics.CommentTreeRoots.Observe(float64(len(roots)))
		api.OK(w, "评论加载成功！", roots)
	}
}

// CreateComment handles POST /api/comments
func CreateComment(s store.Store, pub *analytics.Publisher, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCommentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", requestID(r), nil)
			return
		}
		req.Content = strings.TrimSpace(req.Content)
		req.Username = strings.TrimSpace(req.Username)
		if err := validation.Struct(req); err != nil {
			var verr *validation.Error
			if errors.As(err, &verr) {
				api.BadRequest(w, "INVALID_INPUT", "缺少古诗ID或评论内容。", requestID(r), verr.Details())
				return
			}
			api.BadRequest(w, "INVALID_INPUT", err.Error(), requestID(r), nil)
			return
		}

		if _, err := s.GetPoem(r.Context(), req.PoemID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "找不到该诗词。", requestID(r))
				return
			}
			httpserver.Logger(r.Context(), log).Error("create comment: lookup poem", zap.Int64("poem_id", req.PoemID), zap.Error(err))
			api.Internal(w, requestID(r))
			return
		}

		username := req.Username
		if username == "" {
			username = store.DefaultUsername
		}
		id, err := s.CreateComment(r.Context(), store.NewComment{
			PoemID:   req.PoemID,
			Content:  req.Content,
			Username: username,
			ParentID: req.ParentID,
		})
		if err != nil {
			httpserver.Logger(r.Context(), log).Error("create comment", zap.Int64("poem_id", req.PoemID), zap.Error(err))
			api.Internal(w, requestID(r))
			return
		}

		props := map[string]any{"poem_id": req.PoemID, "comment_id": id, "is_reply": req.ParentID != nil}
		pub.Publish(analytics.SubjectCommentCreated, "comment_created", username, props)

		api.WriteJSON(w, http.StatusCreated, createCommentResponse{
			Code:       http.StatusCreated,
			Message:    "评论添加成功！",
			InsertedID: id,
		})
	}
}
