package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/example/poetry-platform/internal/platform/analytics"
	"github.com/example/poetry-platform/internal/platform/api"
	"github.com/example/poetry-platform/internal/platform/httpserver"
	"github.com/example/poetry-platform/services/poetry/internal/store"
)

// ListPoems handles GET /api/poems?search=
func ListPoems(s store.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		poems, err := s.ListPoems(r.Context(), r.URL.Query().Get("search"))
		if err != nil {
			httpserver.Logger(r.Context(), log).Error("list poems", zap.Error(err))
			api.Internal(w, requestID(r))
			return
		}
		api.OK(w, "诗词列表获取成功", poems)
	}
}

// GetPoem handles GET /api/poems/{poemID}
func GetPoem(s store.Store, pub *analytics.Publisher, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := poemIDParam(r)
		if !ok {
			api.BadRequest(w, "INVALID_ID", "古诗ID无效。", requestID(r), nil)
			return
		}
		poem, err := s.GetPoem(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			api.NotFound(w, "NOT_FOUND", "找不到该诗词。", requestID(r))
			return
		}
		if err != nil {
			httpserver.Logger(r.Context(), log).Error("get poem", zap.Int64("poem_id", id), zap.Error(err))
			api.Internal(w, requestID(r))
			return
		}
		pub.Publish(analytics.SubjectPoemViewed, "poem_viewed", "", map[string]any{"poem_id": id})
		api.OK(w, "诗词详情获取成功", poem)
	}
}

// Relationships handles GET /api/relationships
func Relationships(s store.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := s.Relationships(r.Context())
		if err != nil {
			httpserver.Logger(r.Context(), log).Error("relationships", zap.Error(err))
			api.Internal(w, requestID(r))
			return
		}
		api.OK(w, "关系图谱数据获取成功", g)
	}
}
