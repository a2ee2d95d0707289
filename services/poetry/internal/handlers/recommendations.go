package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/example/poetry-platform/internal/platform/analytics"
	"github.com/example/poetry-platform/internal/platform/api"
	"github.com/example/poetry-platform/internal/platform/httpserver"
	"github.com/example/poetry-platform/services/poetry/internal/recommend"
)

// Resolver is the recommendation entry point used by the handler.
type Resolver interface {
	Resolve(ctx context.Context, prompt string) (recommend.Result, error)
}

type recommendRequest struct {
	Prompt string `json:"prompt"`
}

// Recommend handles POST /api/ai/recommendations
func Recommend(res Resolver, pub *analytics.Publisher, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recommendRequest
		if err := decodeJSON(w, r, &req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", requestID(r), nil)
			return
		}

		result, err := res.Resolve(r.Context(), req.Prompt)
		if err != nil {
			writeRecommendError(w, r, log, err)
			return
		}

		props := map[string]any{"type": string(result.Kind)}
		msg := "AI 推荐成功"
		if result.Kind == recommend.KindDetail {
			props["title"] = result.Detail.Title
			msg = "成功获取诗词详情: 《" + result.Detail.Title + "》"
		} else {
			props["count"] = len(result.Titles)
		}
		pub.Publish(analytics.SubjectRecommendationResolved, "recommendation_resolved", "", props)
		api.OK(w, msg, result)
	}
}

func writeRecommendError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	rid := requestID(r)
	switch {
	case errors.Is(err, recommend.ErrInvalidInput):
		api.BadRequest(w, "INVALID_INPUT", "提示词不能为空。", rid, nil)
	case errors.Is(err, recommend.ErrAIUnavailable):
		httpserver.Logger(r.Context(), log).Warn("recommend: ai unavailable", zap.Error(err))
		api.Unavailable(w, "AI_UNAVAILABLE", "AI服务暂不可用。", rid)
	case errors.Is(err, recommend.ErrAIExhausted):
		api.BadGateway(w, "AI_EXHAUSTED", "AI服务调用失败，请稍后重试。", rid)
	default:
		httpserver.Logger(r.Context(), log).Error("recommend", zap.Error(err))
		api.Internal(w, rid)
	}
}
