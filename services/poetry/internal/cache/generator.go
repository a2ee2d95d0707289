package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"go.uber.org/zap"

	"github.com/example/poetry-platform/internal/platform/metrics"
	"github.com/example/poetry-platform/services/poetry/internal/recommend"
)

const keyPrefix = "poetry:ai:"

// Key is the cache key for instruction.
func Key(instruction string) string {
	sum := sha256.Sum256([]byte(instruction))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Generator serves repeated instructions from Store. Only non-blank successful
// responses are stored; cache failures fall through to the wrapped generator.
type Generator struct {
	Next  recommend.Generator
	Store Store
	Log   *zap.Logger
}

func NewGenerator(next recommend.Generator, store Store, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{Next: next, Store: store, Log: log}
}

func (g *Generator) Generate(ctx context.Context, instruction string) (string, error) {
	key := Key(instruction)
	if text, ok, err := g.Store.Get(ctx, key); err != nil {
		g.Log.Warn("ai cache get failed", zap.Error(err))
	} else if ok {
		metrics.RecommendationCacheHits.Inc()
		return text, nil
	}
	metrics.RecommendationCacheMisses.Inc()

	text, err := g.Next.Generate(ctx, instruction)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) != "" {
		if err := g.Store.Set(ctx, key, text); err != nil {
			g.Log.Warn("ai cache set failed", zap.Error(err))
		}
	}
	return text, nil
}
