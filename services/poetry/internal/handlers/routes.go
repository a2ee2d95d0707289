package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/poetry-platform/internal/platform/analytics"
	"github.com/example/poetry-platform/services/poetry/internal/store"
)

// Deps are the collaborators shared by every route.
type Deps struct {
	Store     store.Store
	Resolver  Resolver
	Publisher *analytics.Publisher
	Log       *zap.Logger
	// AILimit wraps the recommendation route when set.
	AILimit func(http.Handler) http.Handler
}

// Mount registers the /api routes on r.
func Mount(r chi.Router, d Deps) {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/poems", ListPoems(d.Store, log))
		r.Get("/poems/{poemID}", GetPoem(d.Store, d.Publisher, log))
		r.Get("/poems/{poemID}/comments", ListComments(d.Store, log))
		r.Post("/comments", CreateComment(d.Store, d.Publisher, log))
		r.Get("/relationships", Relationships(d.Store, log))

		r.Group(func(r chi.Router) {
			if d.AILimit != nil {
				r.Use(d.AILimit)
			}
			r.Post("/ai/recommendations", Recommend(d.Resolver, d.Publisher, log))
		})
	})
}
