// internal/engine/routes.go

package engine

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the compatibility, feedback and model routes
func RegisterRoutes(r chi.Router, handler *Handler) {
	r.Get("/health", handler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		// Scoring & recommendations
		r.Post("/compatibility/score", handler.Score)
		r.Get("/recommendations/peers/{profileID}", handler.RecommendPeers)
		r.Get("/recommendations/activities/{profileID}", handler.RecommendActivities)
		r.Get("/recommendations/activities/{profileID}/{activityID}", handler.ActivityFit)

		// Learning loop
		r.Post("/feedback", handler.SubmitFeedback)

		// Model lifecycle
		r.Get("/models/active", handler.GetActiveModel)
		r.Get("/models/drafts", handler.GetDrafts)
		r.Post("/models/propose", handler.ProposeModel)
		r.Post("/models/{version}/activate", handler.ActivateModel)

		// Reference data
		r.Get("/regions", handler.ListRegions)
	})
}
