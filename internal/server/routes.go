package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"subvention/internal/handlers/api"
	"subvention/internal/middleware"
)

// Store is everything the routes read and write.
type Store interface {
	api.KeywordStore
	api.AnnouncementStore
	api.Pinger
}

// RegisterRoutes registers all application routes. A nil verifier leaves the
// mutating routes unauthenticated.
func (s *Server) RegisterRoutes(store Store, verifier middleware.TokenVerifier) {
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	keywordHandler := api.NewKeywordHandler(store)
	announcementHandler := api.NewAnnouncementHandler(store)
	healthHandler := api.NewHealthHandler(store)

	s.App.Get("/healthz", healthHandler.Check)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	apiGroup := s.App.Group("/api")

	// Exclusion keywords
	apiGroup.Get("/exclusion-keywords", keywordHandler.List)
	apiGroup.Get("/exclusion-keywords/:id", keywordHandler.Get)
	apiGroup.Post("/exclusion-keywords", authMiddleware.RequireToken, keywordHandler.Apply)
	apiGroup.Delete("/exclusion-keywords/:id", authMiddleware.RequireToken, keywordHandler.Revoke)

	// Announcements and subventions
	apiGroup.Get("/announcements", announcementHandler.List)
	apiGroup.Get("/announcements/search", announcementHandler.Search)
	apiGroup.Get("/announcements/:id", announcementHandler.Get)
	apiGroup.Get("/subventions/:id", announcementHandler.GetSubvention)
}
