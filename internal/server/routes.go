package server

import (
	"github.com/go-chi/chi/v5"
)

func (s *Server) registerRoutes() {
	r := s.router

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/version", s.handleVersion)

	// Profile read lives outside /v1 for existing clients
	r.Get("/api/read", s.handleProfileRead)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(s.limiter.Middleware).Post("/agent", s.handleAgent)
		r.Post("/risk", s.handleRisk)
		r.Post("/write", s.handleProfileWrite)

		r.Route("/portfolio", func(r chi.Router) {
			r.Post("/write", s.handlePortfolioWrite)
			r.Get("/read", s.handlePortfolioRead)
			r.Get("/latest/{address}", s.handlePortfolioLatest)
			r.Get("/latest/{address}/risk", s.handlePortfolioLatestRisk)
		})

		r.Route("/subscription", func(r chi.Router) {
			r.With(serviceTokenMiddleware(s.app.Config.Auth)).Post("/write", s.handleSubscriptionWrite)
			r.Get("/read", s.handleSubscriptionRead)
			r.Get("/status/{address}", s.handleSubscriptionStatus)
		})
	})
}
