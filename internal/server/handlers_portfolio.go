package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bobmcallan/riskgate/internal/models"
)

type riskRequest struct {
	Assets []models.Asset `json:"assets"`
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	var req riskRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	metrics, err := s.app.Orchestrator.ComputeRisk(req.Assets)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, metrics)
}

func (s *Server) handlePortfolioWrite(w http.ResponseWriter, r *http.Request) {
	var p models.Portfolio
	if !DecodeJSON(w, r, &p) {
		return
	}

	saved, err := s.app.PortfolioService.Record(r.Context(), &p)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, Envelope{Message: "Portfolio data written successfully", Data: saved})
}

func (s *Server) handlePortfolioRead(w http.ResponseWriter, r *http.Request) {
	snapshots, err := s.app.PortfolioService.History(r.Context(), r.URL.Query().Get("wallet_address"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, Envelope{Message: "Portfolio data retrieved successfully", Data: snapshots})
}

func (s *Server) handlePortfolioLatest(w http.ResponseWriter, r *http.Request) {
	latest, err := s.app.PortfolioService.Latest(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, Envelope{Message: "Portfolio data retrieved successfully", Data: latest})
}

func (s *Server) handlePortfolioLatestRisk(w http.ResponseWriter, r *http.Request) {
	latest, err := s.app.Orchestrator.LatestRisk(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, Envelope{Message: "Risk metrics computed successfully", Data: latest.RiskMetrics})
}
