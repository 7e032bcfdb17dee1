package server

import (
	"net/http"

	"github.com/bobmcallan/riskgate/internal/models"
)

func (s *Server) handleProfileWrite(w http.ResponseWriter, r *http.Request) {
	var p models.UserProfile
	if !DecodeJSON(w, r, &p) {
		return
	}

	saved, err := s.app.ProfileService.Save(r.Context(), &p)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, Envelope{Message: "Data written successfully", Data: saved})
}

func (s *Server) handleProfileRead(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.app.ProfileService.History(r.Context(), r.URL.Query().Get("wallet_address"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, Envelope{Message: "Data retrieved successfully", Data: profiles})
}
