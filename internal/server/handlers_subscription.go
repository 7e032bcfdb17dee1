package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// subscriptionRequest mirrors the client payload. TransactionDone is a
// pointer so a missing field is told apart from false.
type subscriptionRequest struct {
	Address         string `json:"address"`
	TransactionDone *bool  `json:"transactionDone"`
}

func (s *Server) handleSubscriptionWrite(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Address) == "" || req.TransactionDone == nil {
		WriteErrorWithCode(w, http.StatusBadRequest, "Invalid request data", CodeInvalidInput)
		return
	}

	record, err := s.app.EntitlementService.RecordPayment(r.Context(), req.Address, *req.TransactionDone)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, Envelope{Message: "Subscription data written successfully", Data: record})
}

func (s *Server) handleSubscriptionRead(w http.ResponseWriter, r *http.Request) {
	records, err := s.app.EntitlementService.History(r.Context(), r.URL.Query().Get("address"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, Envelope{Message: "Subscription data retrieved successfully", Data: records})
}

func (s *Server) handleSubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.app.EntitlementService.Status(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, Envelope{Message: "Subscription status retrieved successfully", Data: status})
}
