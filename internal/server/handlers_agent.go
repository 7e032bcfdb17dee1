package server

import (
	"net/http"

	"github.com/bobmcallan/riskgate/internal/models"
	"github.com/bobmcallan/riskgate/internal/services/advisory"
)

// handleAgent streams advisory output as SSE. Validation and entitlement
// failures are ordinary JSON errors; once the first frame is written,
// failures arrive only as in-band error events.
func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	var req models.AdvisoryRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	sess, err := s.app.Orchestrator.HandleAdvisoryRequest(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	defer sess.Close()

	sink := advisory.NewSSEWriter(w)
	state := sess.Run(r.Context(), sink)

	if !sink.Started() {
		s.logger.Debug().
			Str("session_id", sess.ID()).
			Str("state", string(state)).
			Msg("Advisory stream ended before first frame")
	}
}
