package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bobmcallan/riskgate/internal/common"
)

// ErrorResponse is the standard error format for REST API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Envelope wraps successful reads and writes.
type Envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeNotEntitled         = "NOT_ENTITLED"
	CodeNotFound            = "NOT_FOUND"
	CodeLedgerUnavailable   = "LEDGER_UNAVAILABLE"
	CodeAdvisoryUnavailable = "ADVISORY_UNAVAILABLE"
	CodeRateLimited         = "RATE_LIMITED"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInsufficientScope   = "INSUFFICIENT_SCOPE"
	CodeInternalServerError = "INTERNAL_ERROR"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteErrorWithCode writes a JSON error response with an error code.
func WriteErrorWithCode(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// DecodeJSON reads and decodes JSON from the request body into v.
// Returns false and writes a 400 error if decoding fails.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil {
		WriteErrorWithCode(w, http.StatusBadRequest, "Request body is required", CodeInvalidInput)
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, "Invalid JSON: "+err.Error(), CodeInvalidInput)
		return false
	}
	return true
}

// writeServiceError maps a service error kind onto an HTTP status.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), CodeInvalidInput)
	case errors.Is(err, common.ErrNotEntitled):
		WriteErrorWithCode(w, http.StatusForbidden, "A confirmed payment is required for advisory access", CodeNotEntitled)
	case errors.Is(err, common.ErrNotFound):
		WriteErrorWithCode(w, http.StatusNotFound, err.Error(), CodeNotFound)
	case errors.Is(err, common.ErrLedgerUnavailable):
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Ledger unavailable")
		WriteErrorWithCode(w, http.StatusServiceUnavailable, "Ledger unavailable", CodeLedgerUnavailable)
	case errors.Is(err, common.ErrUpstreamGeneration):
		WriteErrorWithCode(w, http.StatusServiceUnavailable, "Advisory service unavailable", CodeAdvisoryUnavailable)
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Unhandled service error")
		WriteErrorWithCode(w, http.StatusInternalServerError, "Internal server error", CodeInternalServerError)
	}
}
