package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Sternrassler/nobel-prize-cache/pkg/client"
	"github.com/Sternrassler/nobel-prize-cache/pkg/service"
)

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

// errorStatus mirrors the upstream status when one is known.
func errorStatus(err error) int {
	if errors.Is(err, service.ErrNotInitialized) || errors.Is(err, service.ErrClosed) {
		return http.StatusServiceUnavailable
	}
	if code := client.StatusCode(err); code >= 400 && code <= 599 {
		return code
	}
	return http.StatusInternalServerError
}

// errorDetails returns the upstream body: decoded JSON when it parses, the
// text otherwise, nil when there is none.
func errorDetails(err error) any {
	ue, ok := client.AsUpstream(err)
	if !ok || len(ue.Body) == 0 {
		return nil
	}
	if json.Valid(ue.Body) {
		return json.RawMessage(ue.Body)
	}
	return string(ue.Body)
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, label string, err error) {
	status := errorStatus(err)

	s.logger.Error().
		Err(err).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg(label)

	writeJSON(w, status, ErrorResponse{
		Error:   label,
		Message: err.Error(),
		Details: errorDetails(err),
	})
}
