package server

import (
	"net/http"

	"github.com/matzehuels/kawaiicounter/pkg/errors"
)

// statusFor maps an error to an HTTP status by its code.
func statusFor(err error) int {
	return errors.GetCode(err).HTTPStatus()
}

// writeError reports err as plain text. Server-side failures are logged and
// their details withheld from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestID(r.Context()),
			"err", err)
		if errors.GetCode(err) == "" {
			msg = "internal error"
		}
	}
	http.Error(w, msg, status)
}
