package web

// errors.go centralizes HTTP error mapping. Handlers call respondError
// with whatever the domain returned; the technical error is logged with
// the request ID and the client gets a sanitized JSON body with a
// stable code.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"course-admin/internal/course"
	"course-admin/internal/logging"
	"course-admin/internal/store"
)

// ErrorResponse is the JSON body for failed requests. RowErrors is
// populated only for CSV uploads where individual rows were rejected.
type ErrorResponse struct {
	Error     string            `json:"error"`
	Code      string            `json:"code"`
	RowErrors []course.RowError `json:"row_errors,omitempty"`
}

// respondError maps a domain error to an HTTP response and logs it.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	resp := ErrorResponse{Error: "something went wrong", Code: "INTERNAL"}

	var noValid *course.NoValidRowsError
	switch {
	case errors.Is(err, course.ErrNotFound):
		status = http.StatusNotFound
		resp = ErrorResponse{Error: "course not found", Code: "COURSE_NOT_FOUND"}
	case errors.Is(err, course.ErrEmptyInput):
		status = http.StatusBadRequest
		resp = ErrorResponse{Error: "csv file is empty or invalid", Code: "CSV_EMPTY"}
	case errors.Is(err, course.ErrParse):
		status = http.StatusBadRequest
		resp = ErrorResponse{Error: "csv file could not be parsed", Code: "CSV_MALFORMED"}
	case errors.As(err, &noValid):
		status = http.StatusBadRequest
		resp = ErrorResponse{
			Error:     "no valid courses found in csv",
			Code:      "CSV_NO_VALID_ROWS",
			RowErrors: noValid.Errors,
		}
	case errors.Is(err, store.ErrEmailTaken):
		status = http.StatusBadRequest
		resp = ErrorResponse{Error: "email already registered", Code: "EMAIL_TAKEN"}
	}

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", resp.Code,
	)

	writeJSON(w, status, resp)
}

// writeError writes a JSON error response with a fixed message.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// writeJSON encodes v as a JSON response body.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers already sent; nothing to do but log.
		slog.Error("json encode error", "error", err)
	}
}
