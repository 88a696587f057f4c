package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError, so success and error
// bodies always look the same.
//
// CONSISTENT ERROR FORMAT:
// Every error response from our API has the same shape:
//   {"error": "user_not_found", "message": "GitHub user \"ghost\" not found"}
//
// The web UI shows "message" as-is, so it must always be readable on its own.
// "error" is the stable machine-readable kind.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/devprofile/internal/apperror"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable error kind (e.g., "user_not_found")
	Message string `json:"message"` // Human-readable description
}

// writeJSON sends data as JSON with the given status code.
//
// The body is marshalled before anything is written, so an encoding failure
// can still become a clean 500 instead of a 200 with half a body.
// Headers must be set before WriteHeader; after that they are ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal_error","message":"An internal error occurred"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// ERROR MAPPING:
// A lookup fails with one of four error kinds. This is the only place they
// become HTTP statuses:
//
//	ErrEmptyUsername       → 400 Bad Request
//	ErrUserNotFound        → 404 Not Found
//	ErrCaseMismatch        → 409 Conflict (the login exists, spelled differently)
//	ErrProviderUnavailable → 502 Bad Gateway (GitHub failed, not us)
//
// The CLI lookup command makes its own choice for the same kinds (a message on
// stderr, exit status 1), which is why the service never sees a status code.
//
// The error usually arrives wrapped, e.g.
//
//	fmt.Errorf("resolving user: %w", apperror.UserNotFound("ghost"))
//
// errors.Is and errors.As walk the chain, so the wrapping does not matter.
// The message sent to the client is always AppError.Message, never err.Error().
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrEmptyUsername):
			status = http.StatusBadRequest // 400
			errorType = "empty_username"
		case errors.Is(err, apperror.ErrUserNotFound):
			status = http.StatusNotFound // 404
			errorType = "user_not_found"
		case errors.Is(err, apperror.ErrCaseMismatch):
			status = http.StatusConflict // 409
			errorType = "case_mismatch"
		case errors.Is(err, apperror.ErrProviderUnavailable):
			status = http.StatusBadGateway // 502
			errorType = "provider_unavailable"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	// Untyped errors (a cancelled request, a bug) never leak their text.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
