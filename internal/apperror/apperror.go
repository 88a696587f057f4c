// Package apperror defines the error kinds a profile lookup can fail with.
//
// Every failure the caller can see is one of four kinds, each backed by a
// sentinel so callers can branch with errors.Is:
//
//	ErrEmptyUsername        → nothing to look up, no network call was made
//	ErrUserNotFound         → GitHub has no such account
//	ErrCaseMismatch         → the account exists, but under a differently-cased login
//	ErrProviderUnavailable  → a required GitHub call failed (network, rate limit, non-2xx)
//
// The service layer returns these; the HTTP layer maps them to status codes.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyUsername       = errors.New("empty username")
	ErrUserNotFound        = errors.New("user not found")
	ErrCaseMismatch        = errors.New("username case mismatch")
	ErrProviderUnavailable = errors.New("provider unavailable")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // Human-readable error message
	Field   string // Optional: input field causing the error

	// UpstreamStatus is the provider's HTTP status when one was received (0 otherwise).
	UpstreamStatus int
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func EmptyUsername() *AppError {
	return &AppError{
		Err:     ErrEmptyUsername,
		Message: "a GitHub username is required",
		Field:   "username",
	}
}

func UserNotFound(username string) *AppError {
	return &AppError{
		Err:     ErrUserNotFound,
		Message: fmt.Sprintf("GitHub user %q not found", username),
		Field:   "username",
	}
}

// CaseMismatch reports that GitHub resolved the lookup to a login that only
// differs by case. GitHub's lookup is case-insensitive; ours is not, so the
// message tells the user which spelling to use.
func CaseMismatch(requested, canonical string) *AppError {
	return &AppError{
		Err: ErrCaseMismatch,
		Message: fmt.Sprintf("username %q does not match the GitHub login %q exactly; retry with %q",
			requested, canonical, canonical),
		Field: "username",
	}
}

// ProviderUnavailable wraps a failed required call. status is the upstream
// HTTP status (0 for transport failures) and detail the upstream message, if any.
func ProviderUnavailable(status int, detail string) *AppError {
	msg := "GitHub API is unavailable"
	switch {
	case status != 0 && detail != "":
		msg = fmt.Sprintf("GitHub API returned %d: %s", status, detail)
	case status != 0:
		msg = fmt.Sprintf("GitHub API returned %d", status)
	case detail != "":
		msg = fmt.Sprintf("GitHub API is unavailable: %s", detail)
	}
	return &AppError{
		Err:            ErrProviderUnavailable,
		Message:        msg,
		UpstreamStatus: status,
	}
}
