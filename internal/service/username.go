package service

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/devprofile/internal/apperror"
)

// loginPattern accepts what GitHub allows in a login, plus the underscore used
// by managed-user suffixes. Anything else cannot name a real account.
var loginPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("github_login", validateLogin); err != nil {
		panic("service: failed to register github_login validation: " + err.Error())
	}
	return v
}

func validateLogin(fl validator.FieldLevel) bool {
	return loginPattern.MatchString(fl.Field().String())
}

// NormalizeUsername turns user input into a login to look up.
//
// Input may be a bare login ("octocat") or a profile URL
// ("https://github.com/octocat/", "github.com/octocat?tab=repositories"); for
// URLs the last path segment is used. Surrounding whitespace is ignored.
//
// Empty input returns EmptyUsername. A value that cannot be a GitHub login
// returns UserNotFound without touching the network. Case is preserved.
func NormalizeUsername(input string) (string, error) {
	s := strings.TrimSpace(input)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSpace(s)

	if s == "" {
		return "", apperror.EmptyUsername()
	}
	if err := validate.Var(s, "max=100,github_login"); err != nil {
		return "", apperror.UserNotFound(s)
	}
	return s, nil
}
