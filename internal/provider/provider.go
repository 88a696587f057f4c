// Package provider defines the upstream profile-data contract.
//
// The service layer only talks to this interface, never to a concrete HTTP
// client, so tests can swap in an in-memory provider and a different host
// (GitHub Enterprise, a recorded fixture) needs no service changes.
//
// Error contract for implementations:
//   - GetUser on a missing account returns an error matching apperror.ErrUserNotFound
//   - any other failed call returns an error matching apperror.ErrProviderUnavailable
//   - GetReadme on a repository without a README returns ErrNoReadme
package provider

import (
	"context"
	"errors"

	"github.com/sakif/devprofile/internal/model"
)

// PageSize is the page size requested from paginated listings (GitHub's maximum).
const PageSize = 100

// ErrNoReadme is returned by GetReadme when the repository has no README.
var ErrNoReadme = errors.New("provider: repository has no README")

// ErrNotText is returned by GetReadme when the README is not valid UTF-8 text.
var ErrNotText = errors.New("provider: README is not text")

// Provider is the set of upstream calls a profile lookup is built from.
type Provider interface {
	// GetUser resolves a username to its canonical user record.
	GetUser(ctx context.Context, username string) (*model.User, error)

	// ListRepositories returns every repository listed for the user,
	// following pagination until the last page.
	ListRepositories(ctx context.Context, username string) ([]model.Repository, error)

	// ListStarred returns every repository the user has starred.
	ListStarred(ctx context.Context, username string) ([]model.Repository, error)

	// GetReadme returns the decoded README text of owner/repo.
	GetReadme(ctx context.Context, owner, repo string) (string, error)
}
