// Package github implements provider.Provider on top of the GitHub REST API.
//
// HOW REQUESTS ARE AUTHENTICATED:
// The token never leaves the server. NewHTTPClient wraps it in an oauth2
// static token source, so every request carries "Authorization: Bearer <token>"
// without the calling code ever touching headers. With no token configured the
// client runs unauthenticated (60 requests/hour from GitHub).
//
// HOW ERRORS ARE REPORTED:
// go-github returns typed errors (*github.ErrorResponse, *github.RateLimitError,
// *github.AbuseRateLimitError). classify turns them into the two apperror kinds
// the service layer understands, keeping the upstream status and message.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/sakif/devprofile/internal/apperror"
	"github.com/sakif/devprofile/internal/model"
	"github.com/sakif/devprofile/internal/provider"
)

// DefaultTimeout bounds every outbound call when Config.Timeout is unset.
const DefaultTimeout = 15 * time.Second

// Config holds the GitHub client settings.
type Config struct {
	// Token is a personal access token or app token. Empty means anonymous.
	Token string
	// BaseURL overrides https://api.github.com/ (tests, GitHub Enterprise).
	BaseURL string
	// Timeout bounds each HTTP request, including reading the body.
	Timeout time.Duration
}

// Client is a provider.Provider backed by go-github.
type Client struct {
	gh     *github.Client
	logger *slog.Logger
}

// Assert Client implements provider.Provider.
var _ provider.Provider = (*Client)(nil)

// NewHTTPClient returns an *http.Client that authenticates with token (if any)
// and gives up after timeout.
func NewHTTPClient(token string, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if token == "" {
		return &http.Client{Timeout: timeout}
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	hc := oauth2.NewClient(context.Background(), src)
	hc.Timeout = timeout
	return hc
}

// New creates a Client from cfg.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	gh := github.NewClient(NewHTTPClient(cfg.Token, cfg.Timeout))
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("github: parsing base URL %q: %w", cfg.BaseURL, err)
		}
		gh.BaseURL = u
	}
	return &Client{gh: gh, logger: logger}, nil
}

// GetUser fetches GET /users/{username}.
func (c *Client) GetUser(ctx context.Context, username string) (*model.User, error) {
	u, _, err := c.gh.Users.Get(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.UserNotFound(username)
		}
		return nil, c.classify("get user", err)
	}
	return &model.User{
		ID:        u.GetID(),
		Login:     u.GetLogin(),
		Name:      optional(u.Name),
		AvatarURL: u.GetAvatarURL(),
		Bio:       optional(u.Bio),
		Location:  optional(u.Location),
		Followers: u.GetFollowers(),
		Following: u.GetFollowing(),
	}, nil
}

// ListRepositories fetches GET /users/{username}/repos?type=owner, all pages.
func (c *Client) ListRepositories(ctx context.Context, username string) ([]model.Repository, error) {
	opts := &github.RepositoryListByUserOptions{
		Type:        "owner",
		ListOptions: github.ListOptions{PerPage: provider.PageSize},
	}

	var all []model.Repository
	for {
		page, resp, err := c.gh.Repositories.ListByUser(ctx, username, opts)
		if err != nil {
			if isNotFound(err) {
				return nil, apperror.UserNotFound(username)
			}
			return nil, c.classify("list repositories", err)
		}
		for _, r := range page {
			all = append(all, convertRepository(r))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	c.logger.Debug("listed repositories",
		slog.String("user", username),
		slog.Int("count", len(all)),
	)
	return all, nil
}

// ListStarred fetches GET /users/{username}/starred, all pages.
func (c *Client) ListStarred(ctx context.Context, username string) ([]model.Repository, error) {
	opts := &github.ActivityListStarredOptions{
		ListOptions: github.ListOptions{PerPage: provider.PageSize},
	}

	var all []model.Repository
	for {
		page, resp, err := c.gh.Activity.ListStarred(ctx, username, opts)
		if err != nil {
			if isNotFound(err) {
				return nil, apperror.UserNotFound(username)
			}
			return nil, c.classify("list starred", err)
		}
		for _, s := range page {
			if s.Repository == nil {
				continue
			}
			all = append(all, convertRepository(s.Repository))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// GetReadme fetches GET /repos/{owner}/{repo}/readme and decodes the content.
func (c *Client) GetReadme(ctx context.Context, owner, repo string) (string, error) {
	content, _, err := c.gh.Repositories.GetReadme(ctx, owner, repo, nil)
	if err != nil {
		if isNotFound(err) {
			return "", provider.ErrNoReadme
		}
		return "", c.classify("get readme", err)
	}

	text, err := content.GetContent()
	if err != nil {
		return "", fmt.Errorf("github: decoding README of %s/%s: %w", owner, repo, err)
	}
	if !utf8.ValidString(text) {
		return "", provider.ErrNotText
	}
	return text, nil
}

// classify maps a go-github error to apperror.ProviderUnavailable. A
// cancelled caller context is returned as is: GitHub did nothing wrong.
func (c *Client) classify(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("github: %s: %w", op, err)
	}

	var (
		rateErr  *github.RateLimitError
		abuseErr *github.AbuseRateLimitError
		respErr  *github.ErrorResponse
	)

	var appErr *apperror.AppError
	switch {
	case errors.As(err, &rateErr):
		appErr = apperror.ProviderUnavailable(statusOf(rateErr.Response), rateErr.Message)
	case errors.As(err, &abuseErr):
		appErr = apperror.ProviderUnavailable(statusOf(abuseErr.Response), abuseErr.Message)
	case errors.As(err, &respErr):
		appErr = apperror.ProviderUnavailable(statusOf(respErr.Response), respErr.Message)
	case errors.Is(err, context.DeadlineExceeded), isTimeout(err):
		appErr = apperror.ProviderUnavailable(0, "request timed out")
	default:
		appErr = apperror.ProviderUnavailable(0, "")
	}

	c.logger.Warn("github call failed",
		slog.String("op", op),
		slog.Int("status", appErr.UpstreamStatus),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("github: %s: %w", op, appErr)
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isNotFound(err error) bool {
	var respErr *github.ErrorResponse
	return errors.As(err, &respErr) && statusOf(respErr.Response) == http.StatusNotFound
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

func convertRepository(r *github.Repository) model.Repository {
	owner := r.GetOwner()
	return model.Repository{
		ID:          r.GetID(),
		Name:        r.GetName(),
		OwnerLogin:  owner.GetLogin(),
		OwnerType:   owner.GetType(),
		Fork:        r.GetFork(),
		Description: optional(r.Description),
		Language:    optional(r.Language),
		HTMLURL:     r.GetHTMLURL(),
		Stars:       r.GetStargazersCount(),
	}
}

// optional treats an empty upstream string the same as a missing one.
func optional(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
