// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses the path, writes JSON
//	Service (Business layer) → validates input, orchestrates provider calls, enforces rules
//	Provider (Data layer)    → talks to the GitHub REST API
//
// ProfileService takes a provider.Provider (interface), NOT a concrete GitHub
// client. Tests hand it an in-memory provider that can simulate missing users,
// differently-cased logins, slow or failing README calls and so on.
//
// WHAT A LOOKUP DOES:
//  1. normalise the input and reject empty usernames (no network call)
//  2. resolve the user; the canonical login must match exactly, case included
//  3. list repositories (all pages), optionally union with starred ones
//  4. dedupe by repository ID, keep only the user's own non-fork repositories
//  5. fetch every README concurrently and classify it; failures here only mean
//     "this repository contributed no skills"
//  6. sort by stars (stable) and assemble the summary
//
// Any failure in steps 1-4 aborts the lookup. Nothing in step 5 ever does.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/rs/xid"
	"golang.org/x/sync/errgroup"

	"github.com/sakif/devprofile/internal/apperror"
	"github.com/sakif/devprofile/internal/metrics"
	"github.com/sakif/devprofile/internal/model"
	"github.com/sakif/devprofile/internal/provider"
	"github.com/sakif/devprofile/internal/skills"
)

// Defaults for Options fields left at zero.
const (
	DefaultReadmeConcurrency = 8
	DefaultReadmeTimeout     = 10 * time.Second
)

// Options tunes a ProfileService.
type Options struct {
	// IncludeStarred unions the user's starred repositories into the listing
	// before filtering. Starred repositories owned by someone else are filtered
	// out again, so this only matters for repos the user both owns and starred.
	IncludeStarred bool

	// ReadmeConcurrency caps the number of README requests in flight.
	ReadmeConcurrency int

	// ReadmeTimeout bounds each README request.
	ReadmeTimeout time.Duration
}

// Phase is a step of a lookup, reported through WithProgress.
type Phase string

const (
	PhaseResolvingUser       Phase = "resolving_user"
	PhaseListingRepositories Phase = "listing_repositories"
	PhaseFetchingReadmes     Phase = "fetching_readmes"
	PhaseDone                Phase = "done"
)

// ProgressFunc receives phase changes. It is called synchronously from the
// goroutine running FetchProfile and must not block.
type ProgressFunc func(Phase)

// FetchOption customises a single FetchProfile call.
type FetchOption func(*fetchConfig)

type fetchConfig struct {
	progress ProgressFunc
}

// WithProgress reports each phase of the lookup to fn.
func WithProgress(fn ProgressFunc) FetchOption {
	return func(c *fetchConfig) {
		c.progress = fn
	}
}

// ReportDone sends PhaseDone to the progress function in opts, if any.
// Fetchers that answer without running a lookup (a cache hit) use it.
func ReportDone(opts ...FetchOption) {
	var cfg fetchConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.progress != nil {
		cfg.progress(PhaseDone)
	}
}

// ProfileService aggregates a GitHub profile summary.
type ProfileService struct {
	provider   provider.Provider
	classifier *skills.Classifier
	metrics    *metrics.Metrics
	logger     *slog.Logger
	opts       Options
}

// NewProfileService creates a ProfileService. m may be nil.
func NewProfileService(
	p provider.Provider,
	classifier *skills.Classifier,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts Options,
) *ProfileService {
	if opts.ReadmeConcurrency <= 0 {
		opts.ReadmeConcurrency = DefaultReadmeConcurrency
	}
	if opts.ReadmeTimeout <= 0 {
		opts.ReadmeTimeout = DefaultReadmeTimeout
	}
	return &ProfileService{
		provider:   p,
		classifier: classifier,
		metrics:    m,
		logger:     logger,
		opts:       opts,
	}
}

// FetchProfile looks up input (a username or a GitHub profile URL) and
// returns its summary, or an *apperror.AppError of one of the four kinds.
func (s *ProfileService) FetchProfile(ctx context.Context, input string, opts ...FetchOption) (*model.ProfileSummary, error) {
	var cfg fetchConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	progress := cfg.progress
	if progress == nil {
		progress = func(Phase) {}
	}

	start := time.Now()
	log := s.logger.With(slog.String("lookup_id", xid.New().String()))

	summary, err := s.fetch(ctx, log, input, progress)
	s.metrics.ObserveLookup(outcomeOf(err), time.Since(start))
	if err != nil {
		log.Info("profile lookup failed",
			slog.String("input", input),
			slog.String("outcome", outcomeOf(err)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	log.Info("profile lookup completed",
		slog.String("user", summary.Username),
		slog.Int("repos", len(summary.Repositories)),
		slog.Int("skills", len(summary.Skills)),
		slog.Duration("duration", time.Since(start)),
	)
	return summary, nil
}

func (s *ProfileService) fetch(ctx context.Context, log *slog.Logger, input string, progress ProgressFunc) (*model.ProfileSummary, error) {
	// === 1. VALIDATE ===
	username, err := NormalizeUsername(input)
	if err != nil {
		return nil, err
	}

	// === 2. RESOLVE THE USER ===
	progress(PhaseResolvingUser)
	user, err := s.provider.GetUser(ctx, username)
	if err != nil {
		return nil, required("resolving user", err)
	}
	if user.Login != username {
		return nil, apperror.CaseMismatch(username, user.Login)
	}

	// === 3. LIST REPOSITORIES ===
	progress(PhaseListingRepositories)
	repos, err := s.provider.ListRepositories(ctx, username)
	if err != nil {
		return nil, required("listing repositories", err)
	}
	if s.opts.IncludeStarred {
		starred, err := s.provider.ListStarred(ctx, username)
		if err != nil {
			return nil, required("listing starred repositories", err)
		}
		repos = append(repos, starred...)
	}

	// === 4. DEDUPE + FILTER ===
	repos = OwnedBy(Dedupe(repos), username)
	log.Debug("repositories selected",
		slog.String("user", username),
		slog.Int("count", len(repos)),
	)

	// Last point at which the caller going away aborts the lookup.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("lookup cancelled: %w", err)
	}

	// === 5. README FAN-OUT ===
	progress(PhaseFetchingReadmes)
	perRepo := s.classifyReadmes(ctx, log, repos)

	set := skills.NewSet(s.classifier.Vocabulary())
	for _, found := range perRepo {
		set.Add(found...)
	}

	// === 6. ASSEMBLE ===
	summary := &model.ProfileSummary{
		Username:     user.Login,
		Name:         user.Name,
		AvatarURL:    user.AvatarURL,
		Bio:          user.Bio,
		Location:     user.Location,
		Followers:    user.Followers,
		Following:    user.Following,
		Repositories: Summaries(SortByStars(repos)),
		Skills:       set.List(),
	}
	progress(PhaseDone)
	return summary, nil
}

// classifyReadmes fetches and classifies every README concurrently.
//
// Each goroutine writes only results[i]; the caller merges after Wait, so no
// locking is needed and the merged set does not depend on completion order.
// The fan-out is detached from ctx cancellation: once started, every fetch
// runs until it finishes or hits ReadmeTimeout.
func (s *ProfileService) classifyReadmes(ctx context.Context, log *slog.Logger, repos []model.Repository) [][]string {
	results := make([][]string, len(repos))
	fanCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(s.opts.ReadmeConcurrency)
	for i, repo := range repos {
		i, repo := i, repo
		g.Go(func() error {
			rctx, cancel := context.WithTimeout(fanCtx, s.opts.ReadmeTimeout)
			defer cancel()

			text, err := s.provider.GetReadme(rctx, repo.OwnerLogin, repo.Name)
			switch {
			case errors.Is(err, provider.ErrNoReadme):
				s.metrics.ObserveReadme(metrics.ReadmeMissing)
				return nil
			case err != nil:
				s.metrics.ObserveReadme(metrics.ReadmeFailed)
				log.Debug("readme fetch failed",
					slog.String("repo", repo.OwnerLogin+"/"+repo.Name),
					slog.String("error", err.Error()),
				)
				return nil
			}

			s.metrics.ObserveReadme(metrics.ReadmeOK)
			results[i] = s.classifier.Extract(text)
			return nil
		})
	}
	_ = g.Wait() // goroutines never return an error

	return results
}

// required passes typed provider errors and caller cancellation through and
// turns anything else into ProviderUnavailable.
func required(step string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", step, err)
	}
	return fmt.Errorf("%s: %v: %w", step, err, apperror.ProviderUnavailable(0, ""))
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, apperror.ErrEmptyUsername):
		return metrics.OutcomeEmptyUsername
	case errors.Is(err, apperror.ErrUserNotFound):
		return metrics.OutcomeUserNotFound
	case errors.Is(err, apperror.ErrCaseMismatch):
		return metrics.OutcomeCaseMismatch
	case errors.Is(err, apperror.ErrProviderUnavailable):
		return metrics.OutcomeProviderUnavailable
	case errors.Is(err, context.Canceled):
		return metrics.OutcomeCancelled
	default:
		return metrics.OutcomeError
	}
}

// Dedupe drops repositories whose ID was already seen. The first occurrence
// wins and relative order is preserved.
func Dedupe(repos []model.Repository) []model.Repository {
	seen := make(map[int64]struct{}, len(repos))
	out := make([]model.Repository, 0, len(repos))
	for _, r := range repos {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}

// OwnedBy keeps the repositories username personally authored: owned by that
// exact login, owned by an individual account, and not a fork.
func OwnedBy(repos []model.Repository, username string) []model.Repository {
	out := make([]model.Repository, 0, len(repos))
	for _, r := range repos {
		if r.OwnerLogin != username || r.OwnerType != model.OwnerTypeUser || r.Fork {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SortByStars sorts repos by star count, highest first. Ties keep their order.
func SortByStars(repos []model.Repository) []model.Repository {
	sort.SliceStable(repos, func(i, j int) bool {
		return repos[i].Stars > repos[j].Stars
	})
	return repos
}

// Summaries projects repositories into their summary form (never nil).
func Summaries(repos []model.Repository) []model.RepositorySummary {
	out := make([]model.RepositorySummary, len(repos))
	for i, r := range repos {
		out[i] = r.Summary()
	}
	return out
}
