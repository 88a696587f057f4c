package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/devprofile/internal/model"
	"github.com/sakif/devprofile/internal/service"
)

// ProfileFetcher is what the handler needs from the service layer.
//
// WHY AN INTERFACE HERE?
// The handler is wired to either the bare ProfileService or the caching
// wrapper around it, and tests hand it a stub. Declaring the interface on the
// consumer side keeps the handler ignorant of which one it got.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, input string, opts ...service.FetchOption) (*model.ProfileSummary, error)
}

// ProfileHandler serves profile summaries as JSON.
type ProfileHandler struct {
	profiles ProfileFetcher
	logger   *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles ProfileFetcher, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// HandleGetProfile returns the summary for one GitHub user.
//
// HTTP: GET /profile/{username}
//
//	GET /api/github/{username}
//	GET /profile?user=<username or profile URL>
//
// The query form exists because a full profile URL cannot travel in a path
// segment. Both forms end up in the same FetchProfile call.
//
// RESPONSE FORMAT:
//
//	{
//	  "login": "octocat", "name": "The Octocat", "avatar": "https://...",
//	  "bio": null, "location": "San Francisco", "followers": 10, "following": 1,
//	  "repos": [{"name": "hello", "description": null, "language": "Go",
//	             "url": "https://github.com/octocat/hello", "stargazers_count": 3}],
//	  "skills": ["JavaScript", "React"]
//	}
//
// Errors use the shape produced by writeError.
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	input := chi.URLParam(r, "username")
	if input == "" {
		input = r.URL.Query().Get("user")
	}

	summary, err := h.profiles.FetchProfile(r.Context(), input)
	if err != nil {
		h.logger.Debug("profile request failed",
			slog.String("input", input),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// HandleHealth reports that the process is up. It does not call GitHub.
//
// HTTP: GET /healthz
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
