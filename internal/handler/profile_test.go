package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/devprofile/internal/apperror"
	"github.com/sakif/devprofile/internal/handler"
	"github.com/sakif/devprofile/internal/model"
	"github.com/sakif/devprofile/internal/service"
)

// MockProfiles implements handler.ProfileFetcher for handler tests.
type MockProfiles struct {
	CapturedInput string
	ReturnSummary *model.ProfileSummary
	ReturnErr     error
}

func (m *MockProfiles) FetchProfile(_ context.Context, input string, _ ...service.FetchOption) (*model.ProfileSummary, error) {
	m.CapturedInput = input
	if m.ReturnErr != nil {
		return nil, m.ReturnErr
	}
	return m.ReturnSummary, nil
}

func newRouter(h *handler.ProfileHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/profile/{username}", h.HandleGetProfile)
	r.Get("/profile", h.HandleGetProfile)
	return r
}

func TestProfileHandler_HandleGetProfile(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	t.Run("success", func(t *testing.T) {
		desc := "a tiny web server"
		lang := "Go"
		mock := &MockProfiles{
			ReturnSummary: &model.ProfileSummary{
				Username:  "octocat",
				AvatarURL: "https://avatars.example/octocat.png",
				Followers: 10,
				Repositories: []model.RepositorySummary{
					{Name: "hello", Description: &desc, Language: &lang, URL: "https://github.com/octocat/hello", Stars: 3},
					{Name: "bare", URL: "https://github.com/octocat/bare"},
				},
				Skills: []string{"React", "Python"},
			},
		}
		h := handler.NewProfileHandler(mock, logger)

		req := httptest.NewRequest(http.MethodGet, "/profile/octocat", nil)
		rr := httptest.NewRecorder()
		newRouter(h).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		assert.Equal(t, "octocat", mock.CapturedInput)

		var body map[string]any
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "octocat", body["login"])
		assert.Equal(t, "https://avatars.example/octocat.png", body["avatar"])
		assert.Nil(t, body["name"])
		assert.Nil(t, body["bio"])
		assert.Equal(t, []any{"React", "Python"}, body["skills"])

		repos, ok := body["repos"].([]any)
		require.True(t, ok)
		require.Len(t, repos, 2)
		first := repos[0].(map[string]any)
		assert.Equal(t, "hello", first["name"])
		assert.Equal(t, "Go", first["language"])
		assert.Equal(t, "https://github.com/octocat/hello", first["url"])
		assert.Equal(t, 3.0, first["stargazers_count"])
		second := repos[1].(map[string]any)
		assert.Contains(t, second, "description")
		assert.Nil(t, second["description"])
	})

	t.Run("empty lists encode as arrays", func(t *testing.T) {
		mock := &MockProfiles{
			ReturnSummary: &model.ProfileSummary{
				Username:     "newbie",
				Repositories: []model.RepositorySummary{},
				Skills:       []string{},
			},
		}
		h := handler.NewProfileHandler(mock, logger)

		req := httptest.NewRequest(http.MethodGet, "/profile/newbie", nil)
		rr := httptest.NewRecorder()
		newRouter(h).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"repos":[]`)
		assert.Contains(t, rr.Body.String(), `"skills":[]`)
	})

	t.Run("profile URL in query", func(t *testing.T) {
		mock := &MockProfiles{ReturnSummary: &model.ProfileSummary{Username: "octocat"}}
		h := handler.NewProfileHandler(mock, logger)

		req := httptest.NewRequest(http.MethodGet, "/profile?user=https%3A%2F%2Fgithub.com%2Foctocat", nil)
		rr := httptest.NewRecorder()
		newRouter(h).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "https://github.com/octocat", mock.CapturedInput)
	})

	errorCases := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"empty username", apperror.EmptyUsername(), http.StatusBadRequest, "empty_username"},
		{"user not found", apperror.UserNotFound("ghost"), http.StatusNotFound, "user_not_found"},
		{"case mismatch", apperror.CaseMismatch("Torvalds", "torvalds"), http.StatusConflict, "case_mismatch"},
		{"provider unavailable", apperror.ProviderUnavailable(403, "API rate limit exceeded"), http.StatusBadGateway, "provider_unavailable"},
		{"wrapped error", errors.Join(errors.New("context"), apperror.UserNotFound("ghost")), http.StatusNotFound, "user_not_found"},
		{"untyped error", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			mock := &MockProfiles{ReturnErr: tc.err}
			h := handler.NewProfileHandler(mock, logger)

			req := httptest.NewRequest(http.MethodGet, "/profile/someone", nil)
			rr := httptest.NewRecorder()
			newRouter(h).ServeHTTP(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)

			var body handler.ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, tc.wantKind, body.Error)
			assert.NotEmpty(t, body.Message)
		})
	}

	t.Run("untyped error hides details", func(t *testing.T) {
		mock := &MockProfiles{ReturnErr: errors.New("dial tcp 10.0.0.1:443: secret detail")}
		h := handler.NewProfileHandler(mock, logger)

		req := httptest.NewRequest(http.MethodGet, "/profile/someone", nil)
		rr := httptest.NewRecorder()
		newRouter(h).ServeHTTP(rr, req)

		assert.NotContains(t, rr.Body.String(), "secret detail")
	})
}

func TestHandleHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	handler.HandleHealth(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}
