package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subvention/internal/config"
	"subvention/internal/models"
)

type stubStore struct{}

func (stubStore) ApplyExclusionKeyword(ctx context.Context, name, description string) (*models.ApplyResult, error) {
	return &models.ApplyResult{KeywordID: 1, Keyword: name}, nil
}

func (stubStore) RevokeExclusionKeyword(ctx context.Context, id int64) (*models.RevokeResult, error) {
	return &models.RevokeResult{KeywordID: id}, nil
}

func (stubStore) ListActiveKeywords(ctx context.Context) ([]models.ExclusionKeyword, error) {
	return nil, nil
}

func (stubStore) GetKeyword(ctx context.Context, id int64) (*models.ExclusionKeyword, error) {
	return &models.ExclusionKeyword{ID: id, Name: "Youth"}, nil
}

func (stubStore) FindExcludedBy(ctx context.Context, keyword string) ([]models.AnnouncementSummary, error) {
	return nil, nil
}

func (stubStore) ListKeywordEvents(ctx context.Context, keywordID int64) ([]models.KeywordEvent, error) {
	return nil, nil
}

func (stubStore) ListAnnouncements(ctx context.Context, f models.AnnouncementFilter) ([]models.AnnouncementListItem, int64, error) {
	return nil, 0, nil
}

func (stubStore) SearchAnnouncements(ctx context.Context, keyword string, limit int) ([]models.AnnouncementListItem, error) {
	return nil, nil
}

func (stubStore) GetAnnouncementByID(ctx context.Context, id int64) (*models.Announcement, error) {
	return &models.Announcement{ID: id}, nil
}

func (stubStore) GetSubventionByID(ctx context.Context, id int64) (*models.Subvention, error) {
	return &models.Subvention{ID: id}, nil
}

func (stubStore) Ping(ctx context.Context) error {
	return nil
}

type rejectAll struct{}

func (rejectAll) VerifyToken(ctx context.Context, rawToken string) (string, error) {
	return "", assert.AnError
}

func newTestServer(t *testing.T, rateLimit int) *Server {
	t.Helper()
	s := New(&config.Config{RateLimitMax: rateLimit, CORSOrigins: "https://example.org"})
	s.RegisterRoutes(stubStore{}, nil)
	return s
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t, 100)

	tests := []struct {
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/api/exclusion-keywords", "", http.StatusOK},
		{http.MethodGet, "/api/exclusion-keywords/1", "", http.StatusOK},
		{http.MethodPost, "/api/exclusion-keywords", `{"keyword":"Youth"}`, http.StatusCreated},
		{http.MethodDelete, "/api/exclusion-keywords/1", "", http.StatusOK},
		{http.MethodGet, "/api/announcements", "", http.StatusOK},
		{http.MethodGet, "/api/announcements/search?keyword=Youth", "", http.StatusOK},
		{http.MethodGet, "/api/announcements/1", "", http.StatusOK},
		{http.MethodGet, "/api/subventions/1", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			resp, err := s.App.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
		})
	}
}

func TestMutatingRoutesRequireToken(t *testing.T) {
	s := New(&config.Config{RateLimitMax: 100})
	s.RegisterRoutes(stubStore{}, rejectAll{})

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/api/exclusion-keywords", strings.NewReader(`{"keyword":"Youth"}`)),
		httptest.NewRequest(http.MethodDelete, "/api/exclusion-keywords/1", nil),
	} {
		resp, err := s.App.Test(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	// Reads stay open.
	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/api/exclusion-keywords", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNotFoundUsesJSONEnvelope(t *testing.T) {
	s := newTestServer(t, 100)

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "error", body["status"])
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, 2)

	var last int
	for i := 0; i < 3; i++ {
		resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/api/exclusion-keywords", nil))
		require.NoError(t, err)
		resp.Body.Close()
		last = resp.StatusCode
	}
	assert.Equal(t, http.StatusTooManyRequests, last)

	// Health checks are never limited.
	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
