package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentskill/logger"
	"agentskill/models"
)

func init() {
	// Initialize logger for tests
	_ = logger.Initialize("debug")
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://api.internal:8000/")

	assert.NotNil(t, client)
	assert.Equal(t, "http://api.internal:8000", client.BaseURL())
	assert.Equal(t, defaultTimeout, client.restyClient.GetClient().Timeout)
	assert.Equal(t, 0, client.restyClient.RetryCount)
}

func TestSkillsParams(t *testing.T) {
	testCases := []struct {
		name  string
		query string
		opts  Options
		want  map[string]string
	}{
		{
			name: "empty",
			want: map[string]string{},
		},
		{
			name:  "query is trimmed",
			query: "  pdf  ",
			opts:  Options{Limit: 24},
			want:  map[string]string{"q": "pdf", "limit": "24"},
		},
		{
			name: "facet with offset",
			opts: Options{Topic: "mcp", Limit: 24, Offset: 48},
			want: map[string]string{"topic": "mcp", "limit": "24", "offset": "48"},
		},
		{
			name: "latest",
			opts: Options{Sort: SortNewest, Owner: "acme", Language: "Go"},
			want: map[string]string{"sort": "newest", "owner": "acme", "language": "Go"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SkillsParams(tc.query, tc.opts))
		})
	}
}

func TestFetchSkills(t *testing.T) {
	testCases := []struct {
		name           string
		query          string
		opts           Options
		mockBody       string
		mockStatusCode int
		expectedQuery  string
		expectedTotal  int
		expectedItems  int
		expectedErr    error
	}{
		{
			name:           "successful fetch",
			opts:           Options{Topic: "mcp", Limit: 24},
			mockBody:       `{"total":2,"items":[{"id":1,"full_name":"a/b","html_url":"https://github.com/a/b"},{"id":2,"full_name":"c/d","html_url":"https://github.com/c/d"}]}`,
			mockStatusCode: http.StatusOK,
			expectedQuery:  "limit=24&topic=mcp",
			expectedTotal:  2,
			expectedItems:  2,
		},
		{
			name:           "invalid records dropped",
			query:          "agent",
			mockBody:       `{"total":5,"items":[{"id":1,"full_name":"broken"},{"id":2,"full_name":"c/d","html_url":"https://github.com/c/d"}]}`,
			mockStatusCode: http.StatusOK,
			expectedQuery:  "q=agent",
			expectedTotal:  5,
			expectedItems:  1,
		},
		{
			name:           "null items",
			mockBody:       `{"total":0,"items":null}`,
			mockStatusCode: http.StatusOK,
			expectedQuery:  "",
			expectedItems:  0,
		},
		{
			name:           "server error",
			mockBody:       `{"detail":"boom"}`,
			mockStatusCode: http.StatusInternalServerError,
			expectedErr:    ErrUpstream,
		},
		{
			name:           "malformed body",
			mockBody:       `{"total":`,
			mockStatusCode: http.StatusOK,
			expectedErr:    ErrUpstream,
		},
		{
			name:        "unknown sort",
			opts:        Options{Sort: "forks"},
			expectedErr: ErrInvalidInput,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/skills", r.URL.Path)
				if tc.expectedErr == nil {
					assert.Equal(t, tc.expectedQuery, r.URL.RawQuery)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.mockStatusCode)
				_, _ = w.Write([]byte(tc.mockBody))
			}))
			defer server.Close()

			client := NewClient(server.URL)
			list, err := client.FetchSkills(context.Background(), tc.query, tc.opts)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Nil(t, list)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedTotal, list.Total)
			assert.Len(t, list.Items, tc.expectedItems)
			assert.NotNil(t, list.Items)
		})
	}
}

func TestFetchSkill(t *testing.T) {
	pushed := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	testCases := []struct {
		name           string
		owner          string
		repo           string
		mockResponse   any
		mockStatusCode int
		expectedPath   string
		expectedErr    error
	}{
		{
			name:  "successful fetch",
			owner: "anthropics",
			repo:  "skills",
			mockResponse: models.Skill{
				ID:           9,
				FullName:     "anthropics/skills",
				HTMLURL:      "https://github.com/anthropics/skills",
				Stars:        1200,
				LastPushedAt: models.Timestamp{Time: pushed},
			},
			mockStatusCode: http.StatusOK,
			expectedPath:   "/skills/anthropics/skills",
		},
		{
			name:           "not found",
			owner:          "ghost",
			repo:           "nothing",
			mockResponse:   map[string]string{"detail": "Not Found"},
			mockStatusCode: http.StatusNotFound,
			expectedPath:   "/skills/ghost/nothing",
			expectedErr:    ErrNotFound,
		},
		{
			name:           "bad gateway",
			owner:          "a",
			repo:           "b",
			mockResponse:   map[string]string{},
			mockStatusCode: http.StatusBadGateway,
			expectedPath:   "/skills/a/b",
			expectedErr:    ErrUpstream,
		},
		{
			name:           "record without owner/repo",
			owner:          "a",
			repo:           "b",
			mockResponse:   models.Skill{FullName: "a"},
			mockStatusCode: http.StatusOK,
			expectedPath:   "/skills/a/b",
			expectedErr:    ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tc.expectedPath, r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.mockStatusCode)
				_ = json.NewEncoder(w).Encode(tc.mockResponse)
			}))
			defer server.Close()

			client := NewClient(server.URL)
			skill, err := client.FetchSkill(context.Background(), tc.owner, tc.repo)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "anthropics/skills", skill.FullName)
			assert.Equal(t, "skills", skill.Name)
			assert.True(t, pushed.Equal(skill.LastPushedAt.Time))
		})
	}
}

func TestFetchSkillsToleratesLooseOptionalFields(t *testing.T) {
	body := `{"total":2,"items":[
		{"id":1,"full_name":"a/b","html_url":"https://github.com/a/b",
		 "last_pushed_at":"2025-01-01T00:00:00","fetched_at":"yesterday"},
		{"id":2,"full_name":"c/d","last_pushed_at":"2025-02-03","fetched_at":17}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	list, err := NewClient(server.URL).FetchSkills(context.Background(), "", Options{Limit: 24})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)

	first, second := list.Items[0], list.Items[1]
	assert.True(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Equal(first.LastPushedAt.Time))
	assert.True(t, first.FetchedAt.IsZero())
	assert.True(t, time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC).Equal(second.LastPushedAt.Time))
	assert.True(t, second.FetchedAt.IsZero())
	assert.Equal(t, "https://github.com/c/d", second.HTMLURL)
}

func TestFetchSkillRejectsEmptyParts(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	_, err := client.FetchSkill(context.Background(), "", "repo")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFetchSkillEscapesPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/skills/my%20org/repo", r.URL.EscapedPath())
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).FetchSkill(context.Background(), "my org", "repo")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchFacets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/facets/languages", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"value":"Python","count":40},{"value":" ","count":3}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	list, err := client.FetchFacets(context.Background(), models.FacetLanguages, 50)
	require.NoError(t, err)
	assert.Equal(t, []models.FacetItem{{Value: "Python", Count: 40}}, list.Items)

	_, err = client.FetchFacets(context.Background(), models.FacetKind("stars"), 10)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFetchMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/metrics", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pv":1234,"uv":56}`))
	}))
	defer server.Close()

	metrics, err := NewClient(server.URL).FetchMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &models.Metrics{PV: 1234, UV: 56}, metrics)
}

func TestTrackVisit(t *testing.T) {
	var gotPath, gotVisitor, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotVisitor = r.Header.Get(VisitorHeader)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	require.NoError(t, client.TrackVisit(context.Background(), "visitor-1"))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/metrics/track", gotPath)
	assert.Equal(t, "visitor-1", gotVisitor)

	require.NoError(t, client.TrackSkillVisit(context.Background(), 42, "visitor-2"))
	assert.Equal(t, "/metrics/skills/42/track", gotPath)
	assert.Equal(t, "visitor-2", gotVisitor)

	assert.ErrorIs(t, client.TrackVisit(context.Background(), ""), ErrInvalidInput)
	assert.ErrorIs(t, client.TrackSkillVisit(context.Background(), 0, "v"), ErrInvalidInput)
}

func TestTransportFailureIsUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url).FetchMetrics(context.Background())
	assert.ErrorIs(t, err, ErrUpstream)
}
