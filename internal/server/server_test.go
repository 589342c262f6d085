package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/backstory/internal/config"
	"github.com/runnerr0/backstory/internal/flows"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Generator.Timezone = "UTC"
	return New(cfg, flows.NewLibrary(flows.DefaultPools()))
}

func do(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/")

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "backstory", body["service"])
}

func TestIndex_UnknownPathIs404(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerate_ReturnsHistoryFile(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/generate?seed=42&weeks=1")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "42", rec.Header().Get("X-Seed"))
	assert.Equal(t, "1", rec.Header().Get("X-Weeks"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "filename=History")

	visits, err := strconv.Atoi(rec.Header().Get("X-Visits"))
	require.NoError(t, err)
	assert.Greater(t, visits, 0, "a one-week window includes weekends, which always have sessions")

	// The body is a real SQLite database.
	body := rec.Body.Bytes()
	require.Greater(t, len(body), 100)
	assert.True(t, strings.HasPrefix(string(body), "SQLite format 3\x00"))
}

func TestGenerate_BadParams(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{
		"/api/generate?weeks=0",
		"/api/generate?weeks=abc",
		"/api/generate?weeks=99",
		"/api/generate?seed=abc",
	} {
		rec := do(t, s, http.MethodGet, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestPreview(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/preview?seed=42&weeks=1")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body PreviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, int64(42), body.Seed)
	assert.Equal(t, 1, body.Weeks)
	assert.Greater(t, body.TotalVisits, 0)
	assert.LessOrEqual(t, len(body.Visits), 50)
	assert.GreaterOrEqual(t, body.TotalVisits, len(body.Visits))

	for _, v := range body.Visits {
		assert.NotEmpty(t, v.URL)
		assert.False(t, v.Time.IsZero())
	}
}

func TestPreview_LimitClamped(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/preview?seed=1&weeks=1&limit=100000")

	require.Equal(t, http.StatusOK, rec.Code)

	var body PreviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.LessOrEqual(t, len(body.Visits), config.DefaultConfig().Server.MaxPreviewLimit)
}

func TestPreview_BadLimit(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/preview?limit=-5")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSHeaders(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodOptions, "/api/preview")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(t, s, http.MethodGet, "/")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
