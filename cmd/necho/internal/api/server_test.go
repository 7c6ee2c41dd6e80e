package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hasirciogluhq/necho/cmd/necho/internal/core"
)

type fakeSource struct {
	accepting bool
	stats     core.Stats
}

func (f *fakeSource) Accepting() bool   { return f.accepting }
func (f *fakeSource) Stats() core.Stats { return f.stats }

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthIsAlwaysOK(t *testing.T) {
	hs := NewHealthServer(":0", &fakeSource{})
	rec := get(t, hs.Handler(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestReadyFollowsAcceptLoop(t *testing.T) {
	source := &fakeSource{}
	hs := NewHealthServer(":0", source)

	rec := get(t, hs.Handler(), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	source.accepting = true
	rec = get(t, hs.Handler(), "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", rec.Body.String())
}

func TestStats(t *testing.T) {
	hs := NewHealthServer(":0", &fakeSource{stats: core.Stats{ActiveConnections: 2, TotalConnections: 9, LinesProcessed: 40}})

	rec := get(t, hs.Handler(), "/stats")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"active_connections":2,"total_connections":9,"lines_processed":40}`, rec.Body.String())
}
