package scatterd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lgpang/smash/internal/engine"
)

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHTTPHealthz(t *testing.T) {
	h := NewHTTPServer(newTestService(t)).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHTTPCollide(t *testing.T) {
	h := NewHTTPServer(newTestService(t)).Handler()
	rec := post(t, h, "/v1/collide", `{"projectile":"p","target":"p","sqrt_s":2.0}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var res CollideResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Elastic", res.Process)
	assert.Len(t, res.Outgoing, 2)
}

func TestHTTPBranches(t *testing.T) {
	h := NewHTTPServer(newTestService(t)).Handler()
	rec := post(t, h, "/v1/branches", `{"projectile":"p","target":"p","sqrt_s":2.3}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res BranchesResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.Channels)
	assert.Greater(t, res.Total, 0.0)
}

func TestHTTPBatch(t *testing.T) {
	h := NewHTTPServer(newTestService(t)).Handler()
	rec := post(t, h, "/v1/batch", `{"projectile":"p","target":"p","sqrt_s":2.0,"events":20}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res RunRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotNil(t, res.Stats)
	assert.Equal(t, int64(20), res.Stats.Total)
	assert.Equal(t, engine.RunStatusCompleted, res.Run.Status)

	get := httptest.NewRecorder()
	h.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/v1/runs/"+res.Run.ID, nil))
	require.Equal(t, http.StatusOK, get.Code, get.Body.String())
	var stored RunRecord
	require.NoError(t, json.Unmarshal(get.Body.Bytes(), &stored))
	assert.Equal(t, res.Run.ID, stored.Run.ID)
	assert.Equal(t, 20, stored.Request.Events)
}

func TestHTTPRuns(t *testing.T) {
	h := NewHTTPServer(newTestService(t)).Handler()
	for i := 0; i < 3; i++ {
		rec := post(t, h, "/v1/batch", `{"projectile":"p","target":"p","sqrt_s":2.0,"events":5}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/runs?limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Runs []RunRecord `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Runs, 2)

	bad := httptest.NewRecorder()
	h.ServeHTTP(bad, httptest.NewRequest(http.MethodGet, "/v1/runs?limit=x", nil))
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	missing := httptest.NewRecorder()
	h.ServeHTTP(missing, httptest.NewRequest(http.MethodGet, "/v1/runs/run-unknown", nil))
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestHTTPErrors(t *testing.T) {
	h := NewHTTPServer(newTestService(t)).Handler()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"method", http.MethodGet, "/v1/collide", "", http.StatusMethodNotAllowed},
		{"malformed", http.MethodPost, "/v1/collide", `{"projectile":`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/v1/collide", `{"projectile":"p","target":"p","sqrt_s":2,"energy":1}`, http.StatusBadRequest},
		{"unknown species", http.MethodPost, "/v1/collide", `{"projectile":"x","target":"p","sqrt_s":2}`, http.StatusBadRequest},
		{"below threshold", http.MethodPost, "/v1/branches", `{"projectile":"p","target":"p","sqrt_s":1.2}`, http.StatusBadRequest},
		{"events", http.MethodPost, "/v1/batch", `{"projectile":"p","target":"p","sqrt_s":2,"events":0}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}
