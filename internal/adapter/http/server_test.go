package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	httpadapter "github.com/couchcryptid/collision-data-etl/internal/adapter/http"
	"github.com/couchcryptid/collision-data-etl/internal/domain"
	"github.com/couchcryptid/collision-data-etl/internal/observability"
	"github.com/couchcryptid/collision-data-etl/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRun struct {
	err              error
	processed, total int
}

func (s *stubRun) CheckReadiness(_ context.Context) error { return s.err }

func (s *stubRun) Progress() (int, int) { return s.processed, s.total }

func newTestServer(run *stubRun) *httpadapter.Server {
	return httpadapter.NewServer(":0", run, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func get(t *testing.T, srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(&stubRun{}), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(t, newTestServer(&stubRun{}), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(t, newTestServer(&stubRun{err: errors.New("no records normalized yet")}), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "no records normalized yet", body["error"])
}

func TestProgressReportsCounts(t *testing.T) {
	rec := get(t, newTestServer(&stubRun{processed: 4, total: 10}), "/progress")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"processed":4,"total":10}`, rec.Body.String())
}

type sliceSource []domain.RawRecord

func (s sliceSource) Load(_ context.Context) ([]domain.RawRecord, error) { return s, nil }

type passNormalizer struct{}

func (passNormalizer) Normalize(_ context.Context, raw domain.RawRecord) domain.Record {
	return domain.Record{Raw: raw.Value}
}

func TestEndpointsTrackPipelineRun(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	src := sliceSource{{Index: 0, Value: []byte(`"a"`)}, {Index: 1, Value: []byte(`"b"`)}}
	p := pipeline.New(src, passNormalizer{}, nil, logger, observability.NewMetricsForTesting())
	srv := httpadapter.NewServer(":0", p, logger)

	rec := get(t, srv, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"processed":0,"total":0}`, get(t, srv, "/progress").Body.String())

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	rec = get(t, srv, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
	assert.JSONEq(t, `{"processed":2,"total":2}`, get(t, srv, "/progress").Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(&stubRun{}), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestUnknownRouteReturns404(t *testing.T) {
	rec := get(t, newTestServer(&stubRun{}), "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
