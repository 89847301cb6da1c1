package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/bullscan/internal/api/handlers"
	"github.com/wonny/bullscan/internal/contracts"
	"github.com/wonny/bullscan/internal/strategyconfig"
	"github.com/wonny/bullscan/pkg/logger"
	"github.com/wonny/bullscan/pkg/metrics"
)

type fakeStore struct {
	reports []*contracts.RankedReport // newest first
	err     error
	limit   int
}

func (s *fakeStore) Latest(ctx context.Context) (*contracts.RankedReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.reports) == 0 {
		return nil, contracts.ErrReportNotFound
	}
	return s.reports[0], nil
}

func (s *fakeStore) List(ctx context.Context, limit int) ([]*contracts.RankedReport, error) {
	s.limit = limit
	if limit > len(s.reports) {
		limit = len(s.reports)
	}
	return s.reports[:limit], s.err
}

func (s *fakeStore) Get(ctx context.Context, runID string) (*contracts.RankedReport, error) {
	for _, r := range s.reports {
		if r.RunID == runID {
			return r, nil
		}
	}
	return nil, contracts.ErrReportNotFound
}

func newTestRouter(t *testing.T, store contracts.ReportStore) http.Handler {
	t.Helper()
	strategy, err := handlers.NewStrategyHandler(strategyconfig.Default())
	require.NoError(t, err)

	rec := metrics.New()
	rec.RecordScan(true, 1.5)

	return NewRouter(Handlers{
		Reports:  handlers.NewReportHandler(store, logger.Nop()),
		Strategy: strategy,
		Metrics:  rec.Handler(),
	}, logger.Nop())
}

func sampleStore() *fakeStore {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mk := func(id string, d time.Time) *contracts.RankedReport {
		return &contracts.RankedReport{
			RunID: id,
			AsOf:  d,
			Entries: []contracts.RankedEntry{
				{Rank: 1, SignalScore: contracts.SignalScore{Symbol: "AAPL", Score: 77.3, Price: 187.5, Regime: contracts.RegimeCalm}},
			},
		}
	}
	return &fakeStore{reports: []*contracts.RankedReport{mk("run_b", day.AddDate(0, 0, 1)), mk("run_a", day)}}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestRouter(t, sampleStore()), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestReports_Latest(t *testing.T) {
	rec := get(t, newTestRouter(t, sampleStore()), "/api/reports/latest")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		RunID   string `json:"run_id"`
		Entries []struct {
			Symbol string `json:"symbol"`
			Regime string `json:"regime"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run_b", body.RunID)
	assert.Equal(t, "Calm", body.Entries[0].Regime)
}

func TestReports_LatestEmpty(t *testing.T) {
	rec := get(t, newTestRouter(t, &fakeStore{}), "/api/reports/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReports_List(t *testing.T) {
	store := sampleStore()
	h := newTestRouter(t, store)

	rec := get(t, h, "/api/reports?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	get(t, h, "/api/reports?limit=5000")
	assert.Equal(t, 100, store.limit)

	rec = get(t, h, "/api/reports?limit=zero")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReports_Get(t *testing.T) {
	h := newTestRouter(t, sampleStore())

	rec := get(t, h, "/api/reports/run_a")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"run_id":"run_a"`)

	rec = get(t, h, "/api/reports/run_zzz")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReports_StoreError(t *testing.T) {
	rec := get(t, newTestRouter(t, &fakeStore{err: errors.New("db down")}), "/api/reports/latest")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestStrategy(t *testing.T) {
	rec := get(t, newTestRouter(t, sampleStore()), "/api/strategy")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body["config_hash"], 64)
	assert.Equal(t, 21.0, body["min_bars"])
}

func TestMetrics(t *testing.T) {
	rec := get(t, newTestRouter(t, sampleStore()), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "scans_total")
}
