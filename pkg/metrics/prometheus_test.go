package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func family(t *testing.T, r *Recorder, name string) *dto.MetricFamily {
	t.Helper()
	families, err := r.Gatherer().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return nil
}

func TestRecorder(t *testing.T) {
	r := New()

	r.RecordScan(true, 1.2)
	r.RecordScan(false, 0.1)
	r.RecordScored()
	r.RecordScored()
	r.RecordSkipped("insufficient_data")
	r.RecordTopScore(81.5)

	scans := family(t, r, "bullscan_scans_total")
	assert.Len(t, scans.GetMetric(), 2)

	scored := family(t, r, "bullscan_symbols_scored_total")
	assert.Equal(t, 2.0, scored.GetMetric()[0].GetCounter().GetValue())

	top := family(t, r, "bullscan_top_score")
	assert.Equal(t, 81.5, top.GetMetric()[0].GetGauge().GetValue())
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.RecordScan(true, 1)
		r.RecordScored()
		r.RecordSkipped("x")
		r.RecordTopScore(1)
		r.RecordFetch("yahoo", 0.2)
	})
}

func TestHandler(t *testing.T) {
	r := New()
	r.RecordFetch("yahoo", 0.3)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "bullscan_fetch_duration_seconds")
}
