package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.ScanSubmitted(ScanAccepted)
	m.ScanSubmitted(ScanAccepted)
	m.ScanSubmitted("DUPLICATE_TASK")
	m.WinRecorded("row")
	m.PlayerRegistered(true)
	m.PlayerRegistered(false)
	m.PlayerRegistered(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.scans.WithLabelValues(ScanAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.scans.WithLabelValues("DUPLICATE_TASK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.wins.WithLabelValues("row")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.registrations.WithLabelValues("new")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.registrations.WithLabelValues("returning")))
}

func TestGameGauges(t *testing.T) {
	m := New()

	m.SetGameState(true, 3)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.gameActive))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.winners))

	m.SetGameState(false, 10)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.gameActive))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.winners))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ScanSubmitted(ScanAccepted)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `bingo_scans_total{result="accepted"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
