package util

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartTimer_DisabledIsNil(t *testing.T) {
	PerfEnabled = false
	timer := StartTimer("noop")
	assert.Nil(t, timer)
	assert.Zero(t, timer.Stop())
}

func TestPerfTracker_MetricsAndReport(t *testing.T) {
	pt := NewPerfTracker()
	pt.Record("api.search", 30*time.Millisecond)
	pt.Record("api.search", 10*time.Millisecond)
	pt.Record("api.details", 5*time.Millisecond)
	pt.IncrementCounter("api.cache_hit")
	pt.IncrementCounter("api.cache_hit")

	metrics := pt.Metrics()
	require.Len(t, metrics, 2)
	assert.Equal(t, "api.search", metrics[0].Name)
	assert.Equal(t, int64(2), metrics[0].Count)
	assert.Equal(t, 20*time.Millisecond, metrics[0].Avg())
	assert.Equal(t, int64(2), pt.GetCounter("api.cache_hit"))
	assert.Zero(t, pt.GetCounter("missing"))

	var buf bytes.Buffer
	pt.WriteReport(&buf)
	assert.Contains(t, buf.String(), "PERFORMANCE REPORT")
	assert.Contains(t, buf.String(), "api.search")
	assert.Contains(t, buf.String(), "api.cache_hit")
}
