// Package util provides performance profiling utilities
package util

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// PerfEnabled indicates if performance profiling is enabled
var PerfEnabled bool

// PerfMetric represents the accumulated timings of one operation
type PerfMetric struct {
	Name      string
	Last      time.Duration
	Count     int64
	TotalTime time.Duration
}

// Avg returns the mean duration.
func (m PerfMetric) Avg() time.Duration {
	if m.Count == 0 {
		return 0
	}
	return m.TotalTime / time.Duration(m.Count)
}

// PerfTracker tracks performance metrics across the application
type PerfTracker struct {
	mu       sync.RWMutex
	metrics  map[string]*PerfMetric
	started  time.Time
	counters map[string]*int64
}

var (
	globalPerf     *PerfTracker
	globalPerfOnce sync.Once
)

// GetPerfTracker returns the global performance tracker
func GetPerfTracker() *PerfTracker {
	globalPerfOnce.Do(func() {
		globalPerf = NewPerfTracker()
	})
	return globalPerf
}

func NewPerfTracker() *PerfTracker {
	return &PerfTracker{
		metrics:  make(map[string]*PerfMetric),
		started:  time.Now(),
		counters: make(map[string]*int64),
	}
}

// Timer represents an active timing operation
type Timer struct {
	name    string
	start   time.Time
	tracker *PerfTracker
}

// StartTimer starts a new timer for the given operation name.
// It returns nil when profiling is off; a nil Timer is safe to stop.
func StartTimer(name string) *Timer {
	if !PerfEnabled {
		return nil
	}
	return &Timer{name: name, start: time.Now(), tracker: GetPerfTracker()}
}

// Stop stops the timer and records the duration
func (t *Timer) Stop() time.Duration {
	if t == nil {
		return 0
	}
	d := time.Since(t.start)
	t.tracker.Record(t.name, d)
	Debugf("[PERF] %s took %v", t.name, d)
	return d
}

// Record records a metric with the given name and duration
func (pt *PerfTracker) Record(name string, d time.Duration) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	m, ok := pt.metrics[name]
	if !ok {
		m = &PerfMetric{Name: name}
		pt.metrics[name] = m
	}
	m.Count++
	m.TotalTime += d
	m.Last = d
}

// IncrementCounter increments a named counter atomically
func (pt *PerfTracker) IncrementCounter(name string) {
	pt.mu.Lock()
	c, ok := pt.counters[name]
	if !ok {
		c = new(int64)
		pt.counters[name] = c
	}
	pt.mu.Unlock()
	atomic.AddInt64(c, 1)
}

// GetCounter returns the current value of a counter
func (pt *PerfTracker) GetCounter(name string) int64 {
	pt.mu.RLock()
	defer pt.mu.RUnlock()
	c, ok := pt.counters[name]
	if !ok {
		return 0
	}
	return atomic.LoadInt64(c)
}

// Metrics returns copies of all metrics, slowest total first.
func (pt *PerfTracker) Metrics() []PerfMetric {
	pt.mu.RLock()
	defer pt.mu.RUnlock()

	out := make([]PerfMetric, 0, len(pt.metrics))
	for _, m := range pt.metrics {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalTime == out[j].TotalTime {
			return out[i].Name < out[j].Name
		}
		return out[i].TotalTime > out[j].TotalTime
	})
	return out
}

var (
	perfTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	perfMetricStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1D3"))

	perfValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	perfSeparatorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#636E72"))
)

// WriteReport writes the timing and counter report to w.
func (pt *PerfTracker) WriteReport(w io.Writer) {
	var b strings.Builder
	b.WriteString(perfSeparatorStyle.Render(strings.Repeat("═", 72)) + "\n")
	b.WriteString(perfTitleStyle.Render("PERFORMANCE REPORT") + "\n")
	fmt.Fprintf(&b, "   Uptime: %s\n\n", perfValueStyle.Render(time.Since(pt.started).Round(time.Millisecond).String()))

	for _, m := range pt.Metrics() {
		fmt.Fprintf(&b, "   %-32s %10s %6d %10s\n",
			perfMetricStyle.Render(m.Name),
			m.TotalTime.Round(time.Millisecond),
			m.Count,
			m.Avg().Round(time.Millisecond))
	}

	pt.mu.RLock()
	names := make([]string, 0, len(pt.counters))
	for name := range pt.counters {
		names = append(names, name)
	}
	pt.mu.RUnlock()
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "   %-32s %s\n", perfMetricStyle.Render(name), perfValueStyle.Render(fmt.Sprint(pt.GetCounter(name))))
	}
	b.WriteString(perfSeparatorStyle.Render(strings.Repeat("═", 72)) + "\n")
	_, _ = io.WriteString(w, b.String())
}

// PerfCount increments a performance counter
func PerfCount(name string) {
	if !PerfEnabled {
		return
	}
	GetPerfTracker().IncrementCounter(name)
}
