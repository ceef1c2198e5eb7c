package profiler

import (
	"bytes"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev, flags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prev)
		log.SetFlags(flags)
	})
	return &buf
}

func TestTickReportsCounters(t *testing.T) {
	buf := captureLog(t)
	p := NewProfiler(WithInterval(0), WithStats(func() Stats {
		return Stats{Model: "house", Surfaces: 12, Paints: 3, Captures: 1}
	}))

	assert.True(t, p.Tick())
	out := buf.String()
	assert.Contains(t, out, "[Profiler] FPS:")
	assert.Contains(t, out, "Model: house | Surfaces: 12 | Paints: 3 | Captures: 1")
}

func TestTickWaitsForInterval(t *testing.T) {
	buf := captureLog(t)
	p := NewProfiler(WithInterval(time.Hour))

	for i := 0; i < 10; i++ {
		assert.False(t, p.Tick())
	}
	assert.Empty(t, buf.String())
}

func TestTickWithoutStatsSource(t *testing.T) {
	buf := captureLog(t)
	p := NewProfiler(WithInterval(0))

	assert.True(t, p.Tick())
	assert.NotContains(t, buf.String(), "Model:")
}
