package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/Carmen-Shannon/helix-go/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeClock(start time.Time) (func() time.Time, func(time.Duration)) {
	now := start
	return func() time.Time { return now }, func(d time.Duration) { now = now.Add(d) }
}

func TestTickReportsAtInterval(t *testing.T) {
	var buf bytes.Buffer
	common.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer common.SetLogger(nil)

	start := time.Unix(1000, 0)
	now, advance := fakeClock(start)
	p := NewProfiler()
	p.now, p.lastTime = now, start

	for i := 0; i < 9; i++ {
		advance(100 * time.Millisecond)
		_, logged := p.Tick(renderer.Stats{Frame: uint64(i + 1), Draws: 10})
		assert.False(t, logged)
	}
	assert.Empty(t, buf.String())

	advance(100 * time.Millisecond)
	r, logged := p.Tick(renderer.Stats{Frame: 10, Draws: 10, SkippedDraws: 2, Programs: 7})
	require.True(t, logged)
	assert.InDelta(t, 10, r.FPS, 1e-9)
	assert.InDelta(t, 100, r.DrawsPerSec, 1e-9)
	assert.Equal(t, 2, r.SkippedDraws)
	assert.Equal(t, 7, r.Programs)
	assert.Contains(t, buf.String(), "programs=7")

	advance(100 * time.Millisecond)
	_, logged = p.Tick(renderer.Stats{Frame: 11})
	assert.False(t, logged, "counters restart after a report")
}

func TestSetIntervalIgnoresNonPositive(t *testing.T) {
	p := NewProfiler()
	p.SetInterval(0)
	assert.Equal(t, time.Second, p.updateInterval)
	p.SetInterval(250 * time.Millisecond)
	assert.Equal(t, 250*time.Millisecond, p.updateInterval)
}
