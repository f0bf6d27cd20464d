package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/Carmen-Shannon/helix-go/engine/renderer"
)

// Profiler tracks frame rate, memory and render statistics and reports them through the
// package logger at a fixed interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	// render totals since the last report
	draws   int
	skipped int
	last    renderer.Stats

	now func() time.Time
}

// Report is one logged sample.
type Report struct {
	FPS          float64
	HeapMB       float64
	AllocRateMB  float64
	GCCount      uint32
	LastPauseUs  uint64
	MaxPauseUs   uint64
	SysMB        float64
	DrawsPerSec  float64
	SkippedDraws int
	Programs     int
}

// NewProfiler creates a new Profiler reporting once per second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
		now:            time.Now,
	}
}

// SetInterval changes how often Tick reports.
func (p *Profiler) SetInterval(d time.Duration) {
	if d > 0 {
		p.updateInterval = d
	}
}

// Tick should be called once per frame with the renderer's statistics for that frame.
// Logs performance statistics when the update interval has elapsed.
//
// Parameters:
//   - stats: counters of the frame just rendered
//
// Returns:
//   - Report: the logged sample
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(stats renderer.Stats) (Report, bool) {
	p.frameCount++
	p.draws += stats.Draws
	p.skipped += stats.SkippedDraws
	p.last = stats

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Report{}, false
	}

	runtime.ReadMemStats(&p.memStats)
	seconds := elapsed.Seconds()
	r := Report{
		FPS:          float64(p.frameCount) / seconds,
		HeapMB:       float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB:  float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / seconds,
		GCCount:      p.memStats.NumGC,
		SysMB:        float64(p.memStats.Sys) / 1024 / 1024,
		DrawsPerSec:  float64(p.draws) / seconds,
		SkippedDraws: p.skipped,
		Programs:     p.last.Programs,
	}

	// PauseNs is a circular buffer of the last 256 GC pauses
	if gcCount := p.memStats.NumGC; gcCount > 0 {
		r.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			r.MaxPauseUs = max(r.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	common.Logger().Info("profiler",
		"fps", r.FPS,
		"heap_mb", r.HeapMB,
		"alloc_rate_mb", r.AllocRateMB,
		"gc", r.GCCount,
		"gc_last_pause_us", r.LastPauseUs,
		"gc_max_pause_us", r.MaxPauseUs,
		"sys_mb", r.SysMB,
		"draws_per_sec", r.DrawsPerSec,
		"skipped_draws", r.SkippedDraws,
		"programs", r.Programs,
		"frame", p.last.Frame)

	p.frameCount = 0
	p.draws = 0
	p.skipped = 0
	p.lastTime = currentTime
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return r, true
}
