package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/Carmen-Shannon/helix-go/engine/camera"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/shader"
)

// Severity grades a Diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns the severity name.
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is a problem the renderer worked around. The frame it was raised in completed.
type Diagnostic struct {
	Frame    uint64
	Stage    Stage
	Severity Severity
	Err      error
}

// String formats the diagnostic for logs.
func (d Diagnostic) String() string {
	return fmt.Sprintf("frame %d %s %s: %v", d.Frame, d.Stage, d.Severity, d.Err)
}

// FatalError is returned from Render when a frame is aborted. Persistent state is left
// consistent, so the host may retry the next frame after recovering the cause.
type FatalError struct {
	Frame uint64
	Stage Stage
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("frame %d aborted in stage %s: %v", e.Frame, e.Stage, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Stats summarizes the last rendered frame.
type Stats struct {
	Frame        uint64
	OpaqueItems  int
	ShadowItems  int
	Draws        int
	SkippedDraws int
	Programs     int
}

// RenderContext is the state shared by the stages of one renderer. It is created with the
// renderer, carries the current frame through every stage and is released with it.
type RenderContext struct {
	Backend  backend.Backend
	Programs shader.ProgramCache

	// Frame is the number of the frame being rendered, starting at 1.
	Frame uint64

	// Camera is the camera of the frame being rendered.
	Camera camera.Camera

	// Stage is the stage currently executing.
	Stage Stage

	diagnostics []Diagnostic

	// reported holds the keys of problems already logged, so a broken program logs once
	// rather than every frame.
	reported map[string]bool
}

func newRenderContext(b backend.Backend, programs shader.ProgramCache) *RenderContext {
	return &RenderContext{
		Backend:  b,
		Programs: programs,
		reported: map[string]bool{},
	}
}

// beginFrame advances the frame counter and drops the previous frame's diagnostics.
func (c *RenderContext) beginFrame(cam camera.Camera) {
	c.Frame++
	c.Camera = cam
	c.Stage = StageIdle
	c.diagnostics = c.diagnostics[:0]
	c.Programs.SetFrame(c.Frame)
}

// Report records a non-fatal problem in the current stage. key deduplicates logging across
// frames; the diagnostic itself is recorded every time.
//
// Parameters:
//   - key: identity of the problem, empty to always log
//   - severity: how bad it is
//   - err: the problem
func (c *RenderContext) Report(key string, severity Severity, err error) {
	d := Diagnostic{Frame: c.Frame, Stage: c.Stage, Severity: severity, Err: err}
	c.diagnostics = append(c.diagnostics, d)
	if key != "" {
		if c.reported[key] {
			return
		}
		c.reported[key] = true
	}
	common.Logger().Warn("render diagnostic", "frame", d.Frame, "stage", d.Stage.String(), "severity", severity.String(), "error", err)
}

// fatal wraps err as the frame's FatalError.
func (c *RenderContext) fatal(err error) error {
	common.Logger().Error("frame aborted", "frame", c.Frame, "stage", c.Stage.String(), "error", err)
	return &FatalError{Frame: c.Frame, Stage: c.Stage, Err: err}
}

// forgetReports lets every problem log again, after shader sources changed.
func (c *RenderContext) forgetReports() {
	clear(c.reported)
}

// Diagnostics returns a copy of the diagnostics raised in the current or last frame.
func (c *RenderContext) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), c.diagnostics...)
}

func (c *RenderContext) release() {
	c.Programs.Release()
	c.Camera = nil
	c.diagnostics = nil
}
