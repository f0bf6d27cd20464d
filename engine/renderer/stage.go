package renderer

import "fmt"

// Stage is one step of the fixed per-frame sequence. Stages run in declaration order and a
// frame never returns to an earlier stage.
type Stage int

const (
	StageIdle Stage = iota
	StageCollectOpaque
	StageCollectShadows
	StageDeferredGBuffer
	StageDeferredLighting
	StageForward
	StagePostProcess
	StagePresent
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageCollectOpaque:
		return "collect_opaque"
	case StageCollectShadows:
		return "collect_shadows"
	case StageDeferredGBuffer:
		return "deferred_gbuffer"
	case StageDeferredLighting:
		return "deferred_lighting"
	case StageForward:
		return "forward"
	case StagePostProcess:
		return "post_process"
	case StagePresent:
		return "present"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}
