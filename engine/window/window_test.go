package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilderOptions(t *testing.T) {
	w := &engineWindow{title: "helix", width: 1280, height: 720}
	for _, opt := range []WindowBuilderOption{
		WithTitle("viewer"),
		WithWidth(800),
		WithHeight(0),
		WithSizeLimits(320, 240, 0, 0),
	} {
		opt(w)
	}

	assert.Equal(t, "viewer", w.title)
	assert.Equal(t, 800, w.width)
	assert.Equal(t, 720, w.height, "non-positive sizes are ignored")
	assert.Equal(t, 320, w.minWidth)
	assert.Zero(t, w.maxWidth)
}

func TestResizedForwardsChanges(t *testing.T) {
	w := &engineWindow{width: 1280, height: 720}
	var got [][2]int
	w.SetResizeCallback(func(width, height int) { got = append(got, [2]int{width, height}) })

	w.resized(1280, 720)
	w.resized(0, 0)
	w.resized(640, 480)

	assert.Equal(t, [][2]int{{640, 480}}, got, "unchanged and minimized sizes are not forwarded")
	assert.Equal(t, 640, w.Width())
	assert.Equal(t, 480, w.Height())
}

func TestCursorMovedReportsDragDeltas(t *testing.T) {
	w := &engineWindow{}
	var deltas [][2]float32
	w.SetDragCallback(func(dx, dy float32) { deltas = append(deltas, [2]float32{dx, dy}) })

	w.cursorMoved(10, 10)
	w.dragging = true
	w.cursorMoved(15, 8)
	w.cursorMoved(15, 12)

	assert.Equal(t, [][2]float32{{5, -2}, {0, 4}}, deltas)
}

func TestClosedWindowStopsPolling(t *testing.T) {
	w := &engineWindow{}
	assert.False(t, w.PollEvents())
	assert.False(t, w.IsRunning())
	assert.Nil(t, w.SurfaceDescriptor())
	assert.Error(t, w.Close())
}
