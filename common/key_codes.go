package common

// Key is a keyboard key code. Values match GLFW key codes, which use ASCII for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
type Key uint32

const (
	KeyW Key = 87
	KeyA Key = 65
	KeyS Key = 83
	KeyD Key = 68
	KeyF Key = 70
	KeyP Key = 80

	KeyRight Key = 262
	KeyLeft  Key = 263
	KeyDown  Key = 264
	KeyUp    Key = 265
)
