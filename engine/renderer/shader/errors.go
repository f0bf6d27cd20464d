package shader

import "errors"

// ErrShaderCompile reports a program whose sources failed to pre-process, compile or link.
// It is scoped to the program: draws using it are skipped and the rest of the frame proceeds.
var ErrShaderCompile = errors.New("shader compile error")
