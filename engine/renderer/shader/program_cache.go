package shader

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/uniform"
)

// DefaultRetentionFrames is how many frames an unused program survives a sweep.
const DefaultRetentionFrames = 120

// CachedProgram is a compiled program together with the uniform setters bound to it. A
// program that failed to compile is cached too, carrying its error, so it is not recompiled
// every frame.
type CachedProgram struct {
	key       string
	program   backend.Program
	setters   []uniform.Setter
	uniforms  []string
	frameMark uint64
	err       error
}

// Program returns the compiled program, nil when the entry is invalid.
func (c *CachedProgram) Program() backend.Program {
	return c.program
}

// Key returns the cache key the entry is stored under.
func (c *CachedProgram) Key() string {
	return c.key
}

// FrameMark returns the last frame the entry was requested in.
func (c *CachedProgram) FrameMark() uint64 {
	return c.frameMark
}

// Valid reports whether the program compiled.
func (c *CachedProgram) Valid() bool {
	return c.err == nil && c.program != nil
}

// Err returns the compile error of an invalid entry.
func (c *CachedProgram) Err() error {
	return c.err
}

// Setters returns the setters of every well-known uniform the program declares.
func (c *CachedProgram) Setters() []uniform.Setter {
	return c.setters
}

// Uniforms returns the block uniform names the pre-processor generated for the program.
func (c *CachedProgram) Uniforms() []string {
	return c.uniforms
}

// programCache is the implementation of the ProgramCache interface.
type programCache struct {
	mu        *sync.Mutex
	backend   backend.Backend
	pp        PreProcessor
	entries   map[string]*CachedProgram
	frame     uint64
	retention uint64
	compiles  int
}

// ProgramCache memoizes compiled programs by their sources and define set. Entries are stamped
// with the frame they were last requested in; Sweep evicts entries idle for longer than the
// retention horizon. ProgramCache is safe for concurrent use, although GPU programs are only
// released from Sweep, Invalidate and Release, which must run on the render thread.
type ProgramCache interface {
	// Get returns the program for the given sources and defines, compiling it on a miss.
	// Define order never affects the key.
	//
	// Parameters:
	//   - vertexSource: unexpanded vertex source
	//   - fragmentSource: unexpanded fragment source
	//   - defines: define set
	//
	// Returns:
	//   - *CachedProgram: the entry, also returned for cached failures
	//   - error: wraps ErrShaderCompile when the entry is invalid
	Get(vertexSource, fragmentSource string, defines Defines) (*CachedProgram, error)

	// SetFrame sets the frame number stamped onto entries by Get.
	SetFrame(frame uint64)

	// Frame returns the current frame number.
	Frame() uint64

	// Sweep evicts entries whose frame mark precedes frame by more than the retention horizon
	// and releases their GPU programs.
	//
	// Parameters:
	//   - frame: the current frame
	//
	// Returns:
	//   - int: the number of evicted entries
	Sweep(frame uint64) int

	// Invalidate drops every entry, releasing GPU programs. Failed entries become eligible
	// for recompilation.
	Invalidate()

	// Len returns the number of cached entries, valid or not.
	Len() int

	// Compiles returns the number of backend compilations performed.
	Compiles() int

	// Retention returns the retention horizon in frames.
	Retention() uint64

	// Release invalidates the cache.
	Release()
}

var _ ProgramCache = &programCache{}

// NewProgramCache creates a program cache compiling through b.
//
// Parameters:
//   - b: the backend used to compile
//   - pp: the pre-processor expanding sources before compilation
//   - options: functional options
//
// Returns:
//   - ProgramCache: the cache
func NewProgramCache(b backend.Backend, pp PreProcessor, options ...ProgramCacheBuilderOption) ProgramCache {
	if b == nil || pp == nil {
		panic("shader: program cache requires a backend and a pre-processor")
	}
	c := &programCache{
		mu:        &sync.Mutex{},
		backend:   b,
		pp:        pp,
		entries:   make(map[string]*CachedProgram),
		retention: DefaultRetentionFrames,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *programCache) Get(vertexSource, fragmentSource string, defines Defines) (*CachedProgram, error) {
	key := programKey(vertexSource, fragmentSource, defines)

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		entry.frameMark = c.frame
		return entry, entry.err
	}

	entry := &CachedProgram{key: key, frameMark: c.frame}
	c.entries[key] = entry

	processed, err := c.pp.Process(vertexSource, fragmentSource, defines)
	if err != nil {
		entry.err = fmt.Errorf("%w: %w", ErrShaderCompile, err)
		common.Logger().Warn("shader pre-processing failed", "error", err)
		return entry, entry.err
	}
	entry.uniforms = processed.Uniforms

	c.compiles++
	program, err := c.backend.CompileProgram(processed.VertexSource, processed.FragmentSource)
	if err != nil {
		entry.err = fmt.Errorf("%w: %w", ErrShaderCompile, err)
		common.Logger().Warn("shader compilation failed", "error", err)
		return entry, entry.err
	}

	entry.program = program
	entry.setters = uniform.GetSetters(program)
	common.Logger().Debug("program compiled", "programs", len(c.entries), "setters", len(entry.setters))
	return entry, nil
}

func (c *programCache) SetFrame(frame uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame = frame
}

func (c *programCache) Frame() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

func (c *programCache) Sweep(frame uint64) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for key, entry := range c.entries {
		if frame <= entry.frameMark || frame-entry.frameMark <= c.retention {
			continue
		}
		if entry.program != nil {
			entry.program.Release()
		}
		delete(c.entries, key)
		evicted++
	}
	if evicted > 0 {
		common.Logger().Debug("program cache swept", "evicted", evicted, "remaining", len(c.entries))
	}
	return evicted
}

func (c *programCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if entry.program != nil {
			entry.program.Release()
		}
		delete(c.entries, key)
	}
}

func (c *programCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *programCache) Compiles() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.compiles
}

func (c *programCache) Retention() uint64 {
	return c.retention
}

func (c *programCache) Release() {
	c.Invalidate()
}

// programKey concatenates length-prefixed sources and sorted defines so that no two distinct
// inputs share a key.
func programKey(vertexSource, fragmentSource string, defines Defines) string {
	var sb strings.Builder
	sb.Grow(len(vertexSource) + len(fragmentSource) + 16*len(defines) + 16)
	writeField := func(s string) {
		sb.WriteString(strconv.Itoa(len(s)))
		sb.WriteByte(':')
		sb.WriteString(s)
	}
	writeField(vertexSource)
	writeField(fragmentSource)
	for _, name := range defines.sortedNames() {
		writeField(name)
		writeField(defines[name])
	}
	return sb.String()
}
