package shader

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// snippetExt is the file extension of library snippets on disk.
const snippetExt = ".wgsl"

//go:embed assets/*.wgsl
var builtinSnippets embed.FS

// library is the implementation of the Library interface.
type library struct {
	mu       *sync.RWMutex
	snippets map[string]string
	version  uint64
}

// Library is a named collection of WGSL snippets referenced by //@hx:include. A new library
// carries the built-in helix snippets; LoadDir and Register add or replace entries.
// Library is safe for concurrent use, so a LibraryWatcher may update it from its own goroutine.
type Library interface {
	// Get returns the snippet registered under name.
	//
	// Parameters:
	//   - name: snippet name, the file name without extension
	//
	// Returns:
	//   - string: the snippet source
	//   - bool: false if no snippet is registered under name
	Get(name string) (string, bool)

	// Register adds or replaces a snippet and advances the library version.
	//
	// Parameters:
	//   - name: snippet name
	//   - source: WGSL source, may contain annotations
	Register(name, source string)

	// Names returns the registered snippet names in sorted order.
	//
	// Returns:
	//   - []string: snippet names
	Names() []string

	// LoadDir registers every *.wgsl file in dir, replacing snippets of the same name.
	//
	// Parameters:
	//   - dir: directory to read, not recursive
	//
	// Returns:
	//   - error: if the directory or one of its files cannot be read
	LoadDir(dir string) error

	// Version increments on every change. Program caches compare it to detect stale programs.
	//
	// Returns:
	//   - uint64: the current version
	Version() uint64
}

var _ Library = &library{}

// NewLibrary creates a library preloaded with the built-in snippets.
//
// Parameters:
//   - options: functional options applied after the built-ins are loaded
//
// Returns:
//   - Library: the library
func NewLibrary(options ...LibraryBuilderOption) Library {
	l := &library{
		mu:       &sync.RWMutex{},
		snippets: make(map[string]string),
	}

	entries, err := builtinSnippets.ReadDir("assets")
	if err != nil {
		panic(fmt.Errorf("failed to read built-in shader snippets: %w", err))
	}
	for _, e := range entries {
		src, err := builtinSnippets.ReadFile("assets/" + e.Name())
		if err != nil {
			panic(fmt.Errorf("failed to read built-in shader snippet %s: %w", e.Name(), err))
		}
		l.snippets[snippetName(e.Name())] = string(src)
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *library) Get(name string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	src, ok := l.snippets[name]
	return src, ok
}

func (l *library) Register(name, source string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snippets[name] = source
	l.version++
}

func (l *library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.snippets))
	for name := range l.snippets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (l *library) LoadDir(dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+snippetExt))
	if err != nil {
		return fmt.Errorf("failed to list shader snippets in %s: %w", dir, err)
	}
	for _, path := range matches {
		if err := l.loadFile(path); err != nil {
			return err
		}
	}
	return nil
}

func (l *library) Version() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version
}

func (l *library) loadFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read shader snippet %s: %w", path, err)
	}
	l.Register(snippetName(path), string(src))
	return nil
}

// snippetName maps "dir/hx_common.wgsl" to "hx_common".
func snippetName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), snippetExt)
}
