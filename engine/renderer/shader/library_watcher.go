package shader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/fsnotify/fsnotify"
)

// libraryWatcher is the implementation of the LibraryWatcher interface.
type libraryWatcher struct {
	lib     Library
	dir     string
	watcher *fsnotify.Watcher
}

// LibraryWatcher reloads snippet files into a Library when they change on disk. Each reload
// bumps the library version, which the renderer turns into a program cache invalidation on
// the render thread.
type LibraryWatcher interface {
	// Run processes file events until ctx is done or the watcher is closed.
	//
	// Parameters:
	//   - ctx: cancellation
	Run(ctx context.Context)

	// Close stops watching and releases the underlying watcher.
	//
	// Returns:
	//   - error: from the underlying watcher
	Close() error
}

var _ LibraryWatcher = &libraryWatcher{}

// NewLibraryWatcher loads dir into lib and starts watching it.
//
// Parameters:
//   - lib: the library to update
//   - dir: snippet directory
//
// Returns:
//   - LibraryWatcher: the watcher, call Run to start processing events
//   - error: if the directory cannot be loaded or watched
func NewLibraryWatcher(lib Library, dir string) (LibraryWatcher, error) {
	if err := lib.LoadDir(dir); err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create shader watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch shader directory %s: %w", dir, err)
	}
	return &libraryWatcher{lib: lib, dir: dir, watcher: w}, nil
}

func (w *libraryWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			common.Logger().Warn("shader watcher error", "dir", w.dir, "error", err)
		}
	}
}

func (w *libraryWatcher) Close() error {
	return w.watcher.Close()
}

func (w *libraryWatcher) handle(ev fsnotify.Event) {
	if filepath.Ext(ev.Name) != snippetExt || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
		return
	}
	src, err := os.ReadFile(ev.Name)
	if err != nil {
		common.Logger().Warn("shader snippet reload failed", "file", ev.Name, "error", err)
		return
	}
	w.lib.Register(snippetName(ev.Name), string(src))
	common.Logger().Info("shader snippet reloaded", "name", snippetName(ev.Name))
}
