package shader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLibraryLoadsBuiltins(t *testing.T) {
	lib := NewLibrary()

	for _, name := range []string{"hx_common", "hx_types", "hx_lighting", "hx_shadow", "hx_pass_vertex", "hx_post_fog"} {
		_, ok := lib.Get(name)
		assert.True(t, ok, name)
	}
	assert.Zero(t, lib.Version())
	assert.IsIncreasing(t, lib.Names())
}

func TestLibraryRegisterBumpsVersion(t *testing.T) {
	lib := NewLibrary(WithSnippet("custom", "fn c() {}"))

	src, ok := lib.Get("custom")
	require.True(t, ok)
	assert.Equal(t, "fn c() {}", src)

	lib.Register("custom", "fn d() {}")
	src, _ = lib.Get("custom")
	assert.Equal(t, "fn d() {}", src)
	assert.Equal(t, uint64(1), lib.Version())
}

func TestLibraryLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hx_common.wgsl"), []byte("// override"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.wgsl"), []byte("fn extra() {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	lib := NewLibrary()
	require.NoError(t, lib.LoadDir(dir))

	src, _ := lib.Get("hx_common")
	assert.Equal(t, "// override", src)
	_, ok := lib.Get("extra")
	assert.True(t, ok)
	_, ok = lib.Get("notes")
	assert.False(t, ok)
	assert.Equal(t, uint64(2), lib.Version())
}

func TestLibraryWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live.wgsl")
	require.NoError(t, os.WriteFile(path, []byte("fn v1() {}"), 0o644))

	lib := NewLibrary()
	w, err := NewLibraryWatcher(lib, dir)
	require.NoError(t, err)
	defer w.Close()

	src, _ := lib.Get("live")
	require.Equal(t, "fn v1() {}", src)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(path, []byte("fn v2() {}"), 0o644))
	assert.Eventually(t, func() bool {
		src, _ := lib.Get("live")
		return src == "fn v2() {}"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLibraryWatcherMissingDir(t *testing.T) {
	_, err := NewLibraryWatcher(NewLibrary(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
