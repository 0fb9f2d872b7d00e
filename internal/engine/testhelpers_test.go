package engine

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bamsammich/treecp/internal/event"
	"github.com/bamsammich/treecp/internal/fsys"
)

// createTestTree populates root with a standard test tree:
//
//	root.txt          (17 bytes)
//	big.bin           (320KB)
//	sub/mid.txt       (19 bytes)
//	sub/deep/leaf.txt (17 bytes)
//	link.txt          symlink to root.txt
func createTestTree(t *testing.T, root string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub", "deep"), 0o755))

	require.NoError(t, os.WriteFile(
		filepath.Join(root, "root.txt"),
		[]byte("root file content"),
		0o644,
	))

	bigData := bytes.Repeat([]byte("ABCDEFGHIJKLMNOP"), 20000) // 320KB
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "big.bin"),
		bigData,
		0o644,
	))

	require.NoError(t, os.WriteFile(
		filepath.Join(root, "sub", "mid.txt"),
		[]byte("middle file content"),
		0o644,
	))

	require.NoError(t, os.WriteFile(
		filepath.Join(root, "sub", "deep", "leaf.txt"),
		[]byte("leaf file content"),
		0o644,
	))

	require.NoError(t, os.Symlink("root.txt", filepath.Join(root, "link.txt")))
}

// testTreeFiles are the regular files createTestTree writes.
var testTreeFiles = []string{
	"root.txt",
	"big.bin",
	filepath.Join("sub", "mid.txt"),
	filepath.Join("sub", "deep", "leaf.txt"),
}

const testTreeSize = 17 + 320000 + 19 + 17

// verifyTreeCopy checks that dstRoot contains an exact copy of the test tree
// created by createTestTree under srcRoot.
func verifyTreeCopy(t *testing.T, srcRoot, dstRoot string) {
	t.Helper()

	// Regular files: byte-for-byte content match.
	for _, rel := range testTreeFiles {
		srcData, err := os.ReadFile(filepath.Join(srcRoot, rel))
		require.NoError(t, err, "read src %s", rel)

		dstData, err := os.ReadFile(filepath.Join(dstRoot, rel))
		require.NoError(t, err, "read dst %s", rel)

		require.Equal(t, srcData, dstData, "content mismatch: %s", rel)
	}

	// Directories exist.
	for _, dir := range []string{"sub", filepath.Join("sub", "deep")} {
		info, err := os.Stat(filepath.Join(dstRoot, dir))
		require.NoError(t, err, "stat dir %s", dir)
		require.True(t, info.IsDir(), "%s should be a directory", dir)
	}

	// Symlink target preserved.
	target, err := os.Readlink(filepath.Join(dstRoot, "link.txt"))
	require.NoError(t, err, "readlink link.txt")
	require.Equal(t, "root.txt", target)
}

// writeFiles creates n small files named prefix%03d under dir.
func writeFiles(t *testing.T, dir, prefix string, n int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for i := range n {
		name := filepath.Join(dir, prefix+string(rune('a'+i/26))+string(rune('a'+i%26)))
		require.NoError(t, os.WriteFile(name, []byte(name), 0o644))
	}
}

// collectEvents creates a buffered event channel that records all events.
// Returns the channel for engine.Config and a function to retrieve collected
// events. The getter closes the channel and waits for the drain goroutine,
// so it is safe to read the slice. It may be called at most once. If the
// getter is never called, t.Cleanup closes the channel on test exit.
func collectEvents(t *testing.T) (chan<- event.Event, func() []event.Event) {
	t.Helper()
	ch := make(chan event.Event, 4096)
	var collected []event.Event
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range ch {
			collected = append(collected, ev)
		}
	}()
	var once sync.Once
	drain := func() {
		once.Do(func() { close(ch) })
		<-done
	}
	t.Cleanup(drain)
	return ch, func() []event.Event {
		drain()
		return collected
	}
}

func countEvents(events []event.Event, typ event.Type) int {
	n := 0
	for _, e := range events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

// faultFS wraps an FS and fails Create for every path containing fail.
// Each Create also sleeps for delay, which keeps copies in flight long
// enough to observe concurrency.
type faultFS struct {
	fsys.FS
	fail    string
	delay   time.Duration
	creates atomic.Int64
}

//nolint:ireturn // implements fsys.FS
func (f *faultFS) Create(name string, perm os.FileMode) (io.WriteCloser, error) {
	f.creates.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail != "" && strings.Contains(name, f.fail) {
		return nil, &os.PathError{Op: "open", Path: name, Err: syscall.EACCES}
	}
	return f.FS.Create(name, perm)
}

// corruptFS upper-cases everything written through it.
type corruptFS struct {
	fsys.FS
}

type upperWriter struct {
	io.WriteCloser
}

func (w upperWriter) Write(p []byte) (int, error) {
	if _, err := w.WriteCloser.Write(bytes.ToUpper(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

//nolint:ireturn // implements fsys.FS
func (c corruptFS) Create(name string, perm os.FileMode) (io.WriteCloser, error) {
	w, err := c.FS.Create(name, perm)
	if err != nil {
		return nil, err
	}
	return upperWriter{w}, nil
}

// memWrite writes content to path on a memory filesystem.
func memWrite(t *testing.T, mem fsys.FS, path, content string) {
	t.Helper()
	require.NoError(t, mem.MkdirAll(filepath.Dir(path), 0o755))
	w, err := mem.Create(path, 0o644)
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

// memRead returns the content of path on a memory filesystem.
func memRead(t *testing.T, mem fsys.FS, path string) string {
	t.Helper()
	r, err := mem.Open(path)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}
