package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, root string) <-chan []string {
	t.Helper()

	w, err := New(50*time.Millisecond, []string{"node_modules"}, func(path string) bool {
		return strings.HasSuffix(path, ".js")
	})
	require.NoError(t, err)
	require.NoError(t, w.Add(root))

	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan []string, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, func(paths []string) { batches <- paths })
	}()

	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})
	return batches
}

func nextBatch(t *testing.T, batches <-chan []string) []string {
	t.Helper()
	select {
	case b := <-batches:
		return b
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a change batch")
		return nil
	}
}

func bases(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func TestWatcher_DebouncesAndFilters(t *testing.T) {
	root := t.TempDir()
	batches := startWatcher(t, root)

	target := filepath.Join(root, "app.js")
	require.NoError(t, os.WriteFile(target, []byte("process.env.A\n"), 0644))
	require.NoError(t, os.WriteFile(target, []byte("process.env.B\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644))

	assert.Equal(t, []string{"app.js"}, bases(nextBatch(t, batches)))
}

func TestWatcher_FollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	batches := startWatcher(t, root)

	sub := filepath.Join(root, "src")
	require.NoError(t, os.Mkdir(sub, 0755))

	// The new directory is added asynchronously; keep writing until a batch arrives
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		require.NoError(t, os.WriteFile(filepath.Join(sub, "late.js"), []byte("process.env.C\n"), 0644))
		select {
		case b := <-batches:
			assert.Contains(t, bases(b), "late.js")
			return
		case <-time.After(200 * time.Millisecond):
		}
	}
	t.Fatal("change in a new directory was never reported")
}

func TestWatcher_SkipsExcludedDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "node_modules"), 0755))
	batches := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "dep.js"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.js"), []byte("x"), 0644))

	assert.Equal(t, []string{"main.js"}, bases(nextBatch(t, batches)))
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	w, err := New(0, nil, nil)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Add(t.TempDir()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, w.Run(ctx, func([]string) { t.Error("no change expected") }))
}
