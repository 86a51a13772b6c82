package server

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerDebounces(t *testing.T) {
	requests := make(chan struct{}, 1)
	trigger := newTrigger(20*time.Millisecond, requests)

	for range 10 {
		trigger()
	}

	select {
	case <-requests:
	case <-time.After(time.Second):
		t.Fatal("no request after debounce")
	}

	select {
	case <-requests:
		t.Fatal("burst produced more than one request")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTriggerNeverBlocks(t *testing.T) {
	requests := make(chan struct{}, 1)
	requests <- struct{}{}
	trigger := newTrigger(time.Millisecond, requests)

	trigger()
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, requests, 1)
}

func TestWorkSerializesRebuilds(t *testing.T) {
	var running, maxRunning, calls atomic.Int32
	release := make(chan struct{})

	w := &Watcher{Rebuild: func(context.Context) error {
		n := running.Add(1)
		for {
			m := maxRunning.Load()
			if n <= m || maxRunning.CompareAndSwap(m, n) {
				break
			}
		}
		<-release
		running.Add(-1)
		calls.Add(1)
		return nil
	}}

	ctx, cancel := context.WithCancel(context.Background())
	requests := make(chan struct{}, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.work(ctx, requests)
	}()

	requests <- struct{}{}
	require.Eventually(t, func() bool { return running.Load() == 1 }, time.Second, 5*time.Millisecond)

	// One request queues while the first rebuild runs; further ones are dropped.
	requests <- struct{}{}
	select {
	case requests <- struct{}{}:
		t.Fatal("second pending request accepted")
	default:
	}

	release <- struct{}{}
	release <- struct{}{}
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	wg.Wait()
	assert.Equal(t, int32(1), maxRunning.Load())
}

func TestWatcherRebuildsOnChange(t *testing.T) {
	root := t.TempDir()
	content := filepath.Join(root, "content")
	require.NoError(t, os.MkdirAll(filepath.Join(content, "posts"), 0o755))

	var calls atomic.Int32
	w := &Watcher{
		Dirs:     []string{content, filepath.Join(root, "missing")},
		Debounce: 30 * time.Millisecond,
		Rebuild: func(context.Context) error {
			calls.Add(1)
			return nil
		},
	}

	fw, err := w.open()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.loop(ctx, fw) }()

	for _, name := range []string{"a.md", "b.md", "c.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(content, "posts", name), []byte("# x"), 0o644))
	}
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	t.Run("new directories are watched", func(t *testing.T) {
		sub := filepath.Join(content, "drafts")
		before := calls.Load()
		require.NoError(t, os.Mkdir(sub, 0o755))
		require.Eventually(t, func() bool { return calls.Load() > before }, 2*time.Second, 10*time.Millisecond)

		time.Sleep(100 * time.Millisecond)
		before = calls.Load()
		require.NoError(t, os.WriteFile(filepath.Join(sub, "d.md"), []byte("# d"), 0o644))
		require.Eventually(t, func() bool { return calls.Load() > before }, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("editor artifacts are ignored", func(t *testing.T) {
		time.Sleep(100 * time.Millisecond)
		before := calls.Load()
		require.NoError(t, os.WriteFile(filepath.Join(content, ".a.md.swp"), []byte("x"), 0o644))
		time.Sleep(150 * time.Millisecond)
		assert.Equal(t, before, calls.Load())
	})

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestIgnored(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"content/posts/hello.md", false},
		{"templates/base.html", false},
		{"content/.hidden", true},
		{"content/posts/hello.md~", true},
		{"content/posts/.hello.md.swp", true},
		{"content/posts/hello.swx", true},
		{"content/#hello.md#", true},
		{"static/4913", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ignored(tt.path), tt.path)
	}
}
