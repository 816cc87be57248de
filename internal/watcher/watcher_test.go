package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReloadOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "template.mf")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	fw, err := New(path, 20*time.Millisecond)
	require.NoError(t, err)

	var mu sync.Mutex
	var got []string
	fw.OnReload(func(contents string) {
		mu.Lock()
		got = append(got, contents)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fw.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) >= 1 && got[len(got)-1] == "v2"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "template.mf")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	fw, err := New(path, 10*time.Millisecond)
	require.NoError(t, err)

	var mu sync.Mutex
	fired := 0
	fw.OnReload(func(string) {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fw.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, fired)
}

func TestDebounceCoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "template.mf")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0o644))

	fw, err := New(path, 80*time.Millisecond)
	require.NoError(t, err)

	var mu sync.Mutex
	fired := 0
	fw.OnReload(func(string) {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fw.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("burst"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fired >= 1
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(150 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, fired, "a write burst collapses into one reload")
}
