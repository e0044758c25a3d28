package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/freight-orders/internal/async"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

type recordingQueue struct {
	mu   sync.Mutex
	jobs []async.Job
}

func (q *recordingQueue) Enqueue(_ context.Context, job async.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) Shutdown(context.Context) {}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.PDF"))
	touch(t, filepath.Join(root, "a.txt"))
	touch(t, filepath.Join(root, "notes.docx"))
	touch(t, filepath.Join(root, "sub", "c.pdf"))
	touch(t, filepath.Join(root, ".hidden", "d.pdf"))
	touch(t, filepath.Join(root, ".e.pdf"))

	paths, stats, err := ScanDirectory(root, true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "b.PDF"),
		filepath.Join(root, "sub", "c.pdf"),
	}, paths)
	assert.Equal(t, uint32(3), stats.Matched)

	paths, _, err = ScanDirectory(root, false)
	require.NoError(t, err)
	assert.Len(t, paths, 5)
}

func TestScanDirectoryErrors(t *testing.T) {
	_, _, err := ScanDirectory(" ", false)
	assert.Error(t, err)

	_, _, err = ScanDirectory(filepath.Join(t.TempDir(), "missing"), false)
	assert.Error(t, err)
}

func TestEnqueueDirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "1.pdf"))
	touch(t, filepath.Join(root, "2.pdf"))

	q := &recordingQueue{}
	stats, err := EnqueueDirectory(context.Background(), q, root, true)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), stats.Enqueued)
	require.Len(t, q.jobs, 2)
	assert.Equal(t, filepath.Join(root, "1.pdf"), q.jobs[0].Path)
}

func TestWatcherEmitsNewDocuments(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "existing.pdf"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{root},
		InitialScan: true,
		Debounce:    20 * time.Millisecond,
	})
	require.NoError(t, err)

	seen := map[string]bool{}
	next := func() {
		select {
		case p := <-events:
			seen[filepath.Base(p)] = true
		case <-time.After(2 * time.Second):
			t.Fatal("no watcher event")
		}
	}

	next()
	assert.True(t, seen["existing.pdf"])

	touch(t, filepath.Join(root, "ignored.docx"))
	touch(t, filepath.Join(root, "new.pdf"))
	next()
	assert.True(t, seen["new.pdf"])
	assert.False(t, seen["ignored.docx"])

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherRequiresRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	assert.Error(t, err)
}
