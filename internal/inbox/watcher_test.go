package inbox_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pdf-insight/internal/inbox"
	"pdf-insight/internal/ingest"
	"pdf-insight/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extractText(contents []byte) (string, error) {
	return "text:" + string(contents), nil
}

func startWatcher(t *testing.T, dir string) *store.Store {
	st := store.New()
	w, err := inbox.NewWatcher(dir, ingest.NewIngestor(extractText), st, 50*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return st
}

func TestWatcherIngestsNewPDFs(t *testing.T) {
	dir := t.TempDir()
	st := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.pdf"), []byte("%PDF-1.4"), 0644))

	require.Eventually(t, func() bool {
		return len(st.Snapshot().Documents) == 1
	}, 5*time.Second, 20*time.Millisecond)

	snap := st.Snapshot()
	assert.Equal(t, "report.pdf", snap.Documents[0].Name)
	assert.Equal(t, "text:%PDF-1.4", snap.Documents[0].Text)
	assert.Equal(t, snap.Documents[0].ID, snap.ActiveID)

	// rewriting the same file does not duplicate it
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.pdf"), []byte("%PDF-1.5"), 0644))
	time.Sleep(300 * time.Millisecond)
	assert.Len(t, st.Snapshot().Documents, 1)
}

func TestWatcherPicksUpExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "existing.PDF"), []byte("%PDF-1.4"), 0644))

	st := startWatcher(t, dir)

	require.Eventually(t, func() bool {
		return len(st.Snapshot().Documents) == 1
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, "existing.PDF", st.Snapshot().Documents[0].Name)
}
