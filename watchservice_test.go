package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image/color"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Split(strings.TrimSpace(b.buf.String()), "\n")
}

func TestWatchServiceProcessesExistingAndArchives(t *testing.T) {
	t.Parallel()

	themes, _ := newTestThemeService(t, 0)
	watchDir := t.TempDir()
	archiveDir := t.TempDir()
	writeTestPNG(t, watchDir, "landing.png", color.NRGBA{R: 30, G: 140, B: 60, A: 255})

	out := &syncBuffer{}
	service := NewWatchService(themes, out, archiveDir)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- service.Run(ctx, watchDir, true)
	}()

	require.Eventually(t, func() bool {
		return service.GetStatus().Processed == 1
	}, 5*time.Second, 20*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch service did not stop")
	}

	lines := out.Lines()
	require.Len(t, lines, 1)

	var report ThemeReport
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &report))
	assert.Empty(t, report.Error)
	assert.Equal(t, archiveDir, filepath.Dir(report.Source))
	assert.Contains(t, filepath.Base(report.Source), report.ContentHash)
	assert.NotNil(t, report.Result.PrimaryColor)
}
