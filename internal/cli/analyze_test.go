package cli

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/texscale/texscale/pkg/errors"
)

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func TestRunAnalyzeValidSequence(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "wall_1001.png"), 64, 64)
	writeTestPNG(t, filepath.Join(dir, "wall_1002.png"), 64, 64)

	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.Logger = log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})

	pattern := filepath.Join(dir, "wall_<UDIM>.png")
	if err := c.runAnalyze(context.Background(), pattern, false, true); err != nil {
		t.Fatalf("runAnalyze: %v", err)
	}
	if !strings.Contains(buf.String(), "Scanned 2 tiles") {
		t.Errorf("missing scan progress log: %q", buf.String())
	}
}

func TestRunAnalyzeMissingDirectory(t *testing.T) {
	c := New(io.Discard, LogInfo)

	err := c.runAnalyze(context.Background(), filepath.Join(t.TempDir(), "gone", "wall_<UDIM>.png"), false, true)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("expected FILE_NOT_FOUND, got %v", err)
	}
}
