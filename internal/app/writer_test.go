package app

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"immich-slideshow/internal/slideshow"
)

func TestWriteBackgroundFile(t *testing.T) {
	dir := t.TempDir()
	res := slideshow.Resolution{Width: 640, Height: 480}
	if err := writeBackgroundFile(dir, res, []byte("jpeg bytes")); err != nil {
		t.Fatalf("failed to write background: %v", err)
	}
	matches, err := filepath.Glob(filepath.Join(dir, "immich_640x480_*.jpg"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected exactly one background file, got %v (%v)", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil || string(data) != "jpeg bytes" {
		t.Fatalf("unexpected file contents %q (%v)", data, err)
	}
}

func TestPruneBackgrounds(t *testing.T) {
	dir := t.TempDir()
	res := slideshow.Resolution{Width: 640, Height: 480}
	other := slideshow.Resolution{Width: 320, Height: 240}

	// Fixed-width timestamps so lexical order is chronological.
	base := int64(1700000000000)
	for i := range keepBackgrounds + 10 {
		name := fmt.Sprintf("immich_%s_%d.jpg", res, base+int64(i))
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatalf("failed to seed file: %v", err)
		}
	}
	otherName := fmt.Sprintf("immich_%s_%d.jpg", other, base)
	if err := os.WriteFile(filepath.Join(dir, otherName), nil, 0644); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}

	pruneBackgrounds(dir, res)

	matches, _ := filepath.Glob(filepath.Join(dir, fmt.Sprintf("immich_%s_*.jpg", res)))
	if len(matches) != keepBackgrounds {
		t.Fatalf("expected %d files after pruning, got %d", keepBackgrounds, len(matches))
	}
	// The oldest files are the ones removed.
	oldest := filepath.Join(dir, fmt.Sprintf("immich_%s_%d.jpg", res, base))
	if _, err := os.Stat(oldest); !os.IsNotExist(err) {
		t.Fatalf("oldest file should be gone, stat err: %v", err)
	}
	newest := filepath.Join(dir, fmt.Sprintf("immich_%s_%d.jpg", res, base+int64(keepBackgrounds+9)))
	if _, err := os.Stat(newest); err != nil {
		t.Fatalf("newest file should remain: %v", err)
	}
	// Other resolutions are untouched.
	if _, err := os.Stat(filepath.Join(dir, otherName)); err != nil {
		t.Fatalf("other resolution should be untouched: %v", err)
	}
}
