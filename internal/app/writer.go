package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"immich-slideshow/internal/slideshow"
)

// keepBackgrounds is how many written frames to keep per resolution before
// pruning the oldest.
const keepBackgrounds = 100

// writeBackgrounds mirrors the freshly refreshed frame to disk at every
// configured resolution, for consumers that read images from the filesystem
// rather than over HTTP.
func (a *slideshowApp) writeBackgrounds() {
	dir := a.conf.Slideshow.BackgroundPath
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Warn("could not create background directory", "dir", dir, "error", err)
		return
	}
	for _, res := range a.conf.Slideshow.Resolutions {
		data := a.session.Render(res.Width, res.Height)
		if data == nil {
			continue
		}
		if err := writeBackgroundFile(dir, res, data); err != nil {
			slog.Warn("failed to write background", "resolution", res, "error", err)
		}
	}
}

// writeBackgroundFile writes one frame with a unique timestamped name and
// prunes old frames of the same resolution afterwards, so a reader mid-cycle
// never loses the file it is on.
func writeBackgroundFile(dir string, res slideshow.Resolution, data []byte) error {
	name := fmt.Sprintf("immich_%s_%d.jpg", res, time.Now().UnixMilli())
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		return err
	}
	pruneBackgrounds(dir, res)
	return nil
}

// pruneBackgrounds removes all but the newest keepBackgrounds frames for the
// resolution. Removal failures are logged, not fatal.
func pruneBackgrounds(dir string, res slideshow.Resolution) {
	pattern := filepath.Join(dir, fmt.Sprintf("immich_%s_*.jpg", res))
	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) <= keepBackgrounds {
		return
	}
	// Timestamped names sort oldest first.
	sort.Strings(matches)
	for _, old := range matches[:len(matches)-keepBackgrounds] {
		if err := os.Remove(old); err != nil {
			slog.Warn("failed to delete old background", "file", old, "error", err)
		}
	}
}
