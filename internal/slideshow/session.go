package slideshow

import (
	"context"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"immich-slideshow/internal/immich"
	"immich-slideshow/internal/slideshow/render"
)

// Downloader fetches the raw bytes for an asset. Retries with backoff happen
// inside the implementation; the session never retries a download itself.
type Downloader interface {
	DownloadAsset(ctx context.Context, id immich.AssetID) ([]byte, error)
}

// Session holds the currently loaded decoded source images and serves renders
// of them at arbitrary resolutions. One session serves one configured
// account; Refresh is serialized by a lock while Render reads the last
// committed snapshot without locking.
type Session struct {
	pool         *Pool
	downloader   Downloader
	photoURL     func(immich.AssetID) string
	dualPortrait bool

	// mu serializes Refresh; see the package docs for the concurrency
	// contract.
	mu        sync.Mutex
	loaded    atomic.Pointer[loadedImages]
	available atomic.Bool
}

// loadedImages is an immutable snapshot of the decoded source images and
// their originating records. It is swapped wholesale; render calls only ever
// observe a fully formed snapshot.
type loadedImages struct {
	img1, img2 image.Image
	rec1, rec2 *immich.AssetRecord
	dual       bool
}

// NewSession initializes a session over the given pool. photoURL builds the
// deep link for an asset (see [immich.Client.PhotoURL]); it may be nil when
// links are not needed.
func NewSession(pool *Pool, downloader Downloader, photoURL func(immich.AssetID) string, dualPortrait bool) *Session {
	if photoURL == nil {
		photoURL = func(immich.AssetID) string { return "" }
	}
	return &Session{
		pool:         pool,
		downloader:   downloader,
		photoURL:     photoURL,
		dualPortrait: dualPortrait,
	}
}

// Refresh advances the slideshow: it refills the pool when low, pops the next
// record (opportunistically pairing a second portrait when dual-portrait mode
// is on), downloads and decodes the bytes, and commits the new snapshot.
// Only one refresh runs at a time; false means nothing new was loaded.
func (s *Session) Refresh(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh(ctx)
}

func (s *Session) refresh(ctx context.Context) bool {
	// Drop the previous snapshot before loading new images so repeated
	// refreshes never hold two generations of decoded bitmaps.
	s.loaded.Store(nil)

	if s.pool.IsLow() {
		s.pool.Refill(ctx)
	}
	if s.pool.Len() == 0 {
		slog.Warn("pool is empty, no images available")
		s.available.Store(false)
		return false
	}

	popped := s.pool.Pop(1, nil)
	if len(popped) == 0 {
		return false
	}
	chosen := popped[0]

	// A portrait pick may bring a partner along. Pairing is opportunistic:
	// no second portrait in the pool just means a single-image frame.
	if s.dualPortrait && chosen.IsPortrait() {
		if second := s.pool.Pop(1, immich.AssetRecord.IsPortrait); len(second) == 1 {
			if snap := s.loadDual(ctx, chosen, second[0]); snap != nil {
				s.loaded.Store(snap)
				s.available.Store(true)
				return true
			}
			// Fall back to showing just the first image.
		}
	}

	data, err := s.downloader.DownloadAsset(ctx, chosen.ID)
	if err != nil || len(data) == 0 {
		slog.Warn("failed to download asset", "id", chosen.ID, "error", err)
		return false
	}
	img, err := render.Decode(data)
	if err != nil {
		// Fail fast: favor freshness over continuity. The session stays
		// empty rather than keeping a stale frame around.
		slog.Error("failed to decode image", "id", chosen.ID, "error", err)
		s.available.Store(false)
		return false
	}

	s.loaded.Store(&loadedImages{img1: img, rec1: &chosen})
	s.available.Store(true)
	return true
}

// loadDual downloads and decodes both records of a portrait pair. Any failure
// returns nil so the caller can fall back to single-image mode.
func (s *Session) loadDual(ctx context.Context, first, second immich.AssetRecord) *loadedImages {
	data1, err := s.downloader.DownloadAsset(ctx, first.ID)
	if err != nil || len(data1) == 0 {
		slog.Warn("failed to download first portrait", "id", first.ID, "error", err)
		return nil
	}
	data2, err := s.downloader.DownloadAsset(ctx, second.ID)
	if err != nil || len(data2) == 0 {
		slog.Warn("failed to download second portrait", "id", second.ID, "error", err)
		return nil
	}
	img1, err := render.Decode(data1)
	if err != nil {
		slog.Warn("failed to decode first portrait", "id", first.ID, "error", err)
		return nil
	}
	img2, err := render.Decode(data2)
	if err != nil {
		slog.Warn("failed to decode second portrait", "id", second.ID, "error", err)
		return nil
	}
	return &loadedImages{img1: img1, img2: img2, rec1: &first, rec2: &second, dual: true}
}

// Render produces a JPEG of the loaded images at the target size. It does not
// take the refresh lock: it reads whatever snapshot was last committed, so it
// is safe to call concurrently for any number of resolutions and alongside an
// in-flight refresh. Nil means nothing is loaded.
func (s *Session) Render(targetW, targetH int) []byte {
	snap := s.loaded.Load()
	if snap == nil {
		return nil
	}
	var (
		data []byte
		err  error
	)
	if snap.dual && snap.img2 != nil {
		data, err = render.SideBySide(snap.img1, snap.img2, targetW, targetH)
	} else {
		data, err = render.Single(snap.img1, targetW, targetH)
	}
	if err != nil {
		slog.Error("failed to render image", "error", err)
		return nil
	}
	return data
}

// IsAvailable reports whether the session has images to serve.
func (s *Session) IsAvailable() bool { return s.available.Load() }

// IsDual reports whether the loaded snapshot is a side-by-side portrait pair.
func (s *Session) IsDual() bool {
	snap := s.loaded.Load()
	return snap != nil && snap.dual
}

// Primary returns the record behind the loaded image (the left one in dual
// mode), or nil when nothing is loaded.
func (s *Session) Primary() *immich.AssetRecord {
	if snap := s.loaded.Load(); snap != nil {
		return snap.rec1
	}
	return nil
}

// Secondary returns the record behind the right image of a dual pair, or nil.
func (s *Session) Secondary() *immich.AssetRecord {
	if snap := s.loaded.Load(); snap != nil {
		return snap.rec2
	}
	return nil
}

// AssetAttributes is the read-only metadata projection for one loaded asset.
// It is recomputed from the record on every access so it always reflects the
// currently loaded images.
type AssetAttributes struct {
	AssetID          string   `json:"asset_id"`
	ImmichURL        string   `json:"immich_url,omitempty"`
	OriginalFileName string   `json:"original_filename,omitempty"`
	Description      string   `json:"description,omitempty"`
	DateTaken        string   `json:"date_taken,omitempty"`
	City             string   `json:"city,omitempty"`
	Country          string   `json:"country,omitempty"`
	People           []string `json:"people,omitempty"`
	IsFavorite       bool     `json:"is_favorite"`
	Source           string   `json:"source"`
	MemoryYear       int      `json:"memory_year,omitempty"`
	YearsAgo         int      `json:"years_ago,omitempty"`
}

// Attributes projects the metadata for one record. The date taken prefers the
// EXIF capture time and falls back to the asset's local time.
func (s *Session) Attributes(rec *immich.AssetRecord) AssetAttributes {
	if rec == nil {
		return AssetAttributes{}
	}
	attrs := AssetAttributes{
		AssetID:          string(rec.ID),
		ImmichURL:        s.photoURL(rec.ID),
		OriginalFileName: rec.OriginalFileName,
		Description:      rec.ExifInfo.Description,
		DateTaken:        rec.ExifInfo.DateTimeOriginal,
		City:             rec.ExifInfo.City,
		Country:          rec.ExifInfo.Country,
		People:           rec.People,
		IsFavorite:       rec.IsFavorite,
		Source:           "recent",
	}
	if attrs.DateTaken == "" {
		attrs.DateTaken = rec.LocalDateTime
	}
	if rec.MemoryYear != 0 {
		attrs.Source = "memory"
		attrs.MemoryYear = rec.MemoryYear
		attrs.YearsAgo = time.Now().Year() - rec.MemoryYear
	}
	return attrs
}
