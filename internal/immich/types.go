package immich

import (
	"fmt"
	"strings"

	"immich-slideshow/internal/immich/api"
)

// Redeclare the immich API types.
type AssetID = api.AssetID
type ExifInfo = api.ExifInfo
type Orientation = api.Orientation

// AssetRecord is one photo's metadata, enriched from the asset detail
// endpoint. Width and Height are the stored pixel dimensions before any EXIF
// rotation. MemoryYear is non-zero only for assets that came from an
// "on this day" memory; zero means the asset came from the recent search.
type AssetRecord struct {
	ID               AssetID
	Width            int
	Height           int
	ExifInfo         ExifInfo
	OriginalFileName string
	IsFavorite       bool
	LocalDateTime    string
	People           []string
	MemoryYear       int
}

// IsPortrait reports whether the asset displays taller than wide once its
// EXIF orientation is applied. Orientation codes 5-8 store the image rotated
// 90 degrees, swapping the effective axes. Assets with unknown dimensions are
// never portrait.
func (r AssetRecord) IsPortrait() bool {
	if r.Width <= 0 || r.Height <= 0 {
		return false
	}
	if r.ExifInfo.Orientation.Rotated() {
		return r.Width > r.Height
	}
	return r.Height > r.Width
}

// FavoritesFilter restricts which assets the random search returns.
type FavoritesFilter string

const (
	FavoritesAll     FavoritesFilter = "all"
	FavoritesOnly    FavoritesFilter = "only"
	FavoritesExclude FavoritesFilter = "exclude"
)

// UnmarshalText implements toml.TextUnmarshaler. An empty value decodes to
// FavoritesAll.
func (f *FavoritesFilter) UnmarshalText(text []byte) error {
	switch v := FavoritesFilter(strings.ToLower(string(text))); v {
	case "":
		*f = FavoritesAll
	case FavoritesAll, FavoritesOnly, FavoritesExclude:
		*f = v
	default:
		return fmt.Errorf(
			"unsupported favorites filter %q, expected one of [all only exclude]",
			string(text),
		)
	}
	return nil
}

// isFavorite translates the filter into the optional isFavorite search
// parameter: omitted for all, true for only, false for exclude.
func (f FavoritesFilter) isFavorite() *bool {
	switch f {
	case FavoritesOnly:
		v := true
		return &v
	case FavoritesExclude:
		v := false
		return &v
	}
	return nil
}
