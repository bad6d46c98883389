package immich

import (
	"github.com/dustin/go-humanize"

	"immich-slideshow/internal/immich/api"
)

// Config holds configuration values for the immich client.
//
// It is organized to take advantage of TOML parsing, however this package does
// not handle parsing and has no expectation on how it will be initialized.
type Config struct {
	// In memory cache for downloaded asset bytes.
	InMemoryCache InMemoryConfig

	// Remote configuration for connecting to the immich API.
	Remote api.Config
}

// In memory cache for downloaded asset bytes. Useful when the session has to
// re-download an asset it already fetched, e.g. the dual-portrait fallback.
type InMemoryConfig struct {
	UseInMemoryCache  bool
	InMemoryCacheSize HumanBytes
}

// HumanBytes is a custom type to decode human-readable byte values into an
// integer.
type HumanBytes uint64

// UnmarshalText implements toml.TextUnmarshaler.
func (h *HumanBytes) UnmarshalText(text []byte) error {
	nbytes, err := humanize.ParseBytes(string(text))
	*h = HumanBytes(nbytes)
	return err
}

// String converts the integer back into a human-readable representation.
func (h *HumanBytes) String() string {
	if h == nil {
		return ""
	}
	return humanize.Bytes(uint64(*h))
}
