package slideshow

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolution is one configured output size.
type Resolution struct {
	Width  int
	Height int
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// ParseResolution parses a single "WxH" value like "1920x1080".
func ParseResolution(s string) (Resolution, error) {
	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return Resolution{}, fmt.Errorf("invalid resolution %q, expected \"WxH\"", s)
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return Resolution{}, fmt.Errorf("invalid resolution %q: %w", s, err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return Resolution{}, fmt.Errorf("invalid resolution %q: %w", s, err)
	}
	return Resolution{Width: width, Height: height}, nil
}

// ParseResolutions parses a comma-separated list like "1920x1080, 2048x1536",
// preserving order and trimming whitespace. Invalid segments are skipped; a
// string with no valid segment yields an empty list.
func ParseResolutions(s string) []Resolution {
	var resolutions []Resolution
	for _, segment := range strings.Split(s, ",") {
		res, err := ParseResolution(strings.TrimSpace(segment))
		if err != nil {
			continue
		}
		resolutions = append(resolutions, res)
	}
	return resolutions
}

// ResolutionList is a list of resolutions decodable from a single TOML
// string.
type ResolutionList []Resolution

// UnmarshalText implements toml.TextUnmarshaler.
func (rl *ResolutionList) UnmarshalText(text []byte) error {
	parsed := ParseResolutions(string(text))
	if len(parsed) == 0 {
		return fmt.Errorf("no valid resolutions in %q, expected \"WxH, WxH\"", string(text))
	}
	*rl = parsed
	return nil
}

// Contains reports whether the list holds the given resolution.
func (rl ResolutionList) Contains(res Resolution) bool {
	for _, r := range rl {
		if r == res {
			return true
		}
	}
	return false
}
