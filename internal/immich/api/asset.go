package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
)

// AssetID is the immich ID for an asset, usually in the shape of UUIDv4.
type AssetID string

// AssetInfo contains the full asset detail retrieved from the immich API.
//
// See: https://api.immich.app/endpoints/assets/getAssetInfo
type AssetInfo struct {
	ID               AssetID  `json:"id"`
	Type             string   `json:"type"`
	OriginalFileName string   `json:"originalFileName"`
	IsFavorite       bool     `json:"isFavorite"`
	LocalDateTime    string   `json:"localDateTime"`
	ExifInfo         ExifInfo `json:"exifInfo"`
	People           []Person `json:"people"`
}

// Person is one recognized face attached to an asset.
type Person struct {
	Name string `json:"name"`
}

// ExifInfo contains relevant EXIF data associated with an asset.
//
// See: https://api.immich.app/models/ExifResponseDto
type ExifInfo struct {
	ExifImageWidth   int         `json:"exifImageWidth"`
	ExifImageHeight  int         `json:"exifImageHeight"`
	Orientation      Orientation `json:"orientation"`
	Description      string      `json:"description"`
	City             string      `json:"city"`
	Country          string      `json:"country"`
	DateTimeOriginal string      `json:"dateTimeOriginal"`
}

// Orientation is the EXIF orientation code (1-8). The immich API emits it as
// either a JSON number or a string, so it carries a custom unmarshaler.
// Unparseable values decode to 0 rather than failing the whole asset.
type Orientation int

// UnmarshalJSON implements json.Unmarshaler.
func (o *Orientation) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*o = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		*o = 0
		return nil
	}
	*o = Orientation(n)
	return nil
}

// Rotated reports whether the code indicates a 90 degree stored rotation, in
// which case the effective display axes are swapped.
func (o Orientation) Rotated() bool {
	return o >= 5 && o <= 8
}

// GetAssetInfo gets the full detail for an asset. A missing asset (404) is
// reported as nil without error and is not retried.
//
// See: https://api.immich.app/endpoints/assets/getAssetInfo
func (c Client) GetAssetInfo(ctx context.Context, id AssetID) (*AssetInfo, error) {
	return retry(ctx, c.Retry, "get asset info", func() (*AssetInfo, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, path.Join("/assets", string(id)), nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		if err := checkStatusCode(resp.StatusCode); err != nil {
			return nil, err
		}
		var info AssetInfo
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			return nil, err
		}
		return &info, nil
	})
}

// DownloadAsset downloads the original bytes for an asset. Responses that are
// not an image (e.g. an HTML error page from a proxy) are rejected.
//
// See: https://api.immich.app/endpoints/assets/downloadAsset
func (c Client) DownloadAsset(ctx context.Context, id AssetID) ([]byte, error) {
	return retry(ctx, c.Retry, "download asset", func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, path.Join("/assets", string(id), "original"), nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if err := checkStatusCode(resp.StatusCode); err != nil {
			return nil, err
		}
		if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "image") {
			return nil, fmt.Errorf("unexpected content type %q", ct)
		}
		return io.ReadAll(resp.Body)
	})
}
