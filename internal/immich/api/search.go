package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
)

// SearchRandomRequest is the POST body for the random search endpoint.
//
// See: https://api.immich.app/endpoints/search/searchRandom
type SearchRandomRequest struct {
	TakenAfter string `json:"takenAfter"`
	Type       string `json:"type"`
	Count      int    `json:"count"`
	IsFavorite *bool  `json:"isFavorite,omitempty"`
}

// SearchAsset is the trimmed asset shape returned by the random search and
// memories endpoints. Dimensions and EXIF data require a follow-up
// [Client.GetAssetInfo] call.
type SearchAsset struct {
	ID               AssetID `json:"id"`
	Type             string  `json:"type"`
	OriginalFileName string  `json:"originalFileName"`
	IsFavorite       bool    `json:"isFavorite"`
	LocalDateTime    string  `json:"localDateTime"`
}

// SearchRandom retrieves a random sample of assets matching the request.
//
// See: https://api.immich.app/endpoints/search/searchRandom
func (c Client) SearchRandom(ctx context.Context, searchReq SearchRandomRequest) ([]SearchAsset, error) {
	body, err := json.Marshal(searchReq)
	if err != nil {
		return nil, err
	}
	return retry(ctx, c.Retry, "search random", func() ([]SearchAsset, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/search/random", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if err := checkStatusCode(resp.StatusCode); err != nil {
			return nil, err
		}
		var assets []SearchAsset
		if err := json.NewDecoder(resp.Body).Decode(&assets); err != nil {
			return nil, err
		}
		return assets, nil
	})
}
