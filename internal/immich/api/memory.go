package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

// Memory is one "on this day in year Y" collection curated by the server.
//
// See: https://api.immich.app/endpoints/memories/searchMemories
type Memory struct {
	Data   MemoryData    `json:"data"`
	Assets []SearchAsset `json:"assets"`
}

// MemoryData carries the year the memory's photos were taken.
type MemoryData struct {
	Year int `json:"year"`
}

// GetMemories retrieves the "on this day" memories for the given date.
//
// See: https://api.immich.app/endpoints/memories/searchMemories
func (c Client) GetMemories(ctx context.Context, forDate time.Time) ([]Memory, error) {
	query := url.Values{
		"type": []string{"on_this_day"},
		"for":  []string{forDate.Format("2006-01-02")},
	}
	return retry(ctx, c.Retry, "get memories", func() ([]Memory, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, "/memories?"+query.Encode(), nil)
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
		var memories []Memory
		if err := json.NewDecoder(resp.Body).Decode(&memories); err != nil {
			return nil, err
		}
		return memories, nil
	})
}
