package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// ValidateToken checks the configured API key against the server. A rejected
// key returns (false, nil); a connectivity problem returns an error so the
// caller can tell the two apart.
//
// See: https://api.immich.app/endpoints/authentication/validateAccessToken
func (c Client) ValidateToken(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/auth/validateToken", nil)
	if err != nil {
		return false, err
	}
	resp, err := c.Do(req)
	if err != nil && err.Error() == `Post "/auth/validateToken": unsupported protocol scheme ""` {
		return false, errors.New("misconfigured client: missing immich endpoint")
	} else if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, nil
	}
	var body struct {
		AuthStatus bool `json:"authStatus"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, err
	}
	return body.AuthStatus, nil
}
