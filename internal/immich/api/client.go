package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"
)

// Client provides a raw HTTP client for accessing the immich API. All requests
// get rewritten to the API endpoint with authorization, so only the path is
// required for requests.
//
// Example:
//
// ```
// client := NewClient(conf)
// info, err := client.GetAssetInfo(ctx, "some-id")
// ```
type Client struct {
	*http.Client

	// Retry controls how failed requests are re-attempted. Initialized to
	// [DefaultRetryPolicy] by NewClient when the config leaves it zero.
	Retry RetryPolicy
}

// Config holds configuration values for configuring the immich client.
//
// It is organized to take advantage of TOML parsing, however this package does
// not handle parsing and has no expectation on how it will be initialized.
type Config struct {
	// ImmichAPIEndpoint is the URL for accessing the immich API.
	ImmichAPIEndpoint string
	// ImmichAPIKey should ideally not be written to disk un-encrypted,
	// however, for ease of "deployment" I'm going to allow it.
	ImmichAPIKey string
	// Retry overrides the default retry policy when MaxAttempts is set.
	Retry RetryPolicy
}

// HydrateFromEnv overwrites any values in Config with their associated
// environment variable value. Environment variables take precedence.
func (c *Config) HydrateFromEnv() {
	if v, ok := os.LookupEnv("IMMICH_API_ENDPOINT"); ok {
		c.ImmichAPIEndpoint = v
	}
	if v, ok := os.LookupEnv("IMMICH_API_KEY"); ok {
		c.ImmichAPIKey = v
	}
}

// BaseURL returns the server root without the /api path, suitable for
// building user-facing links like {host}/photos/{id}.
func (c Config) BaseURL() string {
	u, err := url.Parse(c.ImmichAPIEndpoint)
	if err != nil {
		return strings.TrimSuffix(c.ImmichAPIEndpoint, "/api")
	}
	u.Path = ""
	u.RawQuery = ""
	return strings.TrimSuffix(u.String(), "/")
}

// RetryPolicy describes how many times a request is attempted and how long to
// wait between attempts. Attempts past the end of Delays reuse the last delay.
type RetryPolicy struct {
	MaxAttempts int
	Delays      []time.Duration
}

// DefaultRetryPolicy retries three times with exponential backoff.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	Delays:      []time.Duration{time.Second, 2 * time.Second, 4 * time.Second},
}

// wait blocks for the delay following the given attempt, or until the context
// is canceled.
func (p RetryPolicy) wait(ctx context.Context, attempt int) error {
	var d time.Duration
	if len(p.Delays) > 0 {
		d = p.Delays[min(attempt, len(p.Delays)-1)]
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// retry runs f until it returns without error or the policy's attempts are
// exhausted. The last error is returned wrapped with the operation name.
func retry[T any](ctx context.Context, p RetryPolicy, op string, f func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		v, err := f()
		if err == nil {
			return v, nil
		}
		lastErr = err
		if attempt < p.MaxAttempts-1 {
			if werr := p.wait(ctx, attempt); werr != nil {
				return zero, werr
			}
		}
	}
	return zero, fmt.Errorf("%s: all %d attempts failed: %w", op, p.MaxAttempts, lastErr)
}

// immichTransport is a custom http.Transport that rewrites the http.Request
// via transformF.
type immichTransport struct {
	transformF func(*http.Request)
}

func (i immichTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	i.transformF(req)
	return http.DefaultTransport.RoundTrip(req)
}

// NewClient initializes a Client with the provided API endpoint and API key.
// Use [Client.ValidateToken] to check if the Client was properly configured.
func NewClient(conf Config) Client {
	// Canonicalize apiEndpoint.
	apiEndpointURI, _ := url.Parse(conf.ImmichAPIEndpoint)
	if apiEndpointURI.Path != "/api" {
		apiEndpointURI.Path = "/api"
	}

	// Build a custom http.Transport to set the API credentials and host.
	transport := immichTransport{
		transformF: func(r *http.Request) {
			// Add the API header credentials.
			r.Header.Add("x-api-key", conf.ImmichAPIKey)
			// Prefix the API endpoint in the new URL.
			immichAPI := *apiEndpointURI
			immichAPI.Path = path.Join(immichAPI.Path, r.URL.Path)
			immichAPI.RawQuery = r.URL.RawQuery
			r.URL = &immichAPI
		},
	}
	policy := conf.Retry
	if policy.MaxAttempts == 0 {
		policy = DefaultRetryPolicy
	}
	return Client{
		Client: &http.Client{Transport: transport, Timeout: 30 * time.Second},
		Retry:  policy,
	}
}

// checkStatusCode is a helper function to check for a 200 OK status code and
// return a descriptive error if not.
func checkStatusCode(statusCode int) error {
	if statusCode == http.StatusUnauthorized {
		return errors.New("invalid immich token")
	} else if statusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %d", statusCode)
	}
	return nil
}
