package immich

import "context"

// ClientDiagnostics holds the information from the call to [Diagnostics].
type ClientDiagnostics struct {
	RemoteConfigured   bool
	InMemoryConfigured bool
	Authenticated      bool
	AuthError          error
}

// Diagnostics reports how the client is configured and checks whether the
// remote accepts the configured API key.
func (c *Client) Diagnostics(ctx context.Context) ClientDiagnostics {
	diagnostics := ClientDiagnostics{}
	_, remoteNoop := c.remote.(noopClient)
	diagnostics.RemoteConfigured = !remoteNoop
	_, cacheNoop := c.cache.(noopCache)
	diagnostics.InMemoryConfigured = !cacheNoop
	diagnostics.Authenticated, diagnostics.AuthError = c.remote.ValidateToken(ctx)

	return diagnostics
}
