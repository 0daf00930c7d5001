package httpclient

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// DefaultTimeout bounds every GitLab request.
const DefaultTimeout = 30 * time.Second

// NewAuthenticated returns a client that sends token as a bearer credential on
// every request. One client is built per invocation.
func NewAuthenticated(ctx context.Context, token string) *http.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	client := oauth2.NewClient(ctx, ts)
	client.Timeout = DefaultTimeout
	return client
}
