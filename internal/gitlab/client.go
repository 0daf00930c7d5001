package gitlab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gl "gitlab.com/gitlab-org/api/client-go"
	"golang.org/x/time/rate"

	domainErrors "github.com/thomas-vilte/gitlab-simple/internal/errors"
	"github.com/thomas-vilte/gitlab-simple/internal/logger"
)

const (
	// perPage is the largest page size GitLab serves.
	perPage = 100

	// maxPages stops a listing that keeps reporting a next page.
	maxPages = 1000
)

// Client adapts the GitLab REST API v4 to the engine's Gateway.
type Client struct {
	api *gl.Client
}

// NewClient builds a client for server (e.g. https://gitlab.com). httpClient
// carries the credentials and timeout, see httpclient.NewAuthenticated.
// Failed calls are not retried.
func NewClient(server, token string, httpClient *http.Client) (*Client, error) {
	api, err := gl.NewOAuthClient(token,
		gl.WithBaseURL(strings.TrimRight(server, "/")),
		gl.WithHTTPClient(httpClient),
		gl.WithoutRetries(),
		gl.WithCustomLimiter(rate.NewLimiter(rate.Inf, 0)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gitlab client: %w", err)
	}
	return &Client{api: api}, nil
}

// call runs one SDK request and turns its failure into a RemoteError tagged
// with operation.
func call[T any](ctx context.Context, operation string, fn func(opts ...gl.RequestOptionFunc) (T, *gl.Response, error)) (T, error) {
	start := time.Now()
	result, resp, err := fn(gl.WithContext(ctx))
	if err != nil {
		var zero T
		return zero, remoteError(ctx, operation, resp, err)
	}

	logger.Debug(ctx, "gitlab request",
		"operation", operation,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

// listAll requests page after page until GitLab reports no next page and
// returns every item. A failed page fails the whole listing.
func listAll[T any](ctx context.Context, operation string, fetch func(page gl.ListOptions, opts ...gl.RequestOptionFunc) ([]*T, *gl.Response, error)) ([]*T, error) {
	var all []*T
	page := gl.ListOptions{PerPage: perPage, Page: 1}
	pages := 0

	for {
		items, resp, err := fetch(page, gl.WithContext(ctx))
		if err != nil {
			return nil, remoteError(ctx, operation, resp, err)
		}
		all = append(all, items...)
		pages++

		if resp.NextPage == 0 {
			break
		}
		if pages >= maxPages {
			return nil, domainErrors.NewRemoteError(operation, 0, fmt.Errorf("listing exceeded %d pages", maxPages))
		}
		page.Page = resp.NextPage
	}

	logger.Debug(ctx, "gitlab listing complete",
		"operation", operation,
		"pages", pages,
		"count", len(all))

	return all, nil
}

func remoteError(ctx context.Context, operation string, resp *gl.Response, err error) error {
	status := 0
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	}

	cause := err
	var apiErr *gl.ErrorResponse
	if errors.As(err, &apiErr) {
		if apiErr.Response != nil {
			status = apiErr.Response.StatusCode
		}
		msg := apiErr.Message
		if len(apiErr.Body) > 0 && !json.Valid(apiErr.Body) {
			msg = strings.TrimSpace(string(apiErr.Body))
		}
		if msg == "" {
			msg = http.StatusText(status)
		}
		cause = errors.New(msg)
	}

	logger.Error(ctx, "gitlab request failed", cause, "operation", operation, "status", status)
	return domainErrors.NewRemoteError(operation, status, cause)
}
