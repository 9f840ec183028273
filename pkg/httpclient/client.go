// Package httpclient wraps the HTTP transport behind a small interface so
// fetchers and publishers can be tested without the network.
package httpclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Response exposes the parts of an HTTP response the rest of the code reads.
// *resty.Response satisfies it directly.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client issues HTTP requests. Implementations must honor the context.
type Client interface {
	// Get performs a GET with the given headers applied to the request.
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
	// PostJSON marshals payload as the JSON request body and performs a POST.
	PostJSON(ctx context.Context, url string, headers map[string]string, payload any) (Response, error)
}

type restyClient struct {
	rc *resty.Client
}

// NewRestyClient returns a resty-backed Client with the given total request
// timeout. A zero timeout falls back to 15 seconds.
func NewRestyClient(timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	rc := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	return &restyClient{rc: rc}
}

func (c *restyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	return resp, nil
}

func (c *restyClient) PostJSON(ctx context.Context, url string, headers map[string]string, payload any) (Response, error) {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(url)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", url, err)
	}
	return resp, nil
}
