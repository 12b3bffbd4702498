// Package httpclient performs the outbound GET/POST and GraphQL requests
// against the platform, with bearer-token headers and a bounded timeout on
// every call.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	apperrors "github.com/webnyman/three-legged-Oauth/pkg/errors"
)

// Response carries the raw outcome of a remote call. Status interpretation
// belongs to the caller.
type Response struct {
	Status int
	Body   []byte
}

// DecodeJSON unmarshals the response body into v.
func (r *Response) DecodeJSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Client performs JSON HTTP requests against the platform.
type Client struct {
	http *http.Client
}

// New creates a client whose requests are bounded by timeout.
func New(timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{Timeout: timeout},
	}
}

// Get performs a GET request with a bearer token.
func (c *Client) Get(ctx context.Context, uri, token string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, apperrors.NewUpstreamError("get", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	return c.do(req, "get")
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, uri string, body any) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encode request body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewUpstreamError("post", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, "post")
}

// GraphQL posts a query to a GraphQL endpoint with a bearer token. The query
// text is opaque to this client.
func (c *Client) GraphQL(ctx context.Context, endpoint, token, query string) (*Response, error) {
	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encode graphql query")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewUpstreamError("graphql", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	return c.do(req, "graphql")
}

func (c *Client) do(req *http.Request, operation string) (*Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.NewUpstreamError(operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewUpstreamError(operation, err)
	}

	return &Response{Status: resp.StatusCode, Body: body}, nil
}
