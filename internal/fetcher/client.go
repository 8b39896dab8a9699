package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tarun-khatri/competitor-metrics/internal/model"
)

// ErrUpstream wraps every provider-side failure: timeouts, non-2xx statuses
// and {success:false} bodies. The aggregator uses it to mark a slot failed
// without aborting siblings.
var ErrUpstream = errors.New("upstream provider error")

// Adapter maps one upstream provider into the canonical record. An empty
// identifier means "not configured" and yields (nil, nil), not an error.
type Adapter interface {
	Platform() string
	Fetch(ctx context.Context, identifier, companyName string) (*model.SocialMediaData, error)
}

type Client struct {
	httpClient http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: http.Client{
			Timeout: timeout,
		},
	}
}

// getJSON issues a GET and decodes the body into out. Non-2xx responses
// come back as ErrUpstream so callers can classify without string matching.
func (c *Client) getJSON(ctx context.Context, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading body: %v", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s returned %d %s", ErrUpstream, url, resp.StatusCode, resp.Status)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decoding response from %s: %v", ErrUpstream, url, err)
	}

	return nil
}
