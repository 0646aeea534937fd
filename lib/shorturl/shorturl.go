// Package shorturl shortens booking links so they fit in an SMS body.
package shorturl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"parkwatch/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

const defaultEndpoint = "https://tinyurl.com/api-create.php"

type Client struct {
	http     *resty.Client
	endpoint string
}

func NewClient() *Client {
	client := resty.New()
	client.SetTimeout(time.Second * 10)
	telemetry.InstrumentResty(client, "shorturl")

	return &Client{
		http:     client,
		endpoint: defaultEndpoint,
	}
}

// NewClientWithEndpoint exists for tests pointing at a stub server.
func NewClientWithEndpoint(endpoint string) *Client {
	c := NewClient()
	c.endpoint = endpoint
	return c
}

func (c *Client) Shorten(ctx context.Context, link string) (string, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("url", link).
		Get(c.endpoint)
	if err != nil {
		return "", err
	}
	if res.StatusCode() != 200 {
		return "", fmt.Errorf("shorten %s: status %d", link, res.StatusCode())
	}

	short := strings.TrimSpace(res.String())
	if short == "" {
		return "", fmt.Errorf("shorten %s: empty response", link)
	}
	return short, nil
}
