package watcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parkwatch/lib/scrapers/bcparks"
)

// ErrFetch marks transport-level failures: the provider was not
// reachable or did not answer usefully.
var ErrFetch = errors.New("fetch failed")

// ErrParse marks responses that arrived but could not be interpreted as
// site availability data at all.
var ErrParse = errors.New("response not interpretable")

// Provider produces one normalized availability snapshot per call.
// Errors wrap ErrFetch or ErrParse so the poll loop can report which
// stage went wrong; either way the cycle is skipped and retried on the
// next tick.
type Provider interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// APIProvider polls through the reservation system's JSON API.
type APIProvider struct {
	client *bcparks.Client
}

func NewAPIProvider(client *bcparks.Client) APIProvider {
	return APIProvider{client: client}
}

func (p APIProvider) Snapshot(ctx context.Context) (Snapshot, error) {
	raw, err := p.client.Fetch(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	sites, err := bcparks.Normalize(raw)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrParse, err)
	}

	return Snapshot{
		Sites:     sites,
		FetchedAt: time.Now(),
	}, nil
}

// BrowserProvider polls by rendering the booking page in headless
// Chrome, for parks where the API answers differently than the page.
type BrowserProvider struct {
	browser   *bcparks.Browser
	targetURL string
}

func NewBrowserProvider(browser *bcparks.Browser, targetURL string) BrowserProvider {
	return BrowserProvider{
		browser:   browser,
		targetURL: targetURL,
	}
}

func (p BrowserProvider) Snapshot(ctx context.Context) (Snapshot, error) {
	html, err := p.browser.Render(ctx, p.targetURL)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	sites, err := bcparks.ParseMap(html)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrParse, err)
	}

	return Snapshot{
		Sites:     sites,
		FetchedAt: time.Now(),
	}, nil
}
