package bcparks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"
)

// Browser renders the booking map in headless Chrome for parks where the
// availability API is not usable. One Chrome process is shared across
// polls, each Render runs in a fresh tab.
type Browser struct {
	allocCtx context.Context
	cancel   context.CancelFunc
}

func NewBrowser(ctx context.Context) *Browser {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	return &Browser{
		allocCtx: allocCtx,
		cancel:   cancel,
	}
}

func (b *Browser) Close() {
	b.cancel()
}

// Render loads the booking page, waits for the map icons to settle and
// returns the rendered document.
func (b *Browser) Render(ctx context.Context, link string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(b.allocCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, time.Second*60)
	defer cancelTimeout()

	// join the caller's cancellation with the tab's lifetime
	go func() {
		select {
		case <-ctx.Done():
			cancelTab()
		case <-tabCtx.Done():
		}
	}()

	err := chromedp.Run(tabCtx,
		chromedp.Navigate(link),
		chromedp.WaitReady(".map-container", chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("render booking map: %w", err)
	}

	err = waitForStableIconCount(tabCtx)
	if err != nil {
		return "", fmt.Errorf("render booking map: %w", err)
	}

	var html string
	err = chromedp.Run(tabCtx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("render booking map: %w", err)
	}
	return html, nil
}

// the map populates its icons asynchronously after the container shows
// up, so wait until two consecutive readings agree on the icon count.
func waitForStableIconCount(ctx context.Context) error {
	lastCount := -1
	stable := 0

	for i := 0; i < 10; i++ {
		var count int
		err := chromedp.Run(ctx, chromedp.Evaluate(
			`document.querySelectorAll('.map-icon').length`,
			&count,
		))
		if err != nil {
			return err
		}

		if count == lastCount {
			stable++
			if stable >= 2 {
				return nil
			}
		} else {
			stable = 0
			lastCount = count
		}

		err = chromedp.Run(ctx, chromedp.Sleep(time.Millisecond*500))
		if err != nil {
			return err
		}
	}

	slog.Debug("map icon count never settled, parsing anyway", "count", lastCount)
	return nil
}
