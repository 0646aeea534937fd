// Package notify delivers availability updates to a human.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TimestampFormat is the timestamp prefix used in console lines and
// message bodies. Scripts scrape these lines, don't change it.
const TimestampFormat = "2006-01-02 15:04:05"

// Event describes the outcome of one poll worth telling someone about.
type Event struct {
	Time time.Time
	// every site currently bookable after filtering, naturally sorted
	Available []string
	// the subset of Available that was not bookable on the previous poll
	NewlyAvailable []string
	TargetURL      string
}

type Notifier interface {
	Name() string
	Send(ctx context.Context, event Event) error
}

func alertBody(event Event) string {
	return fmt.Sprintf(
		"%s - Available sites: %s",
		event.Time.Format(TimestampFormat),
		strings.Join(event.NewlyAvailable, ","),
	)
}
