package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Console writes the one-line-per-cycle status that the original shell
// consumers of this tool scrape.
type Console struct {
	Out io.Writer
}

func (c Console) Name() string {
	return "console"
}

func (c Console) Send(ctx context.Context, event Event) error {
	ts := event.Time.Format(TimestampFormat)

	if len(event.Available) == 0 {
		_, err := fmt.Fprintf(c.Out, "%s - No Availability\n", ts)
		return err
	}

	_, err := fmt.Fprintf(
		c.Out, "%s - Available sites: %s\n",
		ts, strings.Join(event.Available, ","),
	)
	return err
}
