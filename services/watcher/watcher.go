// Package watcher runs the availability poll loop: snapshot, filter,
// diff against the previous poll, notify.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"parkwatch/lib/notify"
	"parkwatch/lib/textutil"

	"github.com/antzucaro/matchr"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/watcher")

type Config struct {
	TargetURL string
	Interval  time.Duration
	// labels to watch, empty means every site the provider reports
	SiteFilter []string
}

// Watcher owns the loop state: the comparison baseline and the failure
// counter. It is driven by a single goroutine, cycles never overlap.
type Watcher struct {
	cfg      Config
	provider Provider
	console  notify.Notifier
	alerts   []notify.Notifier

	// baseline of the last successful poll, nil until one succeeds.
	// fetch and parse failures leave it untouched so a bad cycle can
	// never corrupt the diff.
	previous            *Snapshot
	consecutiveFailures int
	warnedFilter        bool
}

// New wires a watcher. The console notifier runs every cycle; alert
// notifiers only run when sites transition into availability.
func New(cfg Config, provider Provider, console notify.Notifier, alerts ...notify.Notifier) *Watcher {
	return &Watcher{
		cfg:      cfg,
		provider: provider,
		console:  console,
		alerts:   alerts,
	}
}

// Run polls immediately and then once per interval until ctx is
// cancelled. Per-cycle errors are logged and absorbed; the schedule is
// never perturbed by them, the interval itself is the retry backoff.
func (w *Watcher) Run(ctx context.Context) {
	slog.InfoContext(ctx, "watching availability",
		"url", w.cfg.TargetURL,
		"interval", w.cfg.Interval,
		"filter", w.cfg.SiteFilter,
	)

	w.RunCycle(ctx)

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "watcher stopped")
			return
		case <-ticker.C:
			w.RunCycle(ctx)
		}
	}
}

// RunCycle performs one fetch -> filter -> detect -> notify pass.
func (w *Watcher) RunCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	ctx, span := tracer.Start(ctx, "cycle")
	defer span.End()

	log := slog.With("cycle_id", uuid.NewString())

	snapshot, err := w.provider.Snapshot(ctx)
	if err != nil {
		w.consecutiveFailures++
		span.RecordError(err)
		span.SetStatus(codes.Error, "snapshot failed")
		log.ErrorContext(ctx, "snapshot failed, will retry next cycle",
			"stage", failedStage(err),
			"consecutive_failures", w.consecutiveFailures,
			"err", err,
		)
		return
	}

	if w.previous == nil {
		w.warnUnknownFilterEntries(ctx, log, snapshot)
	}

	filtered := snapshot.Filter(w.cfg.SiteFilter)
	result := Detect(w.previous, filtered)
	w.dispatch(ctx, log, filtered, result)

	w.previous = &filtered
	w.consecutiveFailures = 0
}

func failedStage(err error) string {
	if errors.Is(err, ErrParse) {
		return "parse"
	}
	return "fetch"
}

func (w *Watcher) dispatch(ctx context.Context, log *slog.Logger, snapshot Snapshot, result ChangeResult) {
	event := notify.Event{
		Time:           snapshot.FetchedAt,
		Available:      snapshot.Available(),
		NewlyAvailable: result.NewlyAvailable,
		TargetURL:      w.cfg.TargetURL,
	}

	err := w.console.Send(ctx, event)
	if err != nil {
		log.ErrorContext(ctx, "console output failed", "err", err)
	}

	if len(result.NewlyAvailable) == 0 {
		return
	}
	log.InfoContext(ctx, "sites became available", "sites", result.NewlyAvailable)

	// alert failures are logged and dropped, notification is
	// best-effort per cycle and must never stall the loop
	for _, alert := range w.alerts {
		err := alert.Send(ctx, event)
		if err != nil {
			log.ErrorContext(ctx, "notification failed",
				"notifier", alert.Name(),
				"err", err,
			)
		}
	}
}

// on the first successful poll, point out filter entries the provider
// never mentioned, they are usually typos of a real label
func (w *Watcher) warnUnknownFilterEntries(ctx context.Context, log *slog.Logger, snapshot Snapshot) {
	if w.warnedFilter || len(w.cfg.SiteFilter) == 0 {
		return
	}
	w.warnedFilter = true

	known := make(map[string]string, len(snapshot.Sites))
	for label := range snapshot.Sites {
		known[textutil.NormalizeLabel(label)] = label
	}

	for _, entry := range w.cfg.SiteFilter {
		normalized := textutil.NormalizeLabel(entry)
		if _, ok := known[normalized]; ok {
			continue
		}

		closest := ""
		closestDistance := -1
		for candidate, label := range known {
			distance := matchr.Levenshtein(normalized, candidate)
			if closestDistance < 0 || distance < closestDistance {
				closestDistance = distance
				closest = label
			}
		}

		log.WarnContext(ctx, "filter entry was not reported by the provider",
			"site", entry,
			"closest_known", closest,
		)
	}
}
