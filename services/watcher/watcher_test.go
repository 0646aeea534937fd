package watcher

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"parkwatch/lib/notify"
	"parkwatch/lib/telemetry"

	"github.com/stretchr/testify/require"
)

type pollStep struct {
	sites map[string]bool
	err   error
}

// scriptedProvider replays a fixed sequence of poll outcomes.
type scriptedProvider struct {
	t     *testing.T
	steps []pollStep
	calls int
}

func (p *scriptedProvider) Snapshot(ctx context.Context) (Snapshot, error) {
	require.Less(p.t, p.calls, len(p.steps), "provider polled more often than scripted")
	step := p.steps[p.calls]
	p.calls++

	if step.err != nil {
		return Snapshot{}, step.err
	}
	return Snapshot{
		Sites:     step.sites,
		FetchedAt: time.Now(),
	}, nil
}

type recordingNotifier struct {
	name   string
	events []notify.Event
	fail   bool
}

func (n *recordingNotifier) Name() string {
	return n.name
}

func (n *recordingNotifier) Send(ctx context.Context, event notify.Event) error {
	if n.fail {
		return fmt.Errorf("%s: provider outage", n.name)
	}
	n.events = append(n.events, event)
	return nil
}

func setupWatcher(t *testing.T, cfg Config, steps ...pollStep) (*Watcher, *recordingNotifier, *recordingNotifier) {
	cleanup := telemetry.SetupForTesting(t, "services/watcher")
	t.Cleanup(cleanup)

	console := &recordingNotifier{name: "console"}
	alert := &recordingNotifier{name: "alert"}
	w := New(cfg, &scriptedProvider{t: t, steps: steps}, console, alert)
	return w, console, alert
}

func TestFirstCycleNotifiesAllAvailable(t *testing.T) {
	w, console, alert := setupWatcher(t, Config{},
		pollStep{sites: map[string]bool{"51": true, "58": false}},
	)

	w.RunCycle(context.Background())

	require.Len(t, console.events, 1)
	require.Equal(t, []string{"51"}, console.events[0].Available)
	require.Len(t, alert.events, 1)
	require.Equal(t, []string{"51"}, alert.events[0].NewlyAvailable)
}

func TestTransitionIntoAvailability(t *testing.T) {
	w, console, alert := setupWatcher(t, Config{},
		pollStep{sites: map[string]bool{"51": false, "58": false}},
		pollStep{sites: map[string]bool{"51": true, "58": false}},
	)

	w.RunCycle(context.Background())
	require.Len(t, console.events, 1)
	require.Empty(t, console.events[0].Available)
	require.Empty(t, alert.events, "nothing available yet, no alert")

	w.RunCycle(context.Background())
	require.Len(t, console.events, 2)
	require.Equal(t, []string{"51"}, console.events[1].Available)
	require.Len(t, alert.events, 1)
	require.Equal(t, []string{"51"}, alert.events[0].NewlyAvailable)
}

func TestSteadyStateDoesNotRealert(t *testing.T) {
	w, console, alert := setupWatcher(t, Config{},
		pollStep{sites: map[string]bool{"51": true}},
		pollStep{sites: map[string]bool{"51": true}},
		pollStep{sites: map[string]bool{"51": true}},
	)

	for i := 0; i < 3; i++ {
		w.RunCycle(context.Background())
	}

	// the console keeps reporting availability every cycle but the
	// alert only fires on the transition
	require.Len(t, console.events, 3)
	for _, event := range console.events {
		require.Equal(t, []string{"51"}, event.Available)
	}
	require.Len(t, alert.events, 1)
}

func TestEmptyProviderResponseIsValid(t *testing.T) {
	w, console, alert := setupWatcher(t, Config{},
		pollStep{sites: map[string]bool{}},
	)

	w.RunCycle(context.Background())

	require.Len(t, console.events, 1)
	require.Empty(t, console.events[0].Available)
	require.Empty(t, alert.events)
}

func TestFilterRestrictsNotifications(t *testing.T) {
	w, console, alert := setupWatcher(t,
		Config{SiteFilter: []string{"13", "5", "41", "19"}},
		pollStep{sites: map[string]bool{"5": true, "99": true}},
	)

	w.RunCycle(context.Background())

	require.Len(t, console.events, 1)
	require.Equal(t, []string{"5"}, console.events[0].Available)
	require.Len(t, alert.events, 1)
	require.Equal(t, []string{"5"}, alert.events[0].NewlyAvailable)
}

func TestFailedCycleKeepsBaseline(t *testing.T) {
	w, _, alert := setupWatcher(t, Config{},
		pollStep{sites: map[string]bool{"51": true, "58": false}},
		pollStep{err: fmt.Errorf("%w: connection refused", ErrFetch)},
		pollStep{sites: map[string]bool{"51": true, "58": true}},
	)

	w.RunCycle(context.Background())
	w.RunCycle(context.Background())
	w.RunCycle(context.Background())

	// cycle 3 must diff against cycle 1's snapshot, not an empty
	// baseline: 51 stayed available, only 58 is new
	require.Len(t, alert.events, 2)
	require.Equal(t, []string{"51"}, alert.events[0].NewlyAvailable)
	require.Equal(t, []string{"58"}, alert.events[1].NewlyAvailable)
}

func TestRepeatedFailuresThenSuccess(t *testing.T) {
	w, console, alert := setupWatcher(t, Config{},
		pollStep{err: fmt.Errorf("%w: timeout", ErrFetch)},
		pollStep{err: fmt.Errorf("%w: timeout", ErrFetch)},
		pollStep{err: fmt.Errorf("%w: no map container", ErrParse)},
		pollStep{sites: map[string]bool{"7": true}},
	)

	for i := 0; i < 4; i++ {
		w.RunCycle(context.Background())
	}

	// no successful poll happened before cycle 4, so its baseline is
	// still "none" and site 7 counts as newly available
	require.Len(t, console.events, 1)
	require.Len(t, alert.events, 1)
	require.Equal(t, []string{"7"}, alert.events[0].NewlyAvailable)
	require.Equal(t, 0, w.consecutiveFailures)
}

func TestNotifierFailureDoesNotStopLoop(t *testing.T) {
	w, console, alert := setupWatcher(t, Config{},
		pollStep{sites: map[string]bool{"51": true}},
		pollStep{sites: map[string]bool{"51": true, "58": true}},
	)
	alert.fail = true

	w.RunCycle(context.Background())
	w.RunCycle(context.Background())

	// both cycles completed and committed their baseline even though
	// every alert dispatch failed
	require.Len(t, console.events, 2)
	require.Empty(t, alert.events)
	require.NotNil(t, w.previous)
	require.Equal(t, map[string]bool{"51": true, "58": true}, w.previous.Sites)
}

func TestConsoleLineFormat(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "services/watcher")
	t.Cleanup(cleanup)

	var out strings.Builder
	w := New(Config{},
		&scriptedProvider{t: t, steps: []pollStep{
			{sites: map[string]bool{}},
			{sites: map[string]bool{"S15": true, "2": true}},
		}},
		notify.Console{Out: &out},
	)

	w.RunCycle(context.Background())
	w.RunCycle(context.Background())

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	require.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} - No Availability$`, lines[0])
	require.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} - Available sites: 2,S15$`, lines[1])
}

func TestRunStopsOnCancel(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "services/watcher")
	t.Cleanup(cleanup)

	steps := make([]pollStep, 100)
	for i := range steps {
		steps[i] = pollStep{sites: map[string]bool{}}
	}
	w := New(
		Config{Interval: time.Millisecond * 5},
		&scriptedProvider{t: t, steps: steps},
		&recordingNotifier{name: "console"},
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*30)
	defer cancel()

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second * 2):
		t.Fatal("watcher did not stop after cancellation")
	}
}
