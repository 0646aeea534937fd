package watcher

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func snap(sites map[string]bool) Snapshot {
	return Snapshot{
		Sites:     sites,
		FetchedAt: time.Date(2024, 8, 5, 12, 0, 0, 0, time.Local),
	}
}

func TestFilterEmptyIsIdentity(t *testing.T) {
	original := snap(map[string]bool{"51": true, "58": false})

	filtered := original.Filter(nil)
	require.Empty(t, cmp.Diff(original, filtered))

	// the copy must be independent of the input
	filtered.Sites["51"] = false
	require.True(t, original.Sites["51"])
}

func TestFilterMembership(t *testing.T) {
	original := snap(map[string]bool{"5": true, "99": true})

	filtered := original.Filter([]string{"13", "5", "41", "19"})
	require.Empty(t, cmp.Diff(snap(map[string]bool{"5": true}), filtered))

	// every kept key is both in the source and in the filter,
	// filter entries the provider never reported are silently absent
	for label := range filtered.Sites {
		require.Contains(t, original.Sites, label)
	}
}

func TestFilterIgnoresCaseAndWhitespace(t *testing.T) {
	original := snap(map[string]bool{"S15": true, "18B": false, "92": true})

	filtered := original.Filter([]string{" s15 ", "18b"})
	require.Empty(t, cmp.Diff(
		snap(map[string]bool{"S15": true, "18B": false}),
		filtered,
	))
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	original := snap(map[string]bool{"51": true, "58": false})
	original.Filter([]string{"58"})
	require.Empty(t, cmp.Diff(snap(map[string]bool{"51": true, "58": false}), original))
}

func TestDetectFirstCycle(t *testing.T) {
	current := snap(map[string]bool{"51": true, "58": false, "S15": true})

	result := Detect(nil, current)
	require.True(t, result.AnyAvailable)
	require.Equal(t, []string{"51", "S15"}, result.NewlyAvailable)
}

func TestDetectFirstCycleEmpty(t *testing.T) {
	result := Detect(nil, snap(map[string]bool{}))
	require.False(t, result.AnyAvailable)
	require.Empty(t, result.NewlyAvailable)
}

func TestDetectUnchangedSnapshot(t *testing.T) {
	current := snap(map[string]bool{"51": true, "58": false})
	previous := snap(map[string]bool{"51": true, "58": false})

	result := Detect(&previous, current)
	require.True(t, result.AnyAvailable)
	require.Empty(t, result.NewlyAvailable, "steady-state availability must not re-notify")
}

func TestDetectTransitions(t *testing.T) {
	previous := snap(map[string]bool{"51": false, "58": false, "92": true})
	current := snap(map[string]bool{"51": true, "58": false, "92": true, "7": true})

	result := Detect(&previous, current)
	require.True(t, result.AnyAvailable)
	// 51 flipped false->true, 7 appeared as true, 92 stayed true
	require.Equal(t, []string{"7", "51"}, result.NewlyAvailable)
}

func TestDetectDoesNotMutate(t *testing.T) {
	previous := snap(map[string]bool{"51": false})
	current := snap(map[string]bool{"51": true})

	Detect(&previous, current)
	require.Empty(t, cmp.Diff(snap(map[string]bool{"51": false}), previous))
	require.Empty(t, cmp.Diff(snap(map[string]bool{"51": true}), current))
}

func TestAvailableSortsNaturally(t *testing.T) {
	s := snap(map[string]bool{"S15": true, "2": true, "18B": true, "92": false})
	require.Equal(t, []string{"2", "18B", "S15"}, s.Available())
}
