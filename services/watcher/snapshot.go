package watcher

import (
	"maps"
	"time"

	"parkwatch/lib/textutil"
)

// Snapshot is one normalized view of site availability at a point in
// time. A label absent from Sites was not reported by the provider,
// which is not the same thing as known-unavailable. Snapshots are never
// mutated once built.
type Snapshot struct {
	Sites     map[string]bool
	FetchedAt time.Time
}

// Available lists every bookable site label, naturally sorted.
func (s Snapshot) Available() []string {
	var labels []string
	for label, available := range s.Sites {
		if available {
			labels = append(labels, label)
		}
	}
	return textutil.SortLabels(labels)
}

// Filter returns a snapshot restricted to the given labels, compared
// case- and whitespace-insensitively. An empty filter keeps everything.
// Filter entries the provider never reported are silently absent from
// the result, they may simply not exist in this park's map.
func (s Snapshot) Filter(labels []string) Snapshot {
	if len(labels) == 0 {
		return Snapshot{
			Sites:     maps.Clone(s.Sites),
			FetchedAt: s.FetchedAt,
		}
	}

	wanted := make(map[string]bool, len(labels))
	for _, label := range labels {
		wanted[textutil.NormalizeLabel(label)] = true
	}

	sites := make(map[string]bool, len(wanted))
	for label, available := range s.Sites {
		if wanted[textutil.NormalizeLabel(label)] {
			sites[label] = available
		}
	}

	return Snapshot{
		Sites:     sites,
		FetchedAt: s.FetchedAt,
	}
}

// ChangeResult is the outcome of comparing two consecutive snapshots.
type ChangeResult struct {
	AnyAvailable bool
	// sites that are bookable now but were not on the previous poll,
	// naturally sorted
	NewlyAvailable []string
}

// Detect diffs the current snapshot against the previous one. A nil
// previous means this is the first successful poll, in which case every
// bookable site counts as newly available: the first observed opening
// must always notify. A site that stays bookable across polls is not
// re-reported, only AnyAvailable keeps saying so.
func Detect(previous *Snapshot, current Snapshot) ChangeResult {
	result := ChangeResult{}

	var newly []string
	for label, available := range current.Sites {
		if !available {
			continue
		}
		result.AnyAvailable = true

		if previous == nil || !previous.Sites[label] {
			newly = append(newly, label)
		}
	}

	result.NewlyAvailable = textutil.SortLabels(newly)
	return result
}
