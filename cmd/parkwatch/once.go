package main

import (
	"context"
	"os"

	"parkwatch/lib/serviceutil"
	"parkwatch/lib/textutil"
	"parkwatch/services/watcher"

	"github.com/jedib0t/go-pretty/v6/table"
)

// printOnce runs a single poll and renders every reported site as a
// table instead of entering the monitor loop.
func printOnce(ctx context.Context, provider watcher.Provider, cfg Config) {
	snapshot, err := provider.Snapshot(ctx)
	if err != nil {
		serviceutil.Fatal("query availability", err)
	}
	filtered := snapshot.Filter(cfg.Filter)

	var labels []string
	for label := range filtered.Sites {
		labels = append(labels, label)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Site", "Available"})
	for _, label := range textutil.SortLabels(labels) {
		available := "no"
		if filtered.Sites[label] {
			available = "yes"
		}
		t.AppendRow(table.Row{label, available})
	}
	t.Render()
}
