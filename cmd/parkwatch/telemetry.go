package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"parkwatch/lib/serviceutil"
	"parkwatch/lib/telemetry"
)

func initTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	tel, err := telemetry.SetupFromEnv(ctx, "parkwatch")
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no telemetry.json5 found, otlp export disabled")
		return
	}
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}

	go func() {
		<-ctx.Done()
		tel.Shutdown(context.Background())
	}()
	telemetry.InstrumentPerfStats(ctx)
}
