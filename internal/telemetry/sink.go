// Package telemetry implements the asynchronous sample sink described in
// spec.md §6 — the Go analogue of pythonmatcher's influx.write_points.
package telemetry

import (
	"context"
	"time"
)

// Sample is one named observation with tags and numeric fields, the same
// shape influx.write_points expects: {measurement, tags, fields, time}.
type Sample struct {
	Measurement string
	Tags        map[string]string
	Fields      map[string]float64
	Time        time.Time
}

// Sink accepts samples for best-effort delivery. Write never returns an
// error to the caller — failures are logged and dropped, per spec.md §7's
// TelemetryFailure policy. Whether Write blocks on I/O depends on the
// implementation: InfluxSink writes inline unless Options.AsyncWrite is set.
type Sink interface {
	Write(ctx context.Context, samples ...Sample)
}

// NullSink discards every sample. Used when telemetry is disabled and in
// tests that don't care about the telemetry side channel.
type NullSink struct{}

func (NullSink) Write(context.Context, ...Sample) {}
