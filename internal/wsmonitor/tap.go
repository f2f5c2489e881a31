package wsmonitor

import (
	"time"

	"powermatcher/internal/logx"
	"powermatcher/internal/telemetry"
)

// Tap implements telemetry.Tap, broadcasting every sample an InfluxSink
// writes to all connected monitoring clients. Unlike the teacher's
// Bridge (which drives a two-way command channel into simulator.Engine),
// this is a one-way feed: monitoring clients observe, they don't command.
type Tap struct {
	hub *Hub
}

// NewTap constructs a Tap broadcasting through hub.
func NewTap(hub *Hub) *Tap {
	return &Tap{hub: hub}
}

// Publish implements telemetry.Tap.
func (t *Tap) Publish(s telemetry.Sample) {
	payload := SamplePayload{
		Measurement: s.Measurement,
		Tags:        s.Tags,
		Fields:      s.Fields,
		Time:        s.Time.Format(time.RFC3339Nano),
	}
	msg, err := NewEnvelope(TypeSample, payload)
	if err != nil {
		logx.Errorf("wsmonitor: encoding sample envelope: %v", err)
		return
	}
	t.hub.Broadcast(msg)
}
