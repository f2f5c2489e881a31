package wsmonitor

import "encoding/json"

// Envelope wraps every message this package sends onto the wire,
// following the teacher's ws.Envelope shape so existing frontend tooling
// that expects {type, payload} JSON keeps working unchanged.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// TypeSample is the envelope type for a broadcast telemetry sample.
const TypeSample = "telemetry:sample"

// SamplePayload is the wire shape of a telemetry.Sample.
type SamplePayload struct {
	Measurement string             `json:"measurement"`
	Tags        map[string]string  `json:"tags,omitempty"`
	Fields      map[string]float64 `json:"fields"`
	Time        string             `json:"time"`
}

// NewEnvelope marshals a typed payload into an Envelope, mirroring the
// teacher's ws.NewEnvelope helper.
func NewEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}
