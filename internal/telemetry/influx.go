package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"powermatcher/internal/logx"
)

// Tap receives every sample that passes through an InfluxSink, in
// addition to the line-protocol write. It lets a live monitoring feed
// (internal/wsmonitor) observe telemetry without InfluxSink depending on
// any particular transport.
type Tap interface {
	Publish(Sample)
}

// Options configures an InfluxSink. Each field corresponds to one of
// config.Config's InfluxDB* settings; cmd/powermatcher maps one onto the other
// so this package stays independent of config.
type Options struct {
	Host        string
	Database    string
	Enabled     bool
	DropOnStart bool
	AsyncWrite  bool
	// Workers is the size of the async write pool. Defaults to 2,
	// matching influx.py's ThreadPoolExecutor(max_workers=2).
	Workers int
}

// InfluxSink writes samples as InfluxDB line protocol over HTTP. When
// Options.AsyncWrite is set, writes are queued and drained by a fixed
// pool of workers so callers never block on network I/O — the same
// fire-and-forget behavior influx.py gets from submitting writes to its
// thread pool executor. When Options.Enabled is false the sink discards
// every sample, matching settings.influxdb_enabled.
type InfluxSink struct {
	opts   Options
	client *http.Client
	tap    Tap

	mu       sync.Mutex
	prepared map[string]bool

	queue     chan Sample
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewInfluxSink constructs a sink and, if async writing is enabled, starts
// its worker pool. Pass a nil tap to skip live broadcast.
func NewInfluxSink(opts Options, tap Tap) *InfluxSink {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	s := &InfluxSink{
		opts:     opts,
		client:   &http.Client{Timeout: 5 * time.Second},
		tap:      tap,
		prepared: make(map[string]bool),
		queue:    make(chan Sample, 1024),
	}
	if opts.Enabled && opts.AsyncWrite {
		for i := 0; i < opts.Workers; i++ {
			s.wg.Add(1)
			go s.worker()
		}
	}
	return s
}

func (s *InfluxSink) worker() {
	defer s.wg.Done()
	for sample := range s.queue {
		s.writeOne(context.Background(), sample)
	}
}

// Write implements Sink. Disabled sinks discard silently; enabled async
// sinks enqueue (dropping and logging on a full queue rather than
// blocking); enabled sync sinks write inline.
func (s *InfluxSink) Write(ctx context.Context, samples ...Sample) {
	if !s.opts.Enabled {
		return
	}
	for _, sample := range samples {
		if s.tap != nil {
			s.tap.Publish(sample)
		}
		if s.opts.AsyncWrite {
			select {
			case s.queue <- sample:
			default:
				logx.Warnf("telemetry: queue full, dropping %s sample", sample.Measurement)
			}
			continue
		}
		s.writeOne(ctx, sample)
	}
}

// Close drains the async worker pool. Safe to call even if async writing
// was never enabled.
func (s *InfluxSink) Close() {
	s.closeOnce.Do(func() {
		close(s.queue)
	})
	s.wg.Wait()
}

func (s *InfluxSink) writeOne(ctx context.Context, sample Sample) {
	if err := s.ensurePrepared(ctx); err != nil {
		logx.Errorf("telemetry: preparing database %s: %v", s.opts.Database, err)
		return
	}

	body := strings.NewReader(encodeLineProtocol(sample))
	url := fmt.Sprintf("http://%s:8086/write?db=%s", s.opts.Host, s.opts.Database)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		logx.Errorf("telemetry: building write request: %v", err)
		return
	}
	resp, err := s.client.Do(req)
	if err != nil {
		logx.Errorf("telemetry: writing %s to %s: %v", sample.Measurement, s.opts.Database, err)
		return
	}
	resp.Body.Close()
}

// ensurePrepared lazily creates the target database on first use,
// dropping it first when Options.DropOnStart is set — the equivalent of
// influx.py's drop_database gated by settings.influxdb_empty.
func (s *InfluxSink) ensurePrepared(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prepared[s.opts.Database] {
		return nil
	}

	if s.opts.DropOnStart {
		if err := s.query(ctx, fmt.Sprintf("DROP DATABASE %q", s.opts.Database)); err != nil {
			return err
		}
	}
	if err := s.query(ctx, fmt.Sprintf("CREATE DATABASE %q", s.opts.Database)); err != nil {
		return err
	}
	s.prepared[s.opts.Database] = true
	return nil
}

func (s *InfluxSink) query(ctx context.Context, q string) error {
	url := fmt.Sprintf("http://%s:8086/query", s.opts.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader("q="+q))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}

func encodeLineProtocol(s Sample) string {
	var sb strings.Builder
	sb.WriteString(escape(s.Measurement))

	for _, k := range sortedKeys(s.Tags) {
		sb.WriteByte(',')
		sb.WriteString(escape(k))
		sb.WriteByte('=')
		sb.WriteString(escape(s.Tags[k]))
	}

	sb.WriteByte(' ')
	first := true
	for _, k := range sortedFieldKeys(s.Fields) {
		if !first {
			sb.WriteByte(',')
		}
		first = false
		fmt.Fprintf(&sb, "%s=%v", escape(k), s.Fields[k])
	}

	fmt.Fprintf(&sb, " %d", s.Time.UnixNano())
	return sb.String()
}

func escape(s string) string {
	r := strings.NewReplacer(" ", "\\ ", ",", "\\,", "=", "\\=")
	return r.Replace(s)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedFieldKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
