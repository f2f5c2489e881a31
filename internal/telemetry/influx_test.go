package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLineProtocol(t *testing.T) {
	s := Sample{
		Measurement: "auctioneer_prices",
		Tags:        map[string]string{"auctioneer_id": "Sim"},
		Fields:      map[string]float64{"price": 42.5},
		Time:        time.Unix(0, 1700000000000000000),
	}
	line := encodeLineProtocol(s)
	assert.Equal(t, "auctioneer_prices,auctioneer_id=Sim price=42.5 1700000000000000000", line)
}

func TestEncodeLineProtocol_EscapesSpecialCharacters(t *testing.T) {
	s := Sample{
		Measurement: "deviceagent power",
		Tags:        map[string]string{"id": "a,b"},
		Fields:      map[string]float64{"power": 1},
		Time:        time.Unix(0, 0),
	}
	line := encodeLineProtocol(s)
	assert.Contains(t, line, `deviceagent\ power`)
	assert.Contains(t, line, `a\,b`)
}

type fakeTap struct {
	mu      sync.Mutex
	samples []Sample
}

func (f *fakeTap) Publish(s Sample) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples = append(f.samples, s)
}

func (f *fakeTap) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.samples)
}

func TestInfluxSink_DisabledDoesNotPublish(t *testing.T) {
	tap := &fakeTap{}
	sink := NewInfluxSink(Options{Enabled: false}, tap)
	sink.Write(context.Background(), Sample{Measurement: "x"})
	assert.Equal(t, 0, tap.count())
}

func TestInfluxSink_SyncWritePublishesAndPosts(t *testing.T) {
	var gotPaths []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPaths = append(gotPaths, r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	host := strings.TrimPrefix(srv.URL, "http://")
	tap := &fakeTap{}
	sink := NewInfluxSink(Options{Enabled: true, Host: host, Database: "powermatcher"}, tap)

	sink.Write(context.Background(), Sample{
		Measurement: "auctioneer_prices",
		Fields:      map[string]float64{"price": 10},
		Time:        time.Now(),
	})

	assert.Equal(t, 1, tap.count())
	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, gotPaths, "/write")
}

func TestInfluxSink_AsyncWriteDrainsOnClose(t *testing.T) {
	var count int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		count++
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	host := strings.TrimPrefix(srv.URL, "http://")
	sink := NewInfluxSink(Options{Enabled: true, AsyncWrite: true, Host: host, Database: "powermatcher", Workers: 2}, nil)

	for i := 0; i < 5; i++ {
		sink.Write(context.Background(), Sample{Measurement: "x", Fields: map[string]float64{"v": float64(i)}, Time: time.Now()})
	}
	sink.Close()

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, count, 5)
}

func TestNullSink_DiscardsEverything(t *testing.T) {
	var s NullSink
	s.Write(context.Background(), Sample{Measurement: "x"})
}
