package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"CorrNet/internal/domain/models"
)

type replayStream struct {
	mu         sync.Mutex
	connected  bool
	reads      int
	reconnects int
}

func (s *replayStream) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return nil
}

func (s *replayStream) Subscribe(ctx context.Context) error { return nil }

// Read simulates a websocket read loop that dies on its first session: it
// emits one transport error and closes both channels. Sessions after a
// reconnect deliver a candle and stay open.
func (s *replayStream) Read(ctx context.Context) (<-chan *models.Candle, <-chan error) {
	s.mu.Lock()
	s.reads++
	session := s.reads
	s.mu.Unlock()

	cnCh := make(chan *models.Candle, 4)
	errCh := make(chan error, 1)
	if session == 1 {
		errCh <- context.DeadlineExceeded
		close(errCh)
		close(cnCh)
		return cnCh, errCh
	}
	cnCh <- &models.Candle{Symbol: "BTC", Interval: "1h", Timestamp: 1700000000, Open: 1, High: 2, Low: 1, Close: 2, Volume: 3}
	return cnCh, errCh
}

func (s *replayStream) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnects++
	s.connected = true
	return nil
}

func (s *replayStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}

func (s *replayStream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *replayStream) reconnectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconnects
}

type memStorage struct {
	mu      sync.Mutex
	candles []*models.Candle
}

func (m *memStorage) Init(ctx context.Context) error { return nil }

func (m *memStorage) Store(ctx context.Context, c *models.Candle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candles = append(m.candles, c)
	return nil
}

func (m *memStorage) StoreBatch(ctx context.Context, candles []*models.Candle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candles = append(m.candles, candles...)
	return nil
}

func (m *memStorage) Health(ctx context.Context) error { return nil }
func (m *memStorage) Close() error                     { return nil }

func (m *memStorage) stored() []*models.Candle {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Candle, len(m.candles))
	copy(out, m.candles)
	return out
}

type syncMetrics struct {
	mu          sync.Mutex
	stageErrors []string
}

func (m *syncMetrics) RecordRun(status string) {}
func (m *syncMetrics) RecordStageError(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stageErrors = append(m.stageErrors, stage)
}
func (m *syncMetrics) RecordEdgeCounts(corr, flow int)      {}
func (m *syncMetrics) RecordClusterCount(n int)             {}
func (m *syncMetrics) RecordNetworkDensity(d float64)       {}
func (m *syncMetrics) RecordLatency(op string, sec float64) {}
func (m *syncMetrics) RecordCandleStored(src, sym string)   {}

func (m *syncMetrics) errorsFor(stage string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.stageErrors {
		if s == stage {
			n++
		}
	}
	return n
}

func TestCandleCollectorResumesAfterStreamDeath(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := &replayStream{}
	store := &memStorage{}
	met := &syncMetrics{}
	proc := NewCandleProcessor(nil, store, met, "clickhouse")
	col := NewCandleCollector(stream, proc, met, nil)

	if err := col.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(store.stored()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("candle from the post-reconnect session was never processed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if got := store.stored(); got[0].Symbol != "BTC" {
		t.Fatalf("stored candle = %+v", got[0])
	}
	if n := stream.reconnectCount(); n != 1 {
		t.Fatalf("reconnects = %d, want 1", n)
	}
	if n := met.errorsFor("stream"); n != 1 {
		t.Fatalf("stream stage errors = %d, want 1", n)
	}
}

func TestCandleCollectorStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	stream := &replayStream{}
	store := &memStorage{}
	met := &syncMetrics{}
	proc := NewCandleProcessor(nil, store, met, "clickhouse")
	col := NewCandleCollector(stream, proc, met, nil)

	if err := col.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	cancel()

	// After cancellation the consume loop must not reconnect again however
	// long it runs.
	time.Sleep(50 * time.Millisecond)
	before := stream.reconnectCount()
	time.Sleep(50 * time.Millisecond)
	if after := stream.reconnectCount(); after != before {
		t.Fatalf("reconnects continued after cancel: %d -> %d", before, after)
	}
}
