package bus

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/churnboard/internal/platform/logger"
	"github.com/yungbote/churnboard/internal/realtime"
)

type recorder struct {
	mu   sync.Mutex
	msgs []realtime.Message
}

func (r *recorder) add(m realtime.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, m)
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met")
}

func TestPublisherPreservesOrder(t *testing.T) {
	b := NewLocalBus()
	rec := &recorder{}
	if err := b.StartForwarder(context.Background(), rec.add); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
	p := NewPublisher(b, logger.NewNop(), 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx) }()

	p.Enqueue(realtime.Message{Channel: "s", Event: realtime.EventSingle, Data: "pending"})
	p.Enqueue(realtime.Message{Channel: "s", Event: realtime.EventSingle, Data: "succeeded"})

	waitFor(t, func() bool { return rec.len() == 2 })
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.msgs[0].Data != "pending" || rec.msgs[1].Data != "succeeded" {
		t.Fatalf("msgs=%+v", rec.msgs)
	}
}

func TestPublisherDropsWhenFull(t *testing.T) {
	p := NewPublisher(NewLocalBus(), logger.NewNop(), 1)
	dropped := 0
	p.OnDrop = func() { dropped++ }
	p.Enqueue(realtime.Message{Channel: "s"})
	p.Enqueue(realtime.Message{Channel: "s"})
	if len(p.queue) != 1 || dropped != 1 {
		t.Fatalf("queue=%d dropped=%d", len(p.queue), dropped)
	}
}

func TestLocalBusRequiresCallback(t *testing.T) {
	if err := NewLocalBus().StartForwarder(context.Background(), nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRedisBusRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := NewRedisBus(ctx, logger.NewNop(), RedisOptions{Addr: addr, Channel: "churnboard:test"})
	if err != nil {
		t.Fatalf("NewRedisBus: %v", err)
	}
	defer b.Close()

	rec := &recorder{}
	if err := b.StartForwarder(ctx, rec.add); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
	if err := b.Publish(ctx, realtime.Message{Channel: "s", Event: realtime.EventBatch, Data: map[string]any{"view": "result"}}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	waitFor(t, func() bool { return rec.len() == 1 })
}
