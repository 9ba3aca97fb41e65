package bus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/opensource-finance/kestrel/internal/domain"
)

func TestNewSelectsImplementation(t *testing.T) {
	b, err := New(domain.BusConfig{Type: "channel"})
	if err != nil {
		t.Fatalf("failed to create channel bus: %v", err)
	}
	defer b.Close()

	if _, ok := b.(*ChannelBus); !ok {
		t.Errorf("expected *ChannelBus, got %T", b)
	}

	if _, err := New(domain.BusConfig{Type: "carrier-pigeon"}); err == nil {
		t.Error("expected error for unknown bus type")
	}
}

func TestChannelBusDeliversToSubscriber(t *testing.T) {
	b := NewChannelBus(16)
	defer b.Close()

	ctx := context.Background()
	received := make(chan *domain.Message, 1)

	sub, err := b.Subscribe(ctx, "kestrel.alerts", func(ctx context.Context, msg *domain.Message) error {
		received <- msg
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if sub.Topic() != "kestrel.alerts" {
		t.Errorf("unexpected topic %q", sub.Topic())
	}

	if err := b.Publish(ctx, "kestrel.alerts", []byte(`{"riskScore":5}`)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case msg := <-received:
		if string(msg.Payload) != `{"riskScore":5}` {
			t.Errorf("unexpected payload %s", msg.Payload)
		}
		if msg.ID == "" {
			t.Error("message ID must be set")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestChannelBusTopicIsolation(t *testing.T) {
	b := NewChannelBus(16)
	defer b.Close()

	ctx := context.Background()
	received := make(chan *domain.Message, 1)

	_, err := b.Subscribe(ctx, "topic-a", func(ctx context.Context, msg *domain.Message) error {
		received <- msg
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := b.Publish(ctx, "topic-b", []byte("x")); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case <-received:
		t.Fatal("subscriber received a message from another topic")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestChannelBusFanOut(t *testing.T) {
	b := NewChannelBus(16)
	defer b.Close()

	ctx := context.Background()
	var wg sync.WaitGroup
	wg.Add(2)

	for i := 0; i < 2; i++ {
		_, err := b.Subscribe(ctx, "alerts", func(ctx context.Context, msg *domain.Message) error {
			wg.Done()
			return nil
		})
		if err != nil {
			t.Fatalf("subscribe failed: %v", err)
		}
	}

	if err := b.Publish(ctx, "alerts", []byte("x")); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("not all subscribers received the message")
	}
}

func TestChannelBusClosed(t *testing.T) {
	b := NewChannelBus(16)
	ctx := context.Background()

	if err := b.Ping(ctx); err != nil {
		t.Fatalf("ping on open bus failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("double close must be a no-op, got %v", err)
	}

	if err := b.Publish(ctx, "alerts", []byte("x")); err == nil {
		t.Error("publish on a closed bus must fail")
	}
	if _, err := b.Subscribe(ctx, "alerts", nil); err == nil {
		t.Error("subscribe on a closed bus must fail")
	}
	if err := b.Ping(ctx); err == nil {
		t.Error("ping on a closed bus must fail")
	}
}
