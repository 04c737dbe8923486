package events

import (
	"context"
	"testing"
	"time"
)

func TestBroker(t *testing.T) {
	t.Run("publish reaches subscriber", func(t *testing.T) {
		b := NewBroker[string]()
		defer b.Shutdown()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sub := b.Subscribe(ctx)

		b.Publish("greeting", "hello")

		select {
		case ev := <-sub:
			if ev.Type != "greeting" || ev.Payload != "hello" {
				t.Errorf("unexpected event %+v", ev)
			}
			if ev.ID == "" {
				t.Error("event should carry an id")
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	})

	t.Run("shutdown closes subscriber channels", func(t *testing.T) {
		b := NewBroker[int]()
		sub := b.Subscribe(context.Background())
		b.Shutdown()

		select {
		case _, open := <-sub:
			if open {
				t.Error("expected closed channel after shutdown")
			}
		case <-time.After(time.Second):
			t.Fatal("channel not closed after shutdown")
		}
	})

	t.Run("publish after shutdown is a no-op", func(t *testing.T) {
		b := NewBroker[int]()
		b.Shutdown()
		b.Publish("tick", 1) // must not panic
	})
}
