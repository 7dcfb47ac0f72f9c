package bus

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func newTestBus() *PubSubBus {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), 4)
}

func receive(t *testing.T, sub Subscription) any {
	t.Helper()

	select {
	case msg, ok := <-sub:
		if !ok {
			t.Fatalf("subscription closed unexpectedly")
		}
		return msg
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for message")
	}

	return nil
}

func TestPubSubBusDeliversByTopic(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	both := b.Subscribe("settings.saved", "settings.reset")
	savedOnly := b.Subscribe("settings.saved")

	b.Publish("settings.reset", "reset")
	b.Publish("settings.saved", "saved")

	if got := receive(t, both); got != "reset" {
		t.Fatalf("expected reset first, got %v", got)
	}
	if got := receive(t, both); got != "saved" {
		t.Fatalf("expected saved second, got %v", got)
	}
	if got := receive(t, savedOnly); got != "saved" {
		t.Fatalf("expected saved, got %v", got)
	}
}

func TestPubSubBusUnsubscribeStopsDelivery(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	sub := b.Subscribe("settings.saved", "settings.reset")
	b.Unsubscribe(sub, "settings.saved")

	b.Publish("settings.saved", "saved")
	b.Publish("settings.reset", "reset")

	if got := receive(t, sub); got != "reset" {
		t.Fatalf("expected only reset after unsubscribe, got %v", got)
	}
}

func TestPubSubBusCloseIsIdempotent(t *testing.T) {
	b := newTestBus()
	sub := b.Subscribe("settings.saved")

	b.Close()
	b.Close()
	b.Publish("settings.saved", "dropped")
	b.Unsubscribe(sub)

	select {
	case _, ok := <-sub:
		if ok {
			t.Fatalf("expected subscription to be closed")
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for subscription close")
	}

	late := b.Subscribe("settings.saved")
	if _, ok := <-late; ok {
		t.Fatalf("expected subscription after close to be closed")
	}
}

func TestPayloadType(t *testing.T) {
	if got := payloadType(nil); got != "<nil>" {
		t.Fatalf("unexpected nil payload type %q", got)
	}
	if got := payloadType(struct{ A int }{}); got != "struct { A int }" {
		t.Fatalf("unexpected payload type %q", got)
	}
}
