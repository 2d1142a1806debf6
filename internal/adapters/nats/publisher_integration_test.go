//go:build integration

package natsadapter_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	natsadapter "github.com/wiedertv/BizAway-code-challenge/internal/adapters/nats"
	"github.com/wiedertv/BizAway-code-challenge/internal/core/domain"
)

func TestPublisher_RelayedToSessionSubscriber(t *testing.T) {
	url := os.Getenv("TRIPPLANNER_TEST_NATS_URL")
	if url == "" {
		t.Skip("TRIPPLANNER_TEST_NATS_URL not set")
	}

	pub, err := natsadapter.NewPublisher(url)
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	defer pub.Close()

	got := make(chan domain.SavedTripEvent, 2)
	sub, err := natsadapter.NewSubscriber(pub.Conn()).SubscribeSession("session-1", func(data []byte) {
		var ev domain.SavedTripEvent
		if err := json.Unmarshal(data, &ev); err == nil {
			got <- ev
		}
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	ctx := context.Background()
	_ = pub.PublishSavedTripEvent(ctx, &domain.SavedTripEvent{Action: "saved", SessionID: "session-2", TripID: "x", At: time.Now()})
	if err := pub.PublishSavedTripEvent(ctx, &domain.SavedTripEvent{Action: "deleted", SessionID: "session-1", TripID: "y", At: time.Now()}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case ev := <-got:
		if ev.Action != "deleted" || ev.TripID != "y" {
			t.Errorf("unexpected event %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}
