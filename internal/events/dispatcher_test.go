package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcher_PublishReachesAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string

	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.TicketID)
		return errors.New("boom")
	})
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.TicketID)
		return nil
	})
	d.Subscribe(EventTicketAssigned, func(context.Context, Event) error {
		t.Error("handler for another type invoked")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "t-1"})
	if err == nil {
		t.Fatal("expected handler error to be reported")
	}
	if len(calls) != 2 || calls[0] != "first:t-1" || calls[1] != "second:t-1" {
		t.Fatalf("calls = %v", calls)
	}
}

func TestSubscribeAll(t *testing.T) {
	d := NewInMemoryDispatcher()
	seen := map[EventType]int{}
	SubscribeAll(d, func(_ context.Context, e Event) error {
		seen[e.Type]++
		return nil
	})

	for _, eventType := range AllEventTypes {
		if err := d.Publish(context.Background(), Event{Type: eventType}); err != nil {
			t.Fatal(err)
		}
	}
	if len(seen) != len(AllEventTypes) {
		t.Fatalf("seen = %v", seen)
	}
}
