package worker

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/events"
)

func TestStartNotificationWorker_LogsEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()

	w, err := StartNotificationWorker(dispatcher, config.NotificationConfig{EmailFrom: "desk@example.com"}, zap.New(core))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	err = dispatcher.Publish(context.Background(), events.Event{
		ID:       "e-1",
		Type:     events.EventTicketDeleted,
		TicketID: "t-1",
		TenantID: "acme",
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if logs.FilterMessage("TicketDeleted").Len() != 1 {
		t.Errorf("logged %v", logs.All())
	}
}

func TestNotificationWorker_StopWithoutPublisher(t *testing.T) {
	var w *NotificationWorker
	w.Stop()
	(&NotificationWorker{logger: zap.NewNop()}).Stop()
}
