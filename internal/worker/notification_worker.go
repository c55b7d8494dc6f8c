package worker

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/service"
)

// NotificationWorker owns the notification subscriptions and the optional AMQP forwarder.
type NotificationWorker struct {
	publisher *events.AMQPPublisher
	logger    *zap.Logger
}

// StartNotificationWorker subscribes the notification handlers on dispatcher. When an
// AMQP URL is configured every event is also published to the configured exchange.
func StartNotificationWorker(dispatcher events.Dispatcher, cfg config.NotificationConfig, logger *zap.Logger) (*NotificationWorker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &NotificationWorker{logger: logger}

	var forwarder service.EventForwarder
	if cfg.AMQPURL != "" {
		publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, fmt.Errorf("connect amqp: %w", err)
		}
		w.publisher = publisher
		forwarder = publisher
		logger.Info("forwarding ticket events", zap.String("exchange", cfg.AMQPExchange))
	}

	service.NewNotificationService(dispatcher, logger, cfg, forwarder).RegisterHandlers()
	return w, nil
}

// Stop closes the AMQP connection, if any.
func (w *NotificationWorker) Stop() {
	if w == nil || w.publisher == nil {
		return
	}
	if err := w.publisher.Close(); err != nil {
		w.logger.Warn("close amqp publisher", zap.Error(err))
	}
}
