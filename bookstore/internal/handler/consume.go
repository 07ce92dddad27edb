package handler

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore-service/pkg/kafka"
)

type recordSale func(ctx context.Context, event kafka.EventBill) error

// Consumer feeds bill events from the bills topic into the sales stats.
type Consumer struct {
	recordSale recordSale
	log        *zap.Logger
}

func NewConsumer(recordSale recordSale, log *zap.Logger) *Consumer {
	return &Consumer{
		recordSale: recordSale,
		log:        log.Named("consumer"),
	}
}

func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				consumer.log.Warn("message channel was closed")
				return nil
			}
			var event kafka.EventBill
			if err := json.Unmarshal(message.Value, &event); err != nil {
				consumer.log.Error("json.Unmarshal", zap.Error(err))
				session.MarkMessage(message, "")
				continue
			}
			if err := consumer.recordSale(session.Context(), event); err != nil {
				consumer.log.Error("consumer.recordSale", zap.Int64("orderId", event.OrderID), zap.Error(err))
				continue
			}

			consumer.log.Debug("message claimed",
				zap.Int64("orderId", event.OrderID),
				zap.Time("timestamp", message.Timestamp),
				zap.String("topic", message.Topic))
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
