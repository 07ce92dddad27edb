package kafka

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/Astemirdum/bookstore-service/pkg/circuit_breaker"
	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// Fallback handles an event in-process when it cannot be sent to the broker.
type Fallback func(ctx context.Context, event EventBill) error

type Enqueuer struct {
	producer sarama.SyncProducer
	cb       circuit_breaker.CircuitBreaker
	fallback Fallback
	log      *zap.Logger
}

// NewEnqueuer with a nil producer sends every event straight to fallback.
func NewEnqueuer(producer sarama.SyncProducer, cb circuit_breaker.CircuitBreaker, fallback Fallback, log *zap.Logger) *Enqueuer {
	return &Enqueuer{
		producer: producer,
		cb:       cb,
		fallback: fallback,
		log:      log.Named("enqueuer"),
	}
}

func (q *Enqueuer) PublishBill(ctx context.Context, event EventBill) error {
	if q.producer == nil {
		return q.fallback(ctx, event)
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: BillsTopic,
		Key:   sarama.StringEncoder(strconv.FormatInt(event.OrderID, 10)),
		Value: sarama.ByteEncoder(data),
	}
	err = q.cb.Call(func() error {
		_, _, err := q.producer.SendMessage(msg)
		return err
	})
	if err != nil {
		q.log.Warn("producer.SendMessage, recording in-process",
			zap.Int64("orderId", event.OrderID), zap.Error(err))
		return q.fallback(ctx, event)
	}
	return nil
}

func (q *Enqueuer) Close() error {
	if q.producer == nil {
		return nil
	}
	return q.producer.Close()
}
