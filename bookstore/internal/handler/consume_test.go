package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore-service/bookstore/internal/handler"
	"github.com/Astemirdum/bookstore-service/pkg/kafka"
)

type session struct {
	sarama.ConsumerGroupSession
	ctx    context.Context
	marked []int64
}

func (s *session) Context() context.Context { return s.ctx }

func (s *session) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg.Offset)
}

type claim struct {
	sarama.ConsumerGroupClaim
	messages chan *sarama.ConsumerMessage
}

func (c claim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func TestConsumer_ConsumeClaim(t *testing.T) {
	t.Parallel()
	good, err := json.Marshal(kafka.EventBill{OrderID: 1, UserName: "alice"})
	require.NoError(t, err)
	failing, err := json.Marshal(kafka.EventBill{OrderID: 2, UserName: "bob"})
	require.NoError(t, err)

	var recorded []int64
	consumer := handler.NewConsumer(func(_ context.Context, event kafka.EventBill) error {
		if event.OrderID == 2 {
			return errors.New("db down")
		}
		recorded = append(recorded, event.OrderID)
		return nil
	}, zap.NewNop())

	messages := make(chan *sarama.ConsumerMessage, 3)
	messages <- &sarama.ConsumerMessage{Topic: kafka.BillsTopic, Offset: 10, Value: good}
	messages <- &sarama.ConsumerMessage{Topic: kafka.BillsTopic, Offset: 11, Value: []byte("{broken")}
	messages <- &sarama.ConsumerMessage{Topic: kafka.BillsTopic, Offset: 12, Value: failing}
	close(messages)

	sess := &session{ctx: context.Background()}
	require.NoError(t, consumer.Setup(sess))
	require.NoError(t, consumer.ConsumeClaim(sess, claim{messages: messages}))
	require.NoError(t, consumer.Cleanup(sess))

	require.Equal(t, []int64{1}, recorded)
	// undecodable messages are skipped, failed ones stay unmarked for redelivery
	require.Equal(t, []int64{10, 11}, sess.marked)
}
