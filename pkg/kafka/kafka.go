package kafka

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

const (
	BillsTopic         = "bookstore-bills"
	StatsConsumerGroup = "bookstore-stats"
)

type Config struct {
	Addrs []string `yaml:"addrs" envconfig:"KAFKA_ADDRS"`
}

func (c Config) Enabled() bool {
	return len(c.Addrs) > 0
}

type EventBill struct {
	OrderID   int64           `json:"orderId"`
	BillUid   string          `json:"billUid"`
	Timestamp time.Time       `json:"timestamp"`
	UserName  string          `json:"username"`
	Amount    float64         `json:"amount"`
	Items     []EventBillItem `json:"items"`
}

type EventBillItem struct {
	ISBN     string  `json:"isbn"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true
	defaultCfg.Producer.Retry.Max = 3

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}

func NewConsumer(cfg Config, group string) (sarama.ConsumerGroup, error) {
	defaultCfg := sarama.NewConfig()
	defaultCfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	defaultCfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}

	return sarama.NewConsumerGroup(cfg.Addrs, group, defaultCfg)
}

// Consume blocks until ctx is done, rejoining the group after every rebalance.
func Consume(ctx context.Context, group sarama.ConsumerGroup, handler sarama.ConsumerGroupHandler, log *zap.Logger, topics ...string) {
	for {
		if err := group.Consume(ctx, topics, handler); err != nil {
			log.Error("group.Consume", zap.Error(err))
		}
		if ctx.Err() != nil {
			if err := group.Close(); err != nil {
				log.Error("group.Close", zap.Error(err))
			}
			return
		}
	}
}
