package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore-service/bookstore/internal/repository"
	"github.com/Astemirdum/bookstore-service/pkg/kafka"
	"github.com/Astemirdum/bookstore-service/pkg/validate"
)

var validator = validate.NewCustomValidator()

type TokenIssuer interface {
	Generate(username, role string) (string, time.Time, error)
}

type Publisher interface {
	PublishBill(ctx context.Context, event kafka.EventBill) error
}

type Config struct {
	BillsDir          string
	LowStockThreshold int
}

type Service struct {
	log       *zap.Logger
	repo      repository.Repository
	stats     repository.StatsRepository
	tokens    TokenIssuer
	publisher Publisher
	receipts  *ReceiptWriter
	lowStock  int
}

func NewService(
	repo repository.Repository,
	stats repository.StatsRepository,
	tokens TokenIssuer,
	publisher Publisher,
	cfg Config,
	log *zap.Logger,
) *Service {
	lowStock := cfg.LowStockThreshold
	if lowStock <= 0 {
		lowStock = 5
	}
	return &Service{
		log:       log.Named("service"),
		repo:      repo,
		stats:     stats,
		tokens:    tokens,
		publisher: publisher,
		receipts:  NewReceiptWriter(cfg.BillsDir),
		lowStock:  lowStock,
	}
}
