package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore-service/bookstore/internal/model"
	"github.com/Astemirdum/bookstore-service/pkg/kafka"
)

func (s *Service) RecordSale(ctx context.Context, event kafka.EventBill) error {
	if err := s.stats.RecordSale(ctx, event); err != nil {
		return err
	}
	s.log.Debug("sale recorded", zap.Int64("orderId", event.OrderID))
	return nil
}

func (s *Service) GetSalesStats(ctx context.Context) (model.SalesStatsInfo, error) {
	return s.stats.GetSalesStats(ctx)
}
