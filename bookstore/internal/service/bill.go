package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore-service/bookstore/internal/errs"
	"github.com/Astemirdum/bookstore-service/bookstore/internal/model"
	"github.com/Astemirdum/bookstore-service/pkg/kafka"
)

const amountTolerance = 0.005

// normalizeItems merges repeated ISBNs and orders lines by ISBN so that
// concurrent bills lock book rows in the same order.
func normalizeItems(items []model.BillItemRequest) ([]model.BillItemRequest, error) {
	merged := make(map[string]int, len(items))
	for _, item := range items {
		isbn := strings.TrimSpace(item.ISBN)
		if isbn == "" {
			return nil, fmt.Errorf("%w: isbn is required", errs.ErrInvalidValue)
		}
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: %s", errs.ErrInvalidQuantity, isbn)
		}
		merged[isbn] += item.Quantity
	}
	out := make([]model.BillItemRequest, 0, len(merged))
	for isbn, qty := range merged {
		out = append(out, model.BillItemRequest{ISBN: isbn, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ISBN < out[j].ISBN })
	return out, nil
}

func (s *Service) CreateBill(ctx context.Context, username string, req model.CreateBillRequest) (model.Bill, error) {
	if len(req.Items) == 0 {
		return model.Bill{}, errs.ErrEmptyBill
	}
	if req.TotalAmount != nil && *req.TotalAmount < 0 {
		return model.Bill{}, errs.ErrNegativeAmount
	}
	items, err := normalizeItems(req.Items)
	if err != nil {
		return model.Bill{}, err
	}

	verify := func(total float64) error {
		if req.TotalAmount == nil {
			return nil
		}
		if math.Abs(*req.TotalAmount-total) > amountTolerance {
			return fmt.Errorf("%w: expected %.2f, got %.2f", errs.ErrAmountMismatch, total, *req.TotalAmount)
		}
		return nil
	}
	bill, err := s.repo.CreateBill(ctx, username, items, verify)
	if err != nil {
		return model.Bill{}, err
	}
	log := s.log.With(zap.Int64("orderId", bill.OrderID), zap.String("username", username))
	log.Info("bill created", zap.Float64("total", bill.TotalAmount))

	if path, err := s.receipts.Write(bill); err != nil {
		log.Error("receipts.Write", zap.Error(err))
	} else {
		bill.ReceiptPath = path
	}

	if err := s.publisher.PublishBill(ctx, billEvent(bill)); err != nil {
		log.Error("publisher.PublishBill", zap.Error(err))
	}
	return bill, nil
}

func billEvent(bill model.Bill) kafka.EventBill {
	event := kafka.EventBill{
		OrderID:   bill.OrderID,
		BillUid:   bill.BillUid,
		Timestamp: bill.CreatedAt,
		UserName:  bill.Username,
		Amount:    bill.TotalAmount,
		Items:     make([]kafka.EventBillItem, 0, len(bill.Items)),
	}
	for _, item := range bill.Items {
		event.Items = append(event.Items, kafka.EventBillItem{
			ISBN:     item.ISBN,
			Quantity: item.SoldQuantity,
			Price:    item.UnitPrice,
		})
	}
	return event
}

// GetBill hides other users' bills from non-privileged roles behind ErrNotFound.
func (s *Service) GetBill(ctx context.Context, username string, role model.Role, orderID int64) (model.Bill, error) {
	bill, err := s.repo.GetBill(ctx, orderID)
	if err != nil {
		return model.Bill{}, err
	}
	if !role.Privileged() && bill.Username != username {
		return model.Bill{}, errs.ErrNotFound
	}
	return bill, nil
}

func (s *Service) ListBills(ctx context.Context, username string, role model.Role, page, size int) (model.ListBills, error) {
	owner := username
	if role.Privileged() {
		owner = ""
	}
	return s.repo.ListBills(ctx, owner, page, size)
}
