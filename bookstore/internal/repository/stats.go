package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore-service/bookstore/internal/model"
	"github.com/Astemirdum/bookstore-service/pkg/kafka"
)

type statsRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewStatsRepository(db *pgxpool.Pool, log *zap.Logger) *statsRepository {
	return &statsRepository{
		db:  db,
		log: log.Named("stats-repo"),
	}
}

// RecordSale skips rows already recorded for the same order and isbn.
func (r *statsRepository) RecordSale(ctx context.Context, event kafka.EventBill) error {
	const q = `insert into sales_event (timestamp, username, order_id, isbn, quantity, amount)
	values (@timestamp, @username, @order_id, @isbn, @quantity, @amount)
	on conflict (order_id, isbn) do nothing`

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for _, item := range event.Items {
			args := pgx.NamedArgs{
				"timestamp": event.Timestamp,
				"username":  event.UserName,
				"order_id":  event.OrderID,
				"isbn":      item.ISBN,
				"quantity":  item.Quantity,
				"amount":    item.Price * float64(item.Quantity),
			}
			if _, err := tx.Exec(ctx, q, args); err != nil {
				return fmt.Errorf("sales_event insert: %w", err)
			}
		}
		return nil
	})
}

func (r *statsRepository) GetSalesStats(ctx context.Context) (model.SalesStatsInfo, error) {
	const q = `
	select username,
	       count(distinct order_id)::int    as bills,
	       coalesce(sum(quantity), 0)::int  as books_sold,
	       coalesce(sum(amount), 0)::float8 as revenue,
	       max(timestamp)                   as last_sale_at
	from sales_event
	group by username
	order by username
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return model.SalesStatsInfo{}, err
	}
	defer rows.Close()
	stats, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.SalesStats])
	if err != nil {
		return model.SalesStatsInfo{}, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	return model.SalesStatsInfo{Data: stats}, nil
}
