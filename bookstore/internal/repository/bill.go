package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore-service/bookstore/internal/errs"
	"github.com/Astemirdum/bookstore-service/bookstore/internal/model"
)

var billColumns = []string{"order_id", "bill_uid", "created_at", "username", "total_amount"}

// CreateBill records a sale atomically: every book row is locked, the total is
// computed from current selling prices and handed to verify, then the bill
// header, the sold-book rows and the stock decrements are written. Stock is
// never allowed to go below zero.
func (r *repository) CreateBill(ctx context.Context, username string, items []model.BillItemRequest, verify func(total float64) error) (model.Bill, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Bill{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	sold := make([]model.SoldBook, 0, len(items))
	var total float64
	for _, item := range items {
		query, args, err := qb.Select("isbn", "title", "selling_price", "quantity").
			From(bookTableName).
			Where(sq.Eq{"isbn": item.ISBN}).
			Suffix("for update").
			ToSql()
		if err != nil {
			return model.Bill{}, err
		}
		var book model.Book
		if err := tx.GetContext(ctx, &book, query, args...); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return model.Bill{}, fmt.Errorf("book %s: %w", item.ISBN, errs.ErrNotFound)
			}
			return model.Bill{}, err
		}
		if book.Quantity < item.Quantity {
			return model.Bill{}, fmt.Errorf("%w for %s", errs.ErrInsufficientStock, item.ISBN)
		}
		line := model.SoldBook{
			ISBN:         book.ISBN,
			Title:        book.Title,
			UnitPrice:    book.SellingPrice,
			SoldQuantity: item.Quantity,
		}
		total += line.LineTotal()
		sold = append(sold, line)
	}
	total = math.Round(total*100) / 100

	if verify != nil {
		if err := verify(total); err != nil {
			return model.Bill{}, err
		}
	}

	bill := model.Bill{
		BillUid:     uuid.NewString(),
		Username:    username,
		TotalAmount: total,
	}
	query, args, err := qb.Insert(billTableName).
		Columns("bill_uid", "username", "total_amount").
		Values(bill.BillUid, bill.Username, bill.TotalAmount).
		Suffix("returning order_id, created_at").
		ToSql()
	if err != nil {
		return model.Bill{}, err
	}
	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&bill.OrderID, &bill.CreatedAt); err != nil {
		r.log.Error("CreateBill", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		return model.Bill{}, errors.Wrap(err, "insert bill")
	}

	const decrement = `update book set quantity = quantity - $1 where isbn = $2 and quantity >= $1`
	for i := range sold {
		sold[i].OrderID = bill.OrderID
		query, args, err := qb.Insert(soldBookTableName).
			Columns("order_id", "isbn", "title", "unit_price", "sold_quantity").
			Values(sold[i].OrderID, sold[i].ISBN, sold[i].Title, sold[i].UnitPrice, sold[i].SoldQuantity).
			ToSql()
		if err != nil {
			return model.Bill{}, err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return model.Bill{}, errors.Wrap(err, "insert sold book")
		}

		res, err := tx.ExecContext(ctx, decrement, sold[i].SoldQuantity, sold[i].ISBN)
		if err != nil {
			return model.Bill{}, errors.Wrap(err, "decrement stock")
		}
		if n, err := res.RowsAffected(); err != nil {
			return model.Bill{}, err
		} else if n == 0 {
			return model.Bill{}, fmt.Errorf("%w for %s", errs.ErrInsufficientStock, sold[i].ISBN)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Bill{}, err
	}
	bill.Items = sold
	return bill, nil
}

func (r *repository) GetBill(ctx context.Context, orderID int64) (model.Bill, error) {
	query, args, err := qb.Select(billColumns...).
		From(billTableName).
		Where(sq.Eq{"order_id": orderID}).
		ToSql()
	if err != nil {
		return model.Bill{}, err
	}
	var bill model.Bill
	if err := r.db.GetContext(ctx, &bill, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Bill{}, errs.ErrNotFound
		}
		return model.Bill{}, err
	}

	query, args, err = qb.Select("order_id", "isbn", "title", "unit_price", "sold_quantity").
		From(soldBookTableName).
		Where(sq.Eq{"order_id": orderID}).
		OrderBy("isbn").
		ToSql()
	if err != nil {
		return model.Bill{}, err
	}
	bill.Items = make([]model.SoldBook, 0)
	if err := r.db.SelectContext(ctx, &bill.Items, query, args...); err != nil {
		return model.Bill{}, err
	}
	return bill, nil
}

// ListBills returns bill headers, newest first. An empty username lists all.
func (r *repository) ListBills(ctx context.Context, username string, page, size int) (model.ListBills, error) {
	where := sq.And{}
	if username != "" {
		where = append(where, sq.Eq{"username": username})
	}
	countQuery, countArgs, err := qb.Select("count(*)").From(billTableName).Where(where).ToSql()
	if err != nil {
		return model.ListBills{}, err
	}
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return model.ListBills{}, err
	}

	q := qb.Select(billColumns...).
		From(billTableName).
		Where(where).
		OrderBy("order_id desc")
	query, args, err := paginate(q, page, size).ToSql()
	if err != nil {
		return model.ListBills{}, err
	}
	bills := make([]model.Bill, 0)
	if err := r.db.SelectContext(ctx, &bills, query, args...); err != nil {
		return model.ListBills{}, err
	}
	return model.ListBills{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: total,
		},
		Items: bills,
	}, nil
}
