package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore-service/bookstore/internal/model"
	"github.com/Astemirdum/bookstore-service/pkg/kafka"
)

//go:generate go run github.com/golang/mock/mockgen -source=repository.go -destination=mocks/mock.go

type Repository interface {
	GetUser(ctx context.Context, username string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, user model.User) error
	UserExists(ctx context.Context, column, value string) (bool, error)
	UpdateUserField(ctx context.Context, username, column string, value any) error
	DeleteUser(ctx context.Context, username string) error

	ListBooks(ctx context.Context, filter model.BookFilter) (model.ListBooks, error)
	GetBook(ctx context.Context, isbn string) (model.Book, error)
	CreateBook(ctx context.Context, book model.Book, supplier model.Supplier) (model.Book, error)
	UpdateBookField(ctx context.Context, isbn, column string, value any) error
	DeleteBook(ctx context.Context, isbn string) error
	Categories(ctx context.Context) ([]string, error)
	LowStock(ctx context.Context, threshold int) ([]model.Book, error)
	ListSuppliers(ctx context.Context) ([]model.Supplier, error)

	CreateBill(ctx context.Context, username string, items []model.BillItemRequest, verify func(total float64) error) (model.Bill, error)
	GetBill(ctx context.Context, orderID int64) (model.Bill, error)
	ListBills(ctx context.Context, username string, page, size int) (model.ListBills, error)
}

type StatsRepository interface {
	RecordSale(ctx context.Context, event kafka.EventBill) error
	GetSalesStats(ctx context.Context) (model.SalesStatsInfo, error)
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	usersTableName    = `users`
	bookTableName     = `book`
	supplierTableName = `supplier`
	billTableName     = `bill`
	soldBookTableName = `sold_book_type`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func paginate(q sq.SelectBuilder, page, size int) sq.SelectBuilder {
	if page > 0 && size > 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}
	return q
}
