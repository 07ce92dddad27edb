package handler

import (
	"context"

	"github.com/Astemirdum/bookstore-service/bookstore/internal/model"
	"github.com/Astemirdum/bookstore-service/bookstore/internal/service"
	"github.com/Astemirdum/bookstore-service/pkg/kafka"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type BookstoreService interface {
	Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error)
	GetUser(ctx context.Context, username string) (model.User, error)
	Dashboard(ctx context.Context, username string, role model.Role) (model.Dashboard, error)

	ListBooks(ctx context.Context, filter model.BookFilter) (model.ListBooks, error)
	GetBook(ctx context.Context, isbn string) (model.Book, error)
	AddBook(ctx context.Context, req model.AddBookRequest) (model.Book, error)
	UpdateBookField(ctx context.Context, isbn, field, value string) error
	DeleteBook(ctx context.Context, isbn string) error
	Categories(ctx context.Context) ([]string, error)
	LowStock(ctx context.Context) ([]model.Book, error)
	ListSuppliers(ctx context.Context) ([]model.Supplier, error)

	CreateBill(ctx context.Context, username string, req model.CreateBillRequest) (model.Bill, error)
	GetBill(ctx context.Context, username string, role model.Role, orderID int64) (model.Bill, error)
	ListBills(ctx context.Context, username string, role model.Role, page, size int) (model.ListBills, error)

	RecordSale(ctx context.Context, event kafka.EventBill) error
	GetSalesStats(ctx context.Context) (model.SalesStatsInfo, error)

	ListUsers(ctx context.Context) ([]model.User, error)
	AddUser(ctx context.Context, req model.CreateUserRequest) (model.User, error)
	UpdateUserField(ctx context.Context, username, field, value string) error
	RemoveUser(ctx context.Context, actor, username string) error
}

var _ BookstoreService = (*service.Service)(nil)
