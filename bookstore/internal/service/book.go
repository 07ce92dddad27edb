package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/bookstore-service/bookstore/internal/errs"
	"github.com/Astemirdum/bookstore-service/bookstore/internal/model"
)

type fieldKind uint8

const (
	textField fieldKind = iota
	requiredTextField
	priceField
	quantityField
)

type bookField struct {
	column string
	kind   fieldKind
}

var bookFields = map[string]bookField{
	"title":         {column: "title", kind: requiredTextField},
	"author":        {column: "author", kind: requiredTextField},
	"category":      {column: "category", kind: requiredTextField},
	"description":   {column: "description", kind: textField},
	"image":         {column: "image", kind: textField},
	"originalPrice": {column: "original_price", kind: priceField},
	"sellingPrice":  {column: "selling_price", kind: priceField},
	"quantity":      {column: "quantity", kind: quantityField},
}

func (f bookField) parse(name, value string) (any, error) {
	switch f.kind {
	case requiredTextField:
		if strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("%w: %s is required", errs.ErrInvalidValue, name)
		}
	case priceField:
		price, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || price < 0 {
			return nil, fmt.Errorf("%w: %s must be a non-negative number", errs.ErrInvalidValue, name)
		}
		return price, nil
	case quantityField:
		qty, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || qty < 0 {
			return nil, fmt.Errorf("%w: %s must be a non-negative integer", errs.ErrInvalidValue, name)
		}
		return qty, nil
	}
	return value, nil
}

func (s *Service) ListBooks(ctx context.Context, filter model.BookFilter) (model.ListBooks, error) {
	return s.repo.ListBooks(ctx, filter)
}

func (s *Service) GetBook(ctx context.Context, isbn string) (model.Book, error) {
	return s.repo.GetBook(ctx, isbn)
}

func (s *Service) AddBook(ctx context.Context, req model.AddBookRequest) (model.Book, error) {
	book, err := s.repo.CreateBook(ctx, req.Book(), req.Supplier.Supplier())
	if err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return model.Book{}, errs.ErrBookExists
		}
		return model.Book{}, err
	}
	s.log.Info("book added", zap.String("isbn", book.ISBN), zap.Int64("supplierId", book.SupplierID))
	return book, nil
}

func (s *Service) UpdateBookField(ctx context.Context, isbn, field, value string) error {
	f, ok := bookFields[field]
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrUnknownField, field)
	}
	v, err := f.parse(field, value)
	if err != nil {
		return err
	}
	return s.repo.UpdateBookField(ctx, isbn, f.column, v)
}

func (s *Service) DeleteBook(ctx context.Context, isbn string) error {
	return s.repo.DeleteBook(ctx, isbn)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *Service) LowStock(ctx context.Context) ([]model.Book, error) {
	return s.repo.LowStock(ctx, s.lowStock)
}

func (s *Service) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

func (s *Service) Dashboard(ctx context.Context, username string, role model.Role) (model.Dashboard, error) {
	d := model.Dashboard{
		Username:  username,
		Role:      role,
		Dashboard: role.Dashboard(),
	}

	gg, ctx := errgroup.WithContext(ctx)
	gg.Go(func() error {
		categories, err := s.repo.Categories(ctx)
		d.Categories = categories
		return err
	})
	gg.Go(func() error {
		books, err := s.repo.LowStock(ctx, s.lowStock)
		d.LowStock = books
		return err
	})
	gg.Go(func() error {
		books, err := s.repo.ListBooks(ctx, model.BookFilter{Page: 1, Size: 1})
		d.BooksTotal = books.TotalElements
		return err
	})
	if err := gg.Wait(); err != nil {
		return model.Dashboard{}, err
	}
	return d, nil
}
