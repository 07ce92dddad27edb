package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore-service/bookstore/internal/errs"
	"github.com/Astemirdum/bookstore-service/bookstore/internal/model"
)

var bookColumns = []string{
	"isbn", "title", "author", "category", "supplier_id", "description",
	"image", "original_price", "selling_price", "quantity",
}

// editable through a single-field update
var bookEditable = map[string]struct{}{
	"title": {}, "author": {}, "category": {}, "description": {}, "image": {},
	"original_price": {}, "selling_price": {}, "quantity": {},
}

func (r *repository) ListBooks(ctx context.Context, filter model.BookFilter) (model.ListBooks, error) {
	where := sq.And{}
	if filter.Category != "" {
		where = append(where, sq.Eq{"category": filter.Category})
	}
	if filter.Title != "" {
		where = append(where, sq.ILike{"title": "%" + filter.Title + "%"})
	}

	countQuery, countArgs, err := qb.Select("count(*)").From(bookTableName).Where(where).ToSql()
	if err != nil {
		return model.ListBooks{}, err
	}
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return model.ListBooks{}, err
	}

	q := qb.Select(bookColumns...).
		From(bookTableName).
		Where(where).
		OrderBy("title", "isbn")
	query, args, err := paginate(q, filter.Page, filter.Size).ToSql()
	if err != nil {
		return model.ListBooks{}, err
	}
	r.log.Debug("ListBooks", zap.String("query", query), zap.Any("args", args))

	books := make([]model.Book, 0)
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return model.ListBooks{}, err
	}
	return model.ListBooks{
		Paging: model.Paging{
			Page:          filter.Page,
			PageSize:      filter.Size,
			TotalElements: total,
		},
		Items: books,
	}, nil
}

func (r *repository) GetBook(ctx context.Context, isbn string) (model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(bookTableName).
		Where(sq.Eq{"isbn": isbn}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return book, nil
}

// CreateBook looks the supplier up by name and email, creating it when
// missing, and inserts the book in the same transaction.
func (r *repository) CreateBook(ctx context.Context, book model.Book, supplier model.Supplier) (model.Book, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Book{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	const upsertSupplier = `
insert into supplier (name, email, phone, address)
values ($1, $2, $3, $4)
on conflict (name, email) do update set name = excluded.name
returning id`
	if err := tx.QueryRowxContext(ctx, upsertSupplier,
		supplier.Name, supplier.Email, supplier.Phone, supplier.Address).Scan(&book.SupplierID); err != nil {
		return model.Book{}, errors.Wrap(err, "supplier")
	}

	query, args, err := qb.Insert(bookTableName).
		Columns(bookColumns...).
		Values(book.ISBN, book.Title, book.Author, book.Category, book.SupplierID, book.Description,
			book.Image, book.OriginalPrice, book.SellingPrice, book.Quantity).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return model.Book{}, errs.ErrAlreadyExists
		}
		r.log.Error("CreateBook", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		return model.Book{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Book{}, err
	}
	return book, nil
}

func (r *repository) UpdateBookField(ctx context.Context, isbn, column string, value any) error {
	if _, ok := bookEditable[column]; !ok {
		return errors.Wrap(errs.ErrUnknownField, column)
	}
	query, args, err := qb.Update(bookTableName).
		Set(column, value).
		Where(sq.Eq{"isbn": isbn}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *repository) DeleteBook(ctx context.Context, isbn string) error {
	query, args, err := qb.Delete(bookTableName).
		Where(sq.Eq{"isbn": isbn}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *repository) Categories(ctx context.Context) ([]string, error) {
	query, args, err := qb.Select("distinct category").
		From(bookTableName).
		OrderBy("category").
		ToSql()
	if err != nil {
		return nil, err
	}
	categories := make([]string, 0)
	if err := r.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) LowStock(ctx context.Context, threshold int) ([]model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(bookTableName).
		Where(sq.Lt{"quantity": threshold}).
		OrderBy("quantity", "title").
		ToSql()
	if err != nil {
		return nil, err
	}
	books := make([]model.Book, 0)
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *repository) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	query, args, err := qb.Select("id", "name", "email", "phone", "address").
		From(supplierTableName).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, err
	}
	suppliers := make([]model.Supplier, 0)
	if err := r.db.SelectContext(ctx, &suppliers, query, args...); err != nil {
		return nil, err
	}
	return suppliers, nil
}
