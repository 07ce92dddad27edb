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

var userColumns = []string{"first_name", "last_name", "email", "username", "password", "gender", "role"}

func isUserColumn(column string) bool {
	for _, c := range userColumns {
		if c == column {
			return true
		}
	}
	return false
}

func (r *repository) GetUser(ctx context.Context, username string) (model.User, error) {
	query, args, err := qb.Select(userColumns...).
		From(usersTableName).
		Where(sq.Eq{"username": username}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.User{}, err
	}
	var user model.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, errs.ErrNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

func (r *repository) ListUsers(ctx context.Context) ([]model.User, error) {
	query, args, err := qb.Select(userColumns...).
		From(usersTableName).
		OrderBy("username").
		ToSql()
	if err != nil {
		return nil, err
	}
	users := make([]model.User, 0)
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repository) CreateUser(ctx context.Context, user model.User) error {
	query, args, err := qb.Insert(usersTableName).
		Columns(userColumns...).
		Values(user.FirstName, user.LastName, user.Email, user.Username, user.Password, user.Gender, user.Role).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return errs.ErrAlreadyExists
		}
		r.log.Error("CreateUser", zap.String("q", query), zap.Error(err))
		return err
	}
	return nil
}

func (r *repository) UserExists(ctx context.Context, column, value string) (bool, error) {
	if column != "username" && column != "email" {
		return false, errors.Wrap(errs.ErrUnknownField, column)
	}
	query, args, err := qb.Select("count(*)").
		From(usersTableName).
		Where(sq.Eq{column: value}).
		ToSql()
	if err != nil {
		return false, err
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) UpdateUserField(ctx context.Context, username, column string, value any) error {
	if !isUserColumn(column) {
		return errors.Wrap(errs.ErrUnknownField, column)
	}
	query, args, err := qb.Update(usersTableName).
		Set(column, value).
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return errs.ErrAlreadyExists
		}
		return err
	}
	return mustAffect(res)
}

func (r *repository) DeleteUser(ctx context.Context, username string) error {
	query, args, err := qb.Delete(usersTableName).
		Where(sq.Eq{"username": username}).
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

func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}
