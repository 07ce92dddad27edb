package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore-service/bookstore/internal/errs"
	"github.com/Astemirdum/bookstore-service/bookstore/internal/model"
)

var genders = map[string]struct{}{"male": {}, "female": {}, "other": {}}

func parseGender(g string) (string, error) {
	g = strings.ToLower(strings.TrimSpace(g))
	if _, ok := genders[g]; !ok {
		return "", errs.ErrInvalidGender
	}
	return g, nil
}

var userFields = map[string]string{
	"firstName": "first_name",
	"lastName":  "last_name",
	"email":     "email",
	"username":  "username",
	"password":  "password",
	"gender":    "gender",
	"role":      "role",
}

func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *Service) AddUser(ctx context.Context, req model.CreateUserRequest) (model.User, error) {
	if err := validator.Validate(req); err != nil {
		return model.User{}, fmt.Errorf("%w: %s", errs.ErrInvalidValue, err)
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return model.User{}, err
	}
	gender, err := parseGender(req.Gender)
	if err != nil {
		return model.User{}, err
	}
	if err := s.checkUnique(ctx, req.Username, req.Email); err != nil {
		return model.User{}, err
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return model.User{}, err
	}

	user := model.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Username:  req.Username,
		Password:  hash,
		Gender:    gender,
		Role:      role,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return model.User{}, errs.ErrUsernameExists
		}
		return model.User{}, err
	}
	s.log.Info("user added", zap.String("username", user.Username), zap.String("role", string(role)))
	return user, nil
}

// checkUnique reports a taken username before a taken email. Empty values are skipped.
func (s *Service) checkUnique(ctx context.Context, username, email string) error {
	if username != "" {
		exists, err := s.repo.UserExists(ctx, "username", username)
		if err != nil {
			return err
		}
		if exists {
			return errs.ErrUsernameExists
		}
	}
	if email != "" {
		exists, err := s.repo.UserExists(ctx, "email", email)
		if err != nil {
			return err
		}
		if exists {
			return errs.ErrEmailExists
		}
	}
	return nil
}

func (s *Service) UpdateUserField(ctx context.Context, username, field, value string) error {
	column, ok := userFields[field]
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrUnknownField, field)
	}

	var v any = value
	switch field {
	case "firstName", "lastName":
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s is required", errs.ErrInvalidValue, field)
		}
	case "email":
		if err := validator.Var(value, "required,email"); err != nil {
			return fmt.Errorf("%w: email", errs.ErrInvalidValue)
		}
		current, err := s.repo.GetUser(ctx, username)
		if err != nil {
			return err
		}
		if current.Email == value {
			return nil
		}
		if err := s.checkUnique(ctx, "", value); err != nil {
			return err
		}
	case "username":
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: username is required", errs.ErrInvalidValue)
		}
		if value != username {
			if err := s.checkUnique(ctx, value, ""); err != nil {
				return err
			}
		}
	case "password":
		if value == "" {
			return errs.ErrEmptyPassword
		}
		hash, err := hashPassword(value)
		if err != nil {
			return err
		}
		v = hash
	case "gender":
		gender, err := parseGender(value)
		if err != nil {
			return err
		}
		v = gender
	case "role":
		role, err := model.ParseRole(value)
		if err != nil {
			return err
		}
		v = role
	}

	if err := s.repo.UpdateUserField(ctx, username, column, v); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			if field == "email" {
				return errs.ErrEmailExists
			}
			return errs.ErrUsernameExists
		}
		return err
	}
	return nil
}

func (s *Service) RemoveUser(ctx context.Context, actor, username string) error {
	if actor == username {
		return errs.ErrSelfRemoval
	}
	return s.repo.DeleteUser(ctx, username)
}
