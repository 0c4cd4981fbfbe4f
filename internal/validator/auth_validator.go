package validator

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"marketplace/internal/domain/model"
	"marketplace/internal/repository"
	"marketplace/internal/usecase"
)

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,50}$`)
)

type authValidator struct {
	users repository.UserRepository
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository) usecase.AuthValidator {
	return &authValidator{users: users}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, in usecase.RegisterInput) error {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return invalid("username, email and password are required")
	}
	if !usernameRe.MatchString(in.Username) {
		return invalid("username must be 3-50 letters, digits or _.-")
	}
	if !emailRe.MatchString(in.Email) {
		return invalid("invalid email")
	}
	// パスワード最低文字数（8）
	if utf8.RuneCountInString(in.Password) < 8 {
		return invalid("password must be at least 8 characters")
	}
	if !model.Role(in.Role).Valid() {
		return invalid("role must be CUSTOMER or SELLER")
	}
	if model.Role(in.Role) == model.RoleSeller && strings.TrimSpace(in.StoreName) == "" {
		return invalid("store_name required for sellers")
	}

	// email重複チェック（最終的にはunique制約でも弾く）
	_, err := v.users.FindByEmail(ctx, in.Email)
	if err == nil {
		return usecase.NewHTTPError(http.StatusConflict, "email already used")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return invalid("email and password are required")
	}
	if !emailRe.MatchString(email) {
		return invalid("invalid email")
	}
	return nil
}

func invalid(msg string) error {
	return usecase.NewHTTPError(http.StatusBadRequest, msg)
}
