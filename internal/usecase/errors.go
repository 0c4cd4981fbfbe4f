package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	repo "marketplace/internal/repository"

	"github.com/shopspring/decimal"
)

type ErrorCode string

const (
	CodeInvalidInput      ErrorCode = "INVALID_INPUT"
	CodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	CodeForbidden         ErrorCode = "FORBIDDEN"
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeInsufficientStock ErrorCode = "INSUFFICIENT_STOCK"
	CodeTotalMismatch     ErrorCode = "TOTAL_MISMATCH"
	CodeEmptyCart         ErrorCode = "EMPTY_CART"
	CodeConflict          ErrorCode = "CONFLICT"
	CodeInternal          ErrorCode = "INTERNAL"
)

// handlerでそのままレスポンスにする
type HTTPError struct {
	Status  int
	Code    ErrorCode
	Message string
	Details map[string]any
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// statusからcodeを決める
func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Code:    codeForStatus(status),
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

func HasCode(err error, code ErrorCode) bool {
	he, ok := AsHTTPError(err)
	return ok && he.Code == code
}

func codeForStatus(status int) ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return CodeInvalidInput
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	default:
		return CodeInternal
	}
}

func errInvalidInput(msg string) error {
	return NewHTTPError(http.StatusBadRequest, msg)
}

func errUnauthorized() error {
	return NewHTTPError(http.StatusUnauthorized, "unauthorized")
}

func errForbidden(msg string) error {
	return NewHTTPError(http.StatusForbidden, msg)
}

func errNotFound(msg string) error {
	return NewHTTPError(http.StatusNotFound, msg)
}

func errConflict(msg string) error {
	return NewHTTPError(http.StatusConflict, msg)
}

func errInternal() error {
	return NewHTTPError(http.StatusInternalServerError, "internal error")
}

func errEmptyCart() error {
	return &HTTPError{Status: http.StatusBadRequest, Code: CodeEmptyCart, Message: "cart is empty"}
}

func errInsufficientStock(details map[string]any) error {
	return &HTTPError{
		Status:  http.StatusBadRequest,
		Code:    CodeInsufficientStock,
		Message: "insufficient stock",
		Details: details,
	}
}

func errTotalMismatch(computed, declared decimal.Decimal) error {
	return &HTTPError{
		Status:  http.StatusBadRequest,
		Code:    CodeTotalMismatch,
		Message: "total amount mismatch",
		Details: map[string]any{
			"computed": computed.StringFixed(2),
			"declared": declared.StringFixed(2),
		},
	}
}

func productNotFound(productID int64) error {
	return &HTTPError{
		Status:  http.StatusNotFound,
		Code:    CodeNotFound,
		Message: "product not found",
		Details: map[string]any{"product_id": productID},
	}
}

// repositoryの番兵エラーをHTTPErrorに変換する。HTTPErrorはそのまま。
func translateRepoError(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return errNotFound(notFoundMsg)
	case errors.Is(err, repo.ErrConflict):
		return errConflict("concurrent update, please retry")
	case errors.Is(err, repo.ErrDuplicate):
		return errConflict("already exists")
	}
	return errInternal()
}

// translateRepoErrorに加えて、500になるものはログに残す
func failWith(ctx context.Context, log *slog.Logger, op string, notFoundMsg string, err error) error {
	out := translateRepoError(err, notFoundMsg)
	if HasCode(out, CodeInternal) {
		log.ErrorContext(ctx, op+" failed", slog.String("error", err.Error()))
	}
	return out
}
