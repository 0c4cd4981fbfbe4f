package repository

import (
	"errors"
	"fmt"
	"testing"

	repo "marketplace/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	other := errors.New("connection reset")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "nil", in: nil, want: nil},
		{name: "record not found", in: gorm.ErrRecordNotFound, want: repo.ErrNotFound},
		{name: "wrapped record not found", in: fmt.Errorf("first: %w", gorm.ErrRecordNotFound), want: repo.ErrNotFound},
		{name: "gorm duplicated key", in: gorm.ErrDuplicatedKey, want: repo.ErrDuplicate},
		{name: "serialization failure", in: &pgconn.PgError{Code: "40001"}, want: repo.ErrConflict},
		{name: "deadlock", in: &pgconn.PgError{Code: "40P01"}, want: repo.ErrConflict},
		{name: "lock not available", in: &pgconn.PgError{Code: "55P03"}, want: repo.ErrConflict},
		{name: "wrapped serialization failure", in: fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"}), want: repo.ErrConflict},
		{name: "unique violation", in: &pgconn.PgError{Code: "23505", ConstraintName: "cart_items_cart_id_product_id_key"}, want: repo.ErrDuplicate},
		{name: "check violation passes through", in: &pgconn.PgError{Code: "23514"}, want: nil},
		{name: "unknown passes through", in: other, want: other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.in)
			switch {
			case tt.in == nil:
				assert.NoError(t, got)
			case tt.want == nil:
				//番兵には寄せない
				assert.Same(t, tt.in, got)
				assert.False(t, errors.Is(got, repo.ErrConflict))
				assert.False(t, errors.Is(got, repo.ErrDuplicate))
			default:
				assert.ErrorIs(t, got, tt.want)
			}
		})
	}
}

func TestMapError_KeepsConstraintName(t *testing.T) {
	err := mapError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	assert.ErrorIs(t, err, repo.ErrDuplicate)
	assert.Contains(t, err.Error(), "users_email_key")
}
