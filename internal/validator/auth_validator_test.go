package validator_test

import (
	"context"
	"errors"
	"testing"

	"marketplace/internal/domain/model"
	"marketplace/internal/repository"
	"marketplace/internal/usecase"
	"marketplace/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type userRepoMock struct {
	mock.Mock
	repository.UserRepository
}

func (m *userRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func validRegister() usecase.RegisterInput {
	return usecase.RegisterInput{
		Username: "ann_01",
		Email:    "ann@example.com",
		Password: "password123",
		Role:     "CUSTOMER",
	}
}

func TestValidateRegister(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *usecase.RegisterInput)
		code   usecase.ErrorCode
	}{
		{name: "missing email", mutate: func(in *usecase.RegisterInput) { in.Email = "" }, code: usecase.CodeInvalidInput},
		{name: "bad username", mutate: func(in *usecase.RegisterInput) { in.Username = "a b" }, code: usecase.CodeInvalidInput},
		{name: "bad email", mutate: func(in *usecase.RegisterInput) { in.Email = "ann@" }, code: usecase.CodeInvalidInput},
		{name: "short password", mutate: func(in *usecase.RegisterInput) { in.Password = "1234567" }, code: usecase.CodeInvalidInput},
		{name: "unknown role", mutate: func(in *usecase.RegisterInput) { in.Role = "ADMIN" }, code: usecase.CodeInvalidInput},
		{name: "seller without store", mutate: func(in *usecase.RegisterInput) { in.Role = "SELLER" }, code: usecase.CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validator.NewAuthValidator(new(userRepoMock))
			in := validRegister()
			tt.mutate(&in)
			err := v.ValidateRegister(context.Background(), in)
			assert.True(t, usecase.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestValidateRegister_EmailTaken(t *testing.T) {
	users := new(userRepoMock)
	users.On("FindByEmail", mock.Anything, "ann@example.com").Return(&model.User{ID: 1}, nil)

	err := validator.NewAuthValidator(users).ValidateRegister(context.Background(), validRegister())
	assert.True(t, usecase.HasCode(err, usecase.CodeConflict))
	users.AssertExpectations(t)
}

func TestValidateRegister_OK(t *testing.T) {
	users := new(userRepoMock)
	users.On("FindByEmail", mock.Anything, "ann@example.com").Return(nil, repository.ErrNotFound)

	in := validRegister()
	in.Role = "SELLER"
	in.StoreName = "Ann's"
	require.NoError(t, validator.NewAuthValidator(users).ValidateRegister(context.Background(), in))
}

func TestValidateRegister_RepoErrorPassesThrough(t *testing.T) {
	users := new(userRepoMock)
	boom := errors.New("db down")
	users.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, boom)

	err := validator.NewAuthValidator(users).ValidateRegister(context.Background(), validRegister())
	assert.ErrorIs(t, err, boom)
}

func TestValidateLogin(t *testing.T) {
	v := validator.NewAuthValidator(new(userRepoMock))
	assert.True(t, usecase.HasCode(v.ValidateLogin(context.Background(), "", "x"), usecase.CodeInvalidInput))
	assert.True(t, usecase.HasCode(v.ValidateLogin(context.Background(), "nope", "x"), usecase.CodeInvalidInput))
	assert.NoError(t, v.ValidateLogin(context.Background(), "ann@example.com", "x"))
}
