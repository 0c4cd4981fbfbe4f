package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"marketplace/internal/domain/model"
	"marketplace/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, in RegisterInput) error
	ValidateLogin(ctx context.Context, email string, password string) error
}

type UserDTO struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PhoneNumber  string     `json:"phone_number"`
	ActiveRole   model.Role `json:"active_role"`
	TokenVersion int        `json:"token_version"`
	IsActive     bool       `json:"is_active"`
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PhoneNumber:  u.PhoneNumber,
		ActiveRole:   u.ActiveRole,
		TokenVersion: u.TokenVersion,
		IsActive:     u.IsActive,
	}
}

// Roleが空ならCUSTOMER。選んだroleのプロフィールを同時に作る。
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	PhoneNumber string
	Role        string

	FirstName       string
	LastName        string
	ShippingAddress string
	BillingAddress  string

	StoreName        string
	StoreDescription string
	BusinessLicense  string
}

type LoginOutput struct {
	User  UserDTO           `json:"user"`
	Token JwtAccessTokenDTO `json:"token"`
}

type AuthUsecase struct {
	users     repository.UserRepository
	tx        repository.TransactionManager
	validator AuthValidator
	issuer    *TokenIssuer
	log       *slog.Logger
	cost      int
}

func NewAuthUsecase(
	users repository.UserRepository,
	tx repository.TransactionManager,
	validator AuthValidator,
	issuer *TokenIssuer,
	log *slog.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		tx:        tx,
		validator: validator,
		issuer:    issuer,
		log:       log,
		cost:      bcrypt.DefaultCost,
	}
}

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (UserDTO, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Role == "" {
		in.Role = string(model.RoleCustomer)
	}
	in.Role = strings.ToUpper(strings.TrimSpace(in.Role))

	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, in); err != nil {
		return UserDTO{}, failWith(ctx, u.log, "validate register", "", err)
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.cost)
	if err != nil {
		return UserDTO{}, failWith(ctx, u.log, "hash password", "", err)
	}

	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(pwHash),
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		ActiveRole:   model.Role(in.Role),
		IsActive:     true,
	}

	err = u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		if err := r.Users().Create(ctx, user); err != nil {
			return err
		}
		if user.ActiveRole == model.RoleSeller {
			return r.Profiles().CreateSeller(ctx, &model.SellerProfile{
				UserID:           user.ID,
				StoreName:        strings.TrimSpace(in.StoreName),
				StoreDescription: in.StoreDescription,
				BusinessLicense:  strings.TrimSpace(in.BusinessLicense),
			})
		}
		return r.Profiles().CreateCustomer(ctx, &model.CustomerProfile{
			UserID:          user.ID,
			FirstName:       strings.TrimSpace(in.FirstName),
			LastName:        strings.TrimSpace(in.LastName),
			ShippingAddress: strings.TrimSpace(in.ShippingAddress),
			BillingAddress:  strings.TrimSpace(in.BillingAddress),
		})
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return UserDTO{}, errConflict("username or email already used")
	}
	if err != nil {
		return UserDTO{}, failWith(ctx, u.log, "register", "", err)
	}

	return toUserDTO(user), nil
}

func (u *AuthUsecase) Login(ctx context.Context, email string, password string) (LoginOutput, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := u.validator.ValidateLogin(ctx, email, password); err != nil {
		return LoginOutput{}, failWith(ctx, u.log, "validate login", "", err)
	}

	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return LoginOutput{}, errUnauthorized()
	}
	if err != nil {
		return LoginOutput{}, failWith(ctx, u.log, "find user", "", err)
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return LoginOutput{}, errForbidden("user is inactive")
	}

	//パスワード照合（bcrypt）
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginOutput{}, errUnauthorized()
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		u.log.WarnContext(ctx, "failed to update last login", slog.Int64("user_id", user.ID), slog.String("error", err.Error()))
	}

	token, err := u.issuer.Issue(user)
	if err != nil {
		return LoginOutput{}, failWith(ctx, u.log, "issue token", "", err)
	}
	return LoginOutput{User: toUserDTO(user), Token: token}, nil
}
