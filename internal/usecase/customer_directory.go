package usecase

import (
	"context"
	"errors"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

// JWTのユーザーIDから解決した、操作中の利用者
type ActingCustomer struct {
	UserID     int64
	Role       model.Role
	CustomerID int64 // customer_profiles.id。無ければ0
	SellerID   int64 // seller_profiles.id。無ければ0
}

func (a ActingCustomer) IsCustomer() bool { return a.CustomerID > 0 }
func (a ActingCustomer) IsSeller() bool   { return a.SellerID > 0 }

func (a ActingCustomer) requireCustomer() error {
	if !a.IsCustomer() {
		return errForbidden("customer profile required")
	}
	return nil
}

func (a ActingCustomer) requireSeller() error {
	if !a.IsSeller() {
		return errForbidden("seller profile required")
	}
	return nil
}

type CustomerDirectory struct {
	users    repo.UserRepository
	profiles repo.ProfileRepository
}

func NewCustomerDirectory(users repo.UserRepository, profiles repo.ProfileRepository) *CustomerDirectory {
	return &CustomerDirectory{users: users, profiles: profiles}
}

// 未ログイン・存在しない・無効ユーザーはUnauthorized
func (d *CustomerDirectory) Resolve(ctx context.Context, userID int64) (ActingCustomer, error) {
	if userID <= 0 {
		return ActingCustomer{}, errUnauthorized()
	}

	u, err := d.users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return ActingCustomer{}, errUnauthorized()
	}
	if err != nil {
		return ActingCustomer{}, translateRepoError(err, "user not found")
	}
	if !u.IsActive {
		return ActingCustomer{}, errUnauthorized()
	}

	actor := ActingCustomer{UserID: u.ID, Role: u.ActiveRole}

	cp, err := d.profiles.FindCustomerByUserID(ctx, u.ID)
	switch {
	case err == nil:
		actor.CustomerID = cp.ID
	case !errors.Is(err, repo.ErrNotFound):
		return ActingCustomer{}, translateRepoError(err, "")
	}

	sp, err := d.profiles.FindSellerByUserID(ctx, u.ID)
	switch {
	case err == nil:
		actor.SellerID = sp.ID
	case !errors.Is(err, repo.ErrNotFound):
		return ActingCustomer{}, translateRepoError(err, "")
	}

	return actor, nil
}
