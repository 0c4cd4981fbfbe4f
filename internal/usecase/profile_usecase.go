package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

// 両方のプロフィールを返す。使っていない方も残っている。
type MeOutput struct {
	User            UserDTO                `json:"user"`
	CustomerProfile *model.CustomerProfile `json:"customer_profile"`
	SellerProfile   *model.SellerProfile   `json:"seller_profile"`
}

type SwitchRoleOutput struct {
	User  UserDTO           `json:"user"`
	Token JwtAccessTokenDTO `json:"token"`
}

type CustomerProfileInput struct {
	FirstName       string
	LastName        string
	ShippingAddress string
	BillingAddress  string
}

type SellerProfileInput struct {
	StoreName        string
	StoreDescription string
	BusinessLicense  string
}

type ProfileUsecase struct {
	users    repo.UserRepository
	profiles repo.ProfileRepository
	tx       repo.TransactionManager
	issuer   *TokenIssuer
	log      *slog.Logger
}

func NewProfileUsecase(users repo.UserRepository, profiles repo.ProfileRepository, tx repo.TransactionManager, issuer *TokenIssuer, log *slog.Logger) *ProfileUsecase {
	return &ProfileUsecase{users: users, profiles: profiles, tx: tx, issuer: issuer, log: log}
}

func (u *ProfileUsecase) findActiveUser(ctx context.Context, users repo.UserRepository, userID int64) (*model.User, error) {
	if userID <= 0 {
		return nil, errUnauthorized()
	}
	user, err := users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errUnauthorized()
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, errForbidden("user is inactive")
	}
	return user, nil
}

func (u *ProfileUsecase) Me(ctx context.Context, userID int64) (MeOutput, error) {
	user, err := u.findActiveUser(ctx, u.users, userID)
	if err != nil {
		return MeOutput{}, failWith(ctx, u.log, "me", "", err)
	}
	out := MeOutput{User: toUserDTO(user)}

	cp, err := u.profiles.FindCustomerByUserID(ctx, user.ID)
	if err == nil {
		out.CustomerProfile = cp
	} else if !errors.Is(err, repo.ErrNotFound) {
		return MeOutput{}, failWith(ctx, u.log, "find customer profile", "", err)
	}
	sp, err := u.profiles.FindSellerByUserID(ctx, user.ID)
	if err == nil {
		out.SellerProfile = sp
	} else if !errors.Is(err, repo.ErrNotFound) {
		return MeOutput{}, failWith(ctx, u.log, "find seller profile", "", err)
	}
	return out, nil
}

// 明示的なrole切替。切替先のプロフィールが無ければ作り、もう一方は消さない。
// token_versionが進むので新しいトークンを返す。
func (u *ProfileUsecase) SwitchRole(ctx context.Context, userID int64, target string) (SwitchRoleOutput, error) {
	to := model.Role(strings.ToUpper(strings.TrimSpace(target)))

	var user *model.User
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		user, err = u.findActiveUser(ctx, r.Users(), userID)
		if err != nil {
			return err
		}

		hasProfile, err := hasProfileFor(ctx, r.Profiles(), user.ID, to)
		if err != nil {
			return err
		}
		t, err := model.TransitionRole(*user, to, hasProfile)
		if errors.Is(err, model.ErrInvalidRole) {
			return errInvalidInput("role must be CUSTOMER or SELLER")
		}
		if err != nil {
			return err
		}
		if !t.Changed {
			return nil
		}

		if t.CreateProfile {
			switch t.To {
			case model.RoleCustomer:
				err = r.Profiles().CreateCustomer(ctx, &model.CustomerProfile{UserID: user.ID})
			case model.RoleSeller:
				err = r.Profiles().CreateSeller(ctx, &model.SellerProfile{UserID: user.ID})
			}
			if err != nil {
				return err
			}
		}

		before, _ := json.Marshal(map[string]any{"active_role": t.From, "token_version": user.TokenVersion})
		t.Apply(user)
		after, _ := json.Marshal(map[string]any{"active_role": t.To, "token_version": user.TokenVersion})

		if err := r.Users().Update(ctx, user); err != nil {
			return err
		}
		return r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  user.ID,
			Action:       model.AuditActionSwitchRole,
			ResourceType: model.AuditResourceUser,
			ResourceID:   user.ID,
			BeforeJSON:   string(before),
			AfterJSON:    string(after),
			CreatedAt:    nowUTC(),
		})
	})
	if err != nil {
		return SwitchRoleOutput{}, failWith(ctx, u.log, "switch role", "user not found", err)
	}

	token, err := u.issuer.Issue(user)
	if err != nil {
		return SwitchRoleOutput{}, failWith(ctx, u.log, "issue token", "", err)
	}
	return SwitchRoleOutput{User: toUserDTO(user), Token: token}, nil
}

func hasProfileFor(ctx context.Context, profiles repo.ProfileRepository, userID int64, role model.Role) (bool, error) {
	var err error
	switch role {
	case model.RoleCustomer:
		_, err = profiles.FindCustomerByUserID(ctx, userID)
	case model.RoleSeller:
		_, err = profiles.FindSellerByUserID(ctx, userID)
	default:
		return false, nil
	}
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (u *ProfileUsecase) UpdateCustomerProfile(ctx context.Context, userID int64, in CustomerProfileInput) (model.CustomerProfile, error) {
	if _, err := u.findActiveUser(ctx, u.users, userID); err != nil {
		return model.CustomerProfile{}, failWith(ctx, u.log, "update customer profile", "", err)
	}
	p := model.CustomerProfile{
		UserID:          userID,
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		BillingAddress:  strings.TrimSpace(in.BillingAddress),
	}
	if err := u.profiles.UpdateCustomer(ctx, &p); err != nil {
		return model.CustomerProfile{}, failWith(ctx, u.log, "update customer profile", "customer profile not found", err)
	}
	saved, err := u.profiles.FindCustomerByUserID(ctx, userID)
	if err != nil {
		return model.CustomerProfile{}, failWith(ctx, u.log, "find customer profile", "customer profile not found", err)
	}
	return *saved, nil
}

func (u *ProfileUsecase) UpdateSellerProfile(ctx context.Context, userID int64, in SellerProfileInput) (model.SellerProfile, error) {
	if _, err := u.findActiveUser(ctx, u.users, userID); err != nil {
		return model.SellerProfile{}, failWith(ctx, u.log, "update seller profile", "", err)
	}
	if strings.TrimSpace(in.StoreName) == "" {
		return model.SellerProfile{}, errInvalidInput("store_name required")
	}
	p := model.SellerProfile{
		UserID:           userID,
		StoreName:        strings.TrimSpace(in.StoreName),
		StoreDescription: in.StoreDescription,
		BusinessLicense:  strings.TrimSpace(in.BusinessLicense),
	}
	if err := u.profiles.UpdateSeller(ctx, &p); err != nil {
		return model.SellerProfile{}, failWith(ctx, u.log, "update seller profile", "seller profile not found", err)
	}
	saved, err := u.profiles.FindSellerByUserID(ctx, userID)
	if err != nil {
		return model.SellerProfile{}, failWith(ctx, u.log, "find seller profile", "seller profile not found", err)
	}
	return *saved, nil
}
