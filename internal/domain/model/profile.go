package model

import (
	"errors"
	"time"
)

// 購入者としてのプロフィール。roleを切り替えても消さない。
type CustomerProfile struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	FirstName       string    `gorm:"type:varchar(100)" json:"first_name"`
	LastName        string    `gorm:"type:varchar(100)" json:"last_name"`
	ShippingAddress string    `gorm:"type:text" json:"shipping_address"`
	BillingAddress  string    `gorm:"type:text" json:"billing_address"`
	CreatedAt       time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 出品者としてのプロフィール。
type SellerProfile struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	StoreName        string    `gorm:"type:varchar(150)" json:"store_name"`
	StoreDescription string    `gorm:"type:text" json:"store_description"`
	BusinessLicense  string    `gorm:"type:varchar(100)" json:"business_license"`
	CreatedAt        time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

var ErrInvalidRole = errors.New("invalid role")

// role切替の結果。Applyするまでuserは変わらない。
type RoleTransition struct {
	From Role
	To   Role
	// 切替先のプロフィールがまだ無いので作る必要がある
	CreateProfile bool
	Changed       bool
}

// 切替先が不正ならErrInvalidRole。同じroleなら何もしない遷移を返す。
func TransitionRole(u User, to Role, hasTargetProfile bool) (RoleTransition, error) {
	if !to.Valid() {
		return RoleTransition{}, ErrInvalidRole
	}
	return RoleTransition{
		From:          u.ActiveRole,
		To:            to,
		CreateProfile: !hasTargetProfile,
		Changed:       u.ActiveRole != to,
	}, nil
}

// 古いJWTを無効にするためtoken_versionも進める
func (t RoleTransition) Apply(u *User) {
	if !t.Changed {
		return
	}
	u.ActiveRole = t.To
	u.TokenVersion++
}
