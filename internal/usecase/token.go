package usecase

import (
	"strconv"
	"time"

	"marketplace/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
)

type JwtAccessTokenDTO struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

// HS256。claimsはsub/role/tv/iat/exp。
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *TokenIssuer) Issue(u *model.User) (JwtAccessTokenDTO, error) {
	now := i.now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(u.ID, 10),
		"role": string(u.ActiveRole),
		"tv":   u.TokenVersion,
		"iat":  now.Unix(),
		"exp":  now.Add(i.ttl).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return JwtAccessTokenDTO{}, err
	}
	return JwtAccessTokenDTO{
		AccessToken:  signed,
		TokenType:    "Bearer",
		ExpiresIn:    int(i.ttl.Seconds()),
		TokenVersion: u.TokenVersion,
	}, nil
}
