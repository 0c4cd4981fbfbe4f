package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"marketplace/internal/config"
	"marketplace/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"       // int64
	CtxUserRoleKey     = "user_role"     // string (CUSTOMER/SELLER)
	CtxTokenVersionKey = "token_version" // int
)

var errBadClaims = errors.New("invalid claims")

// 検証済みトークンから取り出す値
type accessClaims struct {
	UserID       int64
	Role         model.Role
	TokenVersion int
}

// Authorization: Bearer <token> を検証し、ctxへuser_id/role/tvを入れる。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	secret := []byte(cfg.JWTSecret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				return unauthorized(c)
			}
			claims, err := parseAccessToken(raw, secret)
			if err != nil {
				return unauthorized(c)
			}

			c.Set(CtxUserIDKey, claims.UserID)
			c.Set(CtxUserRoleKey, string(claims.Role))
			c.Set(CtxTokenVersionKey, claims.TokenVersion)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// HS256以外は受け付けない
func parseAccessToken(raw string, secret []byte) (accessClaims, error) {
	mc := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, mc, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return accessClaims{}, errBadClaims
	}

	userID, err := claimInt64(mc["sub"])
	if err != nil || userID <= 0 {
		return accessClaims{}, errBadClaims
	}
	role, _ := mc["role"].(string)
	if !model.Role(role).Valid() {
		return accessClaims{}, errBadClaims
	}
	tv, err := claimInt64(mc["tv"])
	if err != nil || tv < 0 {
		return accessClaims{}, errBadClaims
	}
	return accessClaims{UserID: userID, Role: model.Role(role), TokenVersion: int(tv)}, nil
}

// JSON数値はfloat64、subは文字列で来ることがある
func claimInt64(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, errBadClaims
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized", Code: "UNAUTHORIZED"})
}

func forbidden(c echo.Context, msg string) error {
	return c.JSON(http.StatusForbidden, errorResponse{Error: msg, Code: "FORBIDDEN"})
}
