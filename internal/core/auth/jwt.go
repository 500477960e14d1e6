package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"department-graphql/internal/core/apperr"
)

// Claims 令牌载荷：subject = 用户 ID
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() string { return c.Subject }

type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Leeway time.Duration
	Now    func() time.Time // 测试可注入时钟
}

func (j *JWTer) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

// Issue 签发访问令牌，返回过期时间供 login 响应使用
func (j *JWTer) Issue(userID, username string) (string, time.Time, error) {
	now := j.now()
	exp := now.Add(j.TTL)
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, apperr.Wrap(err, "sign token")
	}
	return s, exp, nil
}

// Verify 校验签名/签发者/过期；失败分别返回 InvalidToken / TokenExpired
func (j *JWTer) Verify(tokenStr string) (*Claims, error) {
	if strings.TrimSpace(tokenStr) == "" {
		return nil, apperr.New(apperr.MissingToken, "missing bearer token")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(j.Leeway),
		jwt.WithTimeFunc(j.now),
	}
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg %v", token.Header["alg"])
		}
		return j.Secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &apperr.Error{Reason: apperr.TokenExpired, Message: "token expired", Err: err}
		}
		return nil, &apperr.Error{Reason: apperr.InvalidToken, Message: "invalid token", Err: err}
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.Subject == "" {
		return nil, apperr.New(apperr.InvalidToken, "invalid token")
	}
	return c, nil
}

// FromHeader 解析 Authorization: Bearer <token>
func (j *JWTer) FromHeader(authorization string) (*Claims, error) {
	ah := strings.TrimSpace(authorization)
	if ah == "" {
		return nil, apperr.New(apperr.MissingToken, "missing bearer token")
	}
	scheme, token, ok := strings.Cut(ah, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return nil, apperr.New(apperr.InvalidToken, "authorization header must use the Bearer scheme")
	}
	return j.Verify(strings.TrimSpace(token))
}
