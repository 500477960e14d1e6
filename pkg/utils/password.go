package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword 生成带盐的 bcrypt 摘要；cost<=0 使用默认值
func HashPassword(pw string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// IsDigestMismatch 区分“密码不对”和“摘要本身不可用”
func IsDigestMismatch(pw, hashed string) (mismatch bool, err error) {
	err = bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw))
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return true, nil
	default:
		return false, err
	}
}
