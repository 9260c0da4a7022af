// Package auth 提供密码散列与访问令牌的签发、校验。
package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword 用 bcrypt 生成密码散列
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword 校验明文密码与散列是否匹配
func VerifyPassword(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
