// Package auth は認証に関するドメインロジックを提供する。
// パスワードのハッシュ化・照合とJWTトークンの発行・検証を担当する。
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword は平文パスワードのbcryptハッシュを生成する。
// ソルトはbcryptが内部で生成するため、同一パスワードでも毎回異なるハッシュになる。
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPassword はハッシュと平文パスワードを定数時間で照合する。
// 一致しない場合はエラーを返す。平文同士の比較は絶対に行わないこと。
func CheckPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
