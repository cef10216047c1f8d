package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired は署名は正しいが有効期限が切れているトークンを表す。
	ErrTokenExpired = errors.New("token is expired")
	// ErrTokenInvalid は改ざん・署名不一致・形式不正のトークンを表す。
	ErrTokenInvalid = errors.New("token is invalid")
)

// Claims はJWTに埋め込む利用者情報。
// 標準クレーム（発行時刻・有効期限）に加えてユーザーIDを持つ。
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// TokenManager は共通鍵方式のJWTトークンを発行・検証する。
// 鍵・アルゴリズム・有効期間は起動時に1回だけ設定し、以後変更しない。
type TokenManager struct {
	key    []byte
	method jwt.SigningMethod
	ttl    time.Duration
}

// NewTokenManager はTokenManagerを生成する。
// 鍵が未設定、またはHMAC系以外のアルゴリズムが指定された場合はエラーを返す。
// 鍵の欠落は設定不備であり、リクエスト処理中ではなく起動時に失敗させる。
func NewTokenManager(key, algorithm string, ttl time.Duration) (*TokenManager, error) {
	if key == "" {
		return nil, errors.New("jwt signing key is required")
	}

	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unsupported jwt algorithm: %s", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("jwt algorithm must be HMAC-based, got: %s", algorithm)
	}

	return &TokenManager{
		key:    []byte(key),
		method: method,
		ttl:    ttl,
	}, nil
}

// Issue は指定ユーザーIDを主体とする署名付きトークンを発行する。
// 有効期限は現在時刻 + 設定済みTTL。発行したトークンと有効期限を返す。
func (m *TokenManager) Issue(userID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.ttl)

	token := jwt.NewWithClaims(m.method, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify はトークンの署名と有効期限を検証し、埋め込まれたユーザーIDを返す。
// 期限切れはErrTokenExpired、それ以外の検証失敗はErrTokenInvalidを返す。
// 呼び出し側はこの区別を使ってレスポンスを出し分けられる。
func (m *TokenManager) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.key, nil
	}, jwt.WithValidMethods([]string{m.method.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}

	if !token.Valid || claims.UserID == "" {
		return "", ErrTokenInvalid
	}

	return claims.UserID, nil
}
