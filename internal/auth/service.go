package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/todoman/internal/model"
	"github.com/hitoshi/todoman/internal/repository"
)

// MetricsRecorder は認証メトリクスの記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type MetricsRecorder interface {
	RecordLoginSuccess()
	RecordLoginFailure(reason string)
	RecordTokenIssued()
}

// TokenResult はトークン発行結果を表す。
type TokenResult struct {
	Token     string
	ExpiresAt time.Time
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	tokens   *TokenManager
	metrics  MetricsRecorder
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, tokens *TokenManager, metrics MetricsRecorder) *Service {
	return &Service{
		userRepo: userRepo,
		tokens:   tokens,
		metrics:  metrics,
	}
}

// Login はユーザー名とパスワードを検証し、トークンを発行する。
// ユーザーが存在しない場合はUSER_NOT_FOUND、パスワード不一致はUNAUTHORIZEDを返す。
// パスワードは必ずbcryptの定数時間比較で照合する。
// 発行したトークンはログにも永続化層にも残さない。
func (s *Service) Login(ctx context.Context, username, password string) (*TokenResult, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user for login: %w", err)
	}
	if user == nil {
		s.metrics.RecordLoginFailure("unknown_username")
		return nil, model.NewUserNotFoundError()
	}

	if err := CheckPassword(user.PasswordHash, password); err != nil {
		s.metrics.RecordLoginFailure("wrong_password")
		slog.Warn("login failed: wrong password",
			slog.String("user_id", user.ID),
		)
		return nil, model.NewUnauthorizedError()
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.RecordLoginSuccess()
	s.metrics.RecordTokenIssued()
	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return &TokenResult{Token: token, ExpiresAt: expiresAt}, nil
}

// Refresh は認証済みユーザーに対して新しい有効期限のトークンを再発行する。
// 主体のユーザーが既に削除されている場合はUNAUTHORIZEDを返す
// （存在の有無を漏らさないため、NOT_FOUNDではなく無効セッションとして扱う）。
func (s *Service) Refresh(ctx context.Context, userID string) (*TokenResult, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user for refresh: %w", err)
	}
	if user == nil {
		return nil, model.NewUnauthorizedError()
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.RecordTokenIssued()
	slog.Info("token refreshed",
		slog.String("user_id", user.ID),
	)

	return &TokenResult{Token: token, ExpiresAt: expiresAt}, nil
}
