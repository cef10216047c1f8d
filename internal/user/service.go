// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/todoman/internal/auth"
	"github.com/hitoshi/todoman/internal/model"
	"github.com/hitoshi/todoman/internal/repository"
)

// 入力テキストの最大長。DBのVARCHAR(200)に合わせる。
const maxTextLength = 200

// allowedOrders はSearchのorderパラメータで許可される列名。
var allowedOrders = map[string]struct{}{
	"username":   {},
	"name":       {},
	"created_at": {},
	"updated_at": {},
}

// TextSanitizer は入力テキストのサニタイズに必要なインターフェース。
// security.TextSanitizerServiceの部分集合として定義する。
type TextSanitizer interface {
	Sanitize(raw string) string
}

// Service はユーザー管理のサービス層。
// 登録・検索・更新・退会・パスワード変更のビジネスロジックを提供する。
type Service struct {
	userRepo  repository.UserRepository
	sanitizer TextSanitizer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, sanitizer TextSanitizer) *Service {
	return &Service{
		userRepo:  userRepo,
		sanitizer: sanitizer,
	}
}

// Create はユーザーを登録する。
// ユーザー名の重複を確認し、パスワードは永続化前に必ずハッシュ化する。
// 平文パスワードはこの関数のスコープを出ない。
func (s *Service) Create(ctx context.Context, username, name, password string) (*model.User, error) {
	username = s.sanitizer.Sanitize(username)
	name = s.sanitizer.Sanitize(name)

	if err := validateText("username", username); err != nil {
		return nil, err
	}
	if err := validateText("name", name); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, model.NewInvalidRequestError("password は必須です")
	}

	// ユーザー名の重複確認
	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewUsernameTakenError(username)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.Info("ユーザーを登録しました",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// Search はユーザーの一覧をページング付きで取得する。
// 公開エンドポイント用（パスワードハッシュの除外はハンドラーの応答構造体が担う）。
// 戻り値は (ユーザー一覧, 総件数, エラー)。
func (s *Service) Search(ctx context.Context, page repository.Page) ([]*model.User, int, error) {
	normalized, err := page.Normalized(allowedOrders)
	if err != nil {
		return nil, 0, err
	}

	users, total, err := s.userRepo.List(ctx, normalized)
	if err != nil {
		return nil, 0, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}

	return users, total, nil
}

// Get は指定IDのユーザーを取得する。
func (s *Service) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	return user, nil
}

// Update は指定IDのユーザーの表示名を更新する。
// 認証主体と対象IDの一致を存在確認より先に検証する（他人のIDの存在有無を漏らさない）。
func (s *Service) Update(ctx context.Context, subjectID, targetID, name string) (*model.User, error) {
	if targetID != subjectID {
		return nil, model.NewForbiddenError()
	}

	name = s.sanitizer.Sanitize(name)
	if err := validateText("name", name); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateName(ctx, targetID, name); err != nil {
		return nil, fmt.Errorf("ユーザーの更新に失敗しました: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	return user, nil
}

// Delete は指定IDのユーザーを削除する（退会処理）。
// 所有するTODOはストレージ層のCASCADEで削除される。
func (s *Service) Delete(ctx context.Context, subjectID, targetID string) error {
	if targetID != subjectID {
		return model.NewForbiddenError()
	}

	if err := s.userRepo.DeleteByID(ctx, targetID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("退会処理が完了しました",
		slog.String("user_id", targetID),
	)

	return nil
}

// ChangePassword は認証主体自身のパスワードを変更する。
// 現在のパスワードをハッシュ比較で再検証し、成功時のみ新しいハッシュで更新する。
func (s *Service) ChangePassword(ctx context.Context, subjectID, currentPassword, newPassword string) error {
	if newPassword == "" {
		return model.NewInvalidRequestError("password は必須です")
	}

	user, err := s.userRepo.FindByID(ctx, subjectID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUnauthorizedError()
	}

	// 現在のパスワードの再検証
	if err := auth.CheckPassword(user.PasswordHash, currentPassword); err != nil {
		return model.NewUnauthorizedError()
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, subjectID, hash); err != nil {
		return fmt.Errorf("パスワードの更新に失敗しました: %w", err)
	}

	slog.Info("パスワードを変更しました",
		slog.String("user_id", subjectID),
	)

	return nil
}

// validateText は必須テキスト項目の空チェックと長さ上限チェックを行う。
func validateText(field, value string) error {
	if value == "" {
		return model.NewInvalidRequestError(fmt.Sprintf("%s は必須です", field))
	}
	if len(value) > maxTextLength {
		return model.NewInvalidRequestError(fmt.Sprintf("%s は%d文字以内で指定してください", field, maxTextLength))
	}
	return nil
}
