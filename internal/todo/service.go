// Package todo はTODO管理のドメインロジックを提供する。
package todo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/todoman/internal/model"
	"github.com/hitoshi/todoman/internal/repository"
)

// 入力テキストの最大長。DBのVARCHAR(200)に合わせる。
const maxTextLength = 200

// allowedOrders はSearchのorderパラメータで許可される列名。
var allowedOrders = map[string]struct{}{
	"todo":       {},
	"done":       {},
	"created_at": {},
	"updated_at": {},
}

// TextSanitizer は入力テキストのサニタイズに必要なインターフェース。
// security.TextSanitizerServiceの部分集合として定義する。
type TextSanitizer interface {
	Sanitize(raw string) string
}

// MetricsRecorder はTODO操作のメトリクス記録に必要なインターフェース。
// metrics.Collectorの部分集合として定義する。
type MetricsRecorder interface {
	RecordTodoCreated()
	RecordTodoCompleted()
}

// Service はTODO管理のサービス層。
// すべての単一リソース操作は所有権検査を通る: 存在しないIDはNOT_FOUND、
// 存在するが他人のリソースはFORBIDDEN。
type Service struct {
	todoRepo  repository.TodoRepository
	sanitizer TextSanitizer
	metrics   MetricsRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(todoRepo repository.TodoRepository, sanitizer TextSanitizer, metrics MetricsRecorder) *Service {
	return &Service{
		todoRepo:  todoRepo,
		sanitizer: sanitizer,
		metrics:   metrics,
	}
}

// Create は認証主体のTODOを作成する。所有者は作成時に固定され、以後変更されない。
func (s *Service) Create(ctx context.Context, userID, text string) (*model.Todo, error) {
	text = s.sanitizer.Sanitize(text)
	if err := validateText(text); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	todo := &model.Todo{
		ID:        uuid.NewString(),
		UserID:    userID,
		Text:      text,
		Done:      false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("TODOの作成に失敗しました: %w", err)
	}

	s.metrics.RecordTodoCreated()

	slog.Info("TODOを作成しました",
		slog.String("todo_id", todo.ID),
		slog.String("user_id", userID),
	)

	return todo, nil
}

// Search は認証主体のTODO一覧をフィルタ付きで取得する。
// 常に所有者でスコープされ、他人のTODOは件数にも含まれない。
// 戻り値は (TODO一覧, フィルタ適用後の総件数, エラー)。
func (s *Service) Search(ctx context.Context, userID string, filter repository.TodoFilter) ([]*model.Todo, int, error) {
	normalized, err := filter.Page.Normalized(allowedOrders)
	if err != nil {
		return nil, 0, err
	}
	filter.Page = normalized

	todos, total, err := s.todoRepo.ListByUserID(ctx, userID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("TODO一覧の取得に失敗しました: %w", err)
	}

	return todos, total, nil
}

// Get は指定IDのTODOを取得する。所有権検査を通る。
func (s *Service) Get(ctx context.Context, userID, id string) (*model.Todo, error) {
	return s.authorize(ctx, userID, id)
}

// Update は指定IDのTODO本文を更新する。所有権検査を通る。
func (s *Service) Update(ctx context.Context, userID, id, text string) (*model.Todo, error) {
	todo, err := s.authorize(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	text = s.sanitizer.Sanitize(text)
	if err := validateText(text); err != nil {
		return nil, err
	}

	if err := s.todoRepo.UpdateText(ctx, id, text); err != nil {
		return nil, fmt.Errorf("TODOの更新に失敗しました: %w", err)
	}

	todo.Text = text
	return todo, nil
}

// Delete は指定IDのTODOを削除する。所有権検査を通る。
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.authorize(ctx, userID, id); err != nil {
		return err
	}

	if err := s.todoRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("TODOの削除に失敗しました: %w", err)
	}

	return nil
}

// Done は指定IDのTODOを完了にする。冪等: 既に完了でも成功する。
func (s *Service) Done(ctx context.Context, userID, id string) (*model.Todo, error) {
	todo, err := s.setDone(ctx, userID, id, true)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTodoCompleted()

	return todo, nil
}

// Undone は指定IDのTODOを未完了に戻す。冪等: 既に未完了でも成功する。
func (s *Service) Undone(ctx context.Context, userID, id string) (*model.Todo, error) {
	return s.setDone(ctx, userID, id, false)
}

// setDone は所有権検査を通した上で完了状態を設定する。
func (s *Service) setDone(ctx context.Context, userID, id string, done bool) (*model.Todo, error) {
	todo, err := s.authorize(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := s.todoRepo.SetDone(ctx, id, done); err != nil {
		return nil, fmt.Errorf("TODOの完了状態の更新に失敗しました: %w", err)
	}

	todo.Done = done
	return todo, nil
}

// authorize は指定IDのTODOを取得し、所有権を検査する。
// 存在しないIDはNOT_FOUND、存在するが認証主体の所有でないものはFORBIDDEN。
// この検査は単一リソース操作すべてに適用する。
func (s *Service) authorize(ctx context.Context, userID, id string) (*model.Todo, error) {
	todo, err := s.todoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("TODOの取得に失敗しました: %w", err)
	}
	if todo == nil {
		return nil, model.NewTodoNotFoundError(id)
	}
	if todo.UserID != userID {
		return nil, model.NewForbiddenError()
	}

	return todo, nil
}

// validateText はTODO本文の空チェックと長さ上限チェックを行う。
func validateText(text string) error {
	if text == "" {
		return model.NewInvalidRequestError("todo は必須です")
	}
	if len(text) > maxTextLength {
		return model.NewInvalidRequestError(fmt.Sprintf("todo は%d文字以内で指定してください", maxTextLength))
	}
	return nil
}
