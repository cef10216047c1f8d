// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/todoman/internal/model"
)

// ページングの既定値と上限。
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page はページネーション指定を表す。
// Orderは列名を指定し、先頭に"-"を付けると降順になる（例: "-created_at"）。
// 列名の妥当性検証はサービス層の責務とし、リポジトリは許可リスト外の列を
// デフォルト列に置き換える。
type Page struct {
	Order    string
	Number   int
	Size     int
}

// Normalized はページング指定を検証し、既定値を適用したコピーを返す。
// orderは許可列のみ受け付ける（先頭の"-"は降順指定）。
func (p Page) Normalized(allowedOrders map[string]struct{}) (Page, error) {
	if p.Number == 0 {
		p.Number = 1
	}
	if p.Size == 0 {
		p.Size = DefaultPageSize
	}
	if p.Number < 1 || p.Size < 1 || p.Size > MaxPageSize {
		return Page{}, model.NewInvalidPageError()
	}

	if p.Order != "" {
		column := p.Order
		if column[0] == '-' {
			column = column[1:]
		}
		if _, ok := allowedOrders[column]; !ok {
			return Page{}, model.NewInvalidOrderError(p.Order)
		}
	}

	return p, nil
}

// TodoFilter はTODO一覧取得の絞り込み条件を表す。
type TodoFilter struct {
	// Query はTODO本文の部分一致検索文字列。空の場合は絞り込まない。
	Query string
	// Done は完了状態での絞り込み。nilの場合は絞り込まない。
	Done *bool
	// Page はページネーション指定。
	Page Page
}

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername はユーザー名の完全一致でユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// UpdateName は指定IDのユーザーの表示名を更新する。
	UpdateName(ctx context.Context, id, name string) error

	// UpdatePassword は指定IDのユーザーのパスワードハッシュを更新する。
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するtodosはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error

	// List はユーザー一覧をページネーション付きで取得する。
	// 戻り値の2番目は絞り込みなしの総件数。
	List(ctx context.Context, page Page) ([]*model.User, int, error)
}

// TodoRepository はTODOデータの永続化インターフェース。
type TodoRepository interface {
	// FindByID は指定IDのTODOを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Todo, error)

	// Create はTODOを作成する。
	Create(ctx context.Context, todo *model.Todo) error

	// UpdateText は指定IDのTODO本文を更新する。
	UpdateText(ctx context.Context, id, text string) error

	// SetDone は指定IDのTODOの完了状態を設定する。冪等に動作する。
	SetDone(ctx context.Context, id string, done bool) error

	// DeleteByID は指定IDのTODOを削除する。
	DeleteByID(ctx context.Context, id string) error

	// ListByUserID は指定ユーザーのTODO一覧をフィルタ付きで取得する。
	// 戻り値の2番目はフィルタ適用後の総件数。
	ListByUserID(ctx context.Context, userID string, filter TodoFilter) ([]*model.Todo, int, error)
}
