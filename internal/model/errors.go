// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUserNotFound    = "USER_NOT_FOUND"
	ErrCodeTodoNotFound    = "TODO_NOT_FOUND"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeUsernameTaken   = "USERNAME_TAKEN"
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeInvalidOrder    = "INVALID_ORDER"
	ErrCodeInvalidPage     = "INVALID_PAGE"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ユーザー名またはIDを確認してください。",
	}
}

// NewTodoNotFoundError はTODOが見つからない場合のエラーを生成する。
func NewTodoNotFoundError(todoID string) *APIError {
	return &APIError{
		Code:     ErrCodeTodoNotFound,
		Message:  fmt.Sprintf("指定されたTODOが見つかりません: %s", todoID),
		Category: "validation",
		Action:   "TODOのIDを確認してください。",
	}
}

// NewUnauthorizedError は認証失敗エラーを生成する。
// パスワード不一致、トークン欠落・改ざんの双方で使用する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証に失敗しました。",
		Category: "auth",
		Action:   "認証情報を確認して再度ログインしてください。",
	}
}

// NewTokenExpiredError はトークン期限切れエラーを生成する。
// 改ざんトークンとは区別し、クライアントが再ログインを案内できるようにする。
func NewTokenExpiredError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenExpired,
		Message:  "トークンの有効期限が切れています。",
		Category: "auth",
		Action:   "再度ログインして新しいトークンを取得してください。",
	}
}

// NewForbiddenError は認可失敗エラーを生成する。
// リソースは存在するが呼び出し主が所有者でない場合に使用する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を行う権限がありません。",
		Category: "auth",
		Action:   "自分が所有するリソースに対してのみ操作できます。",
	}
}

// NewUsernameTakenError はユーザー名重複エラーを生成する。
func NewUsernameTakenError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeUsernameTaken,
		Message:  fmt.Sprintf("このユーザー名は既に使用されています: %s", username),
		Category: "validation",
		Action:   "別のユーザー名を指定してください。",
	}
}

// NewInvalidRequestError は入力検証エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "リクエスト内容を確認してください。",
	}
}

// NewInvalidOrderError は無効なソート指定エラーを生成する。
func NewInvalidOrderError(order string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidOrder,
		Message:  fmt.Sprintf("無効なソート指定です: %s", order),
		Category: "validation",
		Action:   "orderには created_at、updated_at、todo、done のいずれかを指定してください。",
	}
}

// NewInvalidPageError は無効なページ指定エラーを生成する。
func NewInvalidPageError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPage,
		Message:  "無効なページ指定です。",
		Category: "validation",
		Action:   "pageは1以上、page_sizeは1〜100の範囲で指定してください。",
	}
}
