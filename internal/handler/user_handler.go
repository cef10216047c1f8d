package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/todoman/internal/middleware"
	"github.com/hitoshi/todoman/internal/model"
	"github.com/hitoshi/todoman/internal/repository"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Create はユーザーを登録する。
	Create(ctx context.Context, username, name, password string) (*model.User, error)
	// Search はユーザー一覧をページング付きで取得する。
	Search(ctx context.Context, page repository.Page) ([]*model.User, int, error)
	// Get は指定IDのユーザーを取得する。
	Get(ctx context.Context, id string) (*model.User, error)
	// Update は指定IDのユーザーの表示名を更新する。
	Update(ctx context.Context, subjectID, targetID, name string) (*model.User, error)
	// Delete は指定IDのユーザーを削除する。
	Delete(ctx context.Context, subjectID, targetID string) error
	// ChangePassword は認証主体自身のパスワードを変更する。
	ChangePassword(ctx context.Context, subjectID, currentPassword, newPassword string) error
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// createUserRequest はユーザー登録リクエストのボディ。
type createUserRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// updateUserRequest はユーザー更新リクエストのボディ。
type updateUserRequest struct {
	Name string `json:"name"`
}

// changePasswordRequest はパスワード変更リクエストのボディ。
type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	Password        string `json:"password"`
}

// userResponse はユーザー情報のAPIレスポンス。
// フィールドはこの許可リストが全てであり、パスワードハッシュは決して含めない。
type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// userListResponse はユーザー一覧のAPIレスポンス。
type userListResponse struct {
	Data       []userResponse     `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// Create はユーザー登録を処理する。
// POST /v1/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	user, err := h.service.Create(r.Context(), req.Username, req.Name, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserResponse(user))
}

// Search はユーザー一覧を取得する。公開エンドポイント。
// GET /v1/users
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	users, total, err := h.service.Search(r.Context(), page)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	data := make([]userResponse, 0, len(users))
	for _, user := range users {
		data = append(data, toUserResponse(user))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(userListResponse{
		Data:       data,
		Pagination: newPaginationResponse(page, total),
	})
}

// Show はユーザー詳細を取得する。公開エンドポイント。
// GET /v1/users/{id}
func (h *UserHandler) Show(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserResponse(user))
}

// Update はユーザーの表示名を更新する。
// PUT /v1/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	subjectID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	user, err := h.service.Update(r.Context(), subjectID, chi.URLParam(r, "id"), req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserResponse(user))
}

// Destroy はユーザーを削除する（退会処理）。
// DELETE /v1/users/{id}
func (h *UserHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	subjectID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.Delete(r.Context(), subjectID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword は認証主体自身のパスワードを変更する。
// POST /v1/users/password
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	subjectID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	if req.CurrentPassword == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("currentPassword は必須です"))
		return
	}

	if err := h.service.ChangePassword(r.Context(), subjectID, req.CurrentPassword, req.Password); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
