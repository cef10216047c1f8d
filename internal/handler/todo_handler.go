package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/todoman/internal/middleware"
	"github.com/hitoshi/todoman/internal/model"
	"github.com/hitoshi/todoman/internal/repository"
)

// TodoServiceInterface はTODOハンドラーが必要とするサービスインターフェース。
type TodoServiceInterface interface {
	// Create は認証主体のTODOを作成する。
	Create(ctx context.Context, userID, text string) (*model.Todo, error)
	// Search は認証主体のTODO一覧をフィルタ付きで取得する。
	Search(ctx context.Context, userID string, filter repository.TodoFilter) ([]*model.Todo, int, error)
	// Get は指定IDのTODOを取得する。
	Get(ctx context.Context, userID, id string) (*model.Todo, error)
	// Update は指定IDのTODO本文を更新する。
	Update(ctx context.Context, userID, id, text string) (*model.Todo, error)
	// Delete は指定IDのTODOを削除する。
	Delete(ctx context.Context, userID, id string) error
	// Done は指定IDのTODOを完了にする。
	Done(ctx context.Context, userID, id string) (*model.Todo, error)
	// Undone は指定IDのTODOを未完了に戻す。
	Undone(ctx context.Context, userID, id string) (*model.Todo, error)
}

// TodoHandler はTODO管理のHTTPハンドラー。
type TodoHandler struct {
	service TodoServiceInterface
}

// NewTodoHandler はTodoHandlerを生成する。
func NewTodoHandler(service TodoServiceInterface) *TodoHandler {
	return &TodoHandler{service: service}
}

// todoRequest はTODO作成・更新リクエストのボディ。
type todoRequest struct {
	Todo string `json:"todo"`
}

// todoResponse はTODO情報のAPIレスポンス。
// 所有者IDは応答に含めない。
type todoResponse struct {
	ID        string    `json:"id"`
	Todo      string    `json:"todo"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// todoListResponse はTODO一覧のAPIレスポンス。
type todoListResponse struct {
	Data       []todoResponse     `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

func toTodoResponse(todo *model.Todo) todoResponse {
	return todoResponse{
		ID:        todo.ID,
		Todo:      todo.Text,
		Done:      todo.Done,
		CreatedAt: todo.CreatedAt,
		UpdatedAt: todo.UpdatedAt,
	}
}

// Create はTODO作成を処理する。
// POST /v1/todos
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req todoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	todo, err := h.service.Create(r.Context(), userID, req.Todo)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toTodoResponse(todo))
}

// Search は認証主体のTODO一覧を取得する。
// GET /v1/todos?q=&done=&order=&page=&page_size=
func (h *TodoHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	page, err := parsePage(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	filter := repository.TodoFilter{
		Query: r.URL.Query().Get("q"),
		Page:  page,
	}

	if raw := r.URL.Query().Get("done"); raw != "" {
		done, err := strconv.ParseBool(raw)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("done は true または false を指定してください"))
			return
		}
		filter.Done = &done
	}

	todos, total, err := h.service.Search(r.Context(), userID, filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	data := make([]todoResponse, 0, len(todos))
	for _, todo := range todos {
		data = append(data, toTodoResponse(todo))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(todoListResponse{
		Data:       data,
		Pagination: newPaginationResponse(page, total),
	})
}

// Show はTODO詳細を取得する。
// GET /v1/todos/{id}
func (h *TodoHandler) Show(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	todo, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toTodoResponse(todo))
}

// Update はTODO本文を更新する。
// PUT /v1/todos/{id}
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req todoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	todo, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), req.Todo)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toTodoResponse(todo))
}

// Destroy はTODOを削除する。
// DELETE /v1/todos/{id}
func (h *TodoHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Done はTODOを完了にする。冪等。
// POST /v1/todos/{id}/done
func (h *TodoHandler) Done(w http.ResponseWriter, r *http.Request) {
	h.setDone(w, r, true)
}

// Undone はTODOを未完了に戻す。冪等。
// POST /v1/todos/{id}/undone
func (h *TodoHandler) Undone(w http.ResponseWriter, r *http.Request) {
	h.setDone(w, r, false)
}

func (h *TodoHandler) setDone(w http.ResponseWriter, r *http.Request, done bool) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	id := chi.URLParam(r, "id")

	var todo *model.Todo
	if done {
		todo, err = h.service.Done(r.Context(), userID, id)
	} else {
		todo, err = h.service.Undone(r.Context(), userID, id)
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toTodoResponse(todo))
}
