package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/todoman/internal/model"
	"github.com/hitoshi/todoman/internal/repository"
)

// --- モック定義 ---

// mockTodoService はTodoServiceInterfaceのモック実装。
type mockTodoService struct {
	createFn func(ctx context.Context, userID, text string) (*model.Todo, error)
	searchFn func(ctx context.Context, userID string, filter repository.TodoFilter) ([]*model.Todo, int, error)
	getFn    func(ctx context.Context, userID, id string) (*model.Todo, error)
	updateFn func(ctx context.Context, userID, id, text string) (*model.Todo, error)
	deleteFn func(ctx context.Context, userID, id string) error
	doneFn   func(ctx context.Context, userID, id string) (*model.Todo, error)
	undoneFn func(ctx context.Context, userID, id string) (*model.Todo, error)
}

func (m *mockTodoService) Create(ctx context.Context, userID, text string) (*model.Todo, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, text)
	}
	return &model.Todo{ID: "todo-new", UserID: userID, Text: text}, nil
}

func (m *mockTodoService) Search(ctx context.Context, userID string, filter repository.TodoFilter) ([]*model.Todo, int, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, userID, filter)
	}
	return nil, 0, nil
}

func (m *mockTodoService) Get(ctx context.Context, userID, id string) (*model.Todo, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, id)
	}
	return &model.Todo{ID: id, UserID: userID}, nil
}

func (m *mockTodoService) Update(ctx context.Context, userID, id, text string) (*model.Todo, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, id, text)
	}
	return &model.Todo{ID: id, UserID: userID, Text: text}, nil
}

func (m *mockTodoService) Delete(ctx context.Context, userID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, id)
	}
	return nil
}

func (m *mockTodoService) Done(ctx context.Context, userID, id string) (*model.Todo, error) {
	if m.doneFn != nil {
		return m.doneFn(ctx, userID, id)
	}
	return &model.Todo{ID: id, UserID: userID, Done: true}, nil
}

func (m *mockTodoService) Undone(ctx context.Context, userID, id string) (*model.Todo, error) {
	if m.undoneFn != nil {
		return m.undoneFn(ctx, userID, id)
	}
	return &model.Todo{ID: id, UserID: userID, Done: false}, nil
}

// --- POST /v1/todos テスト ---

func TestTodoHandler_Create_Success(t *testing.T) {
	svc := &mockTodoService{
		createFn: func(ctx context.Context, userID, text string) (*model.Todo, error) {
			if userID != "user-a" || text != "buy milk" {
				t.Errorf("create(%q, %q), want user-a/buy milk", userID, text)
			}
			return &model.Todo{ID: "todo-1", UserID: userID, Text: text, Done: false}, nil
		},
	}

	h := NewTodoHandler(svc)

	body := strings.NewReader(`{"todo":"buy milk"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/todos", body)
	req = withUserID(req, "user-a")
	w := httptest.NewRecorder()

	h.Create(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	// user_idは応答に含めない
	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, exists := raw["user_id"]; exists {
		t.Error("response contains user_id field")
	}
	if raw["todo"] != "buy milk" {
		t.Errorf("todo = %v, want %q", raw["todo"], "buy milk")
	}
	if raw["done"] != false {
		t.Errorf("done = %v, want false", raw["done"])
	}
}

func TestTodoHandler_Create_NoUserID_ReturnsUnauthorized(t *testing.T) {
	h := NewTodoHandler(&mockTodoService{})

	body := strings.NewReader(`{"todo":"buy milk"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/todos", body)
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

// --- GET /v1/todos テスト ---

func TestTodoHandler_Search_ParsesFilters(t *testing.T) {
	var gotFilter repository.TodoFilter
	svc := &mockTodoService{
		searchFn: func(ctx context.Context, userID string, filter repository.TodoFilter) ([]*model.Todo, int, error) {
			gotFilter = filter
			return []*model.Todo{{ID: "todo-1", UserID: userID, Text: "buy milk", Done: true}}, 1, nil
		},
	}

	h := NewTodoHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/todos?q=milk&done=true&order=-created_at&page=1&page_size=20", nil)
	req = withUserID(req, "user-a")
	w := httptest.NewRecorder()

	h.Search(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	if gotFilter.Query != "milk" {
		t.Errorf("q = %q, want %q", gotFilter.Query, "milk")
	}
	if gotFilter.Done == nil || !*gotFilter.Done {
		t.Error("done filter was not parsed")
	}
	if gotFilter.Page.Order != "-created_at" {
		t.Errorf("order = %q, want %q", gotFilter.Page.Order, "-created_at")
	}
	if gotFilter.Page.Number != 1 || gotFilter.Page.Size != 20 {
		t.Errorf("page = %+v, want number=1 size=20", gotFilter.Page)
	}
}

func TestTodoHandler_Search_InvalidDone_Returns400(t *testing.T) {
	h := NewTodoHandler(&mockTodoService{
		searchFn: func(ctx context.Context, userID string, filter repository.TodoFilter) ([]*model.Todo, int, error) {
			t.Error("Search should not be called")
			return nil, 0, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/todos?done=maybe", nil)
	req = withUserID(req, "user-a")
	w := httptest.NewRecorder()

	h.Search(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestTodoHandler_Search_InvalidOrder_Returns400(t *testing.T) {
	svc := &mockTodoService{
		searchFn: func(ctx context.Context, userID string, filter repository.TodoFilter) ([]*model.Todo, int, error) {
			return nil, 0, model.NewInvalidOrderError(filter.Page.Order)
		},
	}

	h := NewTodoHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/todos?order=user_id", nil)
	req = withUserID(req, "user-a")
	w := httptest.NewRecorder()

	h.Search(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
	if got := parseAPIErrorResponse(t, w); got["code"] != model.ErrCodeInvalidOrder {
		t.Errorf("code = %q, want %q", got["code"], model.ErrCodeInvalidOrder)
	}
}

// --- GET /v1/todos/{id} テスト ---

func TestTodoHandler_Show_Forbidden_Returns403(t *testing.T) {
	svc := &mockTodoService{
		getFn: func(ctx context.Context, userID, id string) (*model.Todo, error) {
			return nil, model.NewForbiddenError()
		},
	}

	h := NewTodoHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/todos/todo-1", nil)
	req = withUserID(req, "user-b")
	req = withChiURLParam(req, "id", "todo-1")
	w := httptest.NewRecorder()

	h.Show(w, req)

	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusForbidden)
	}
}

func TestTodoHandler_Show_Absent_Returns404(t *testing.T) {
	svc := &mockTodoService{
		getFn: func(ctx context.Context, userID, id string) (*model.Todo, error) {
			return nil, model.NewTodoNotFoundError(id)
		},
	}

	h := NewTodoHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/todos/missing", nil)
	req = withUserID(req, "user-a")
	req = withChiURLParam(req, "id", "missing")
	w := httptest.NewRecorder()

	h.Show(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
}

// --- PUT /v1/todos/{id} テスト ---

func TestTodoHandler_Update_Success(t *testing.T) {
	svc := &mockTodoService{
		updateFn: func(ctx context.Context, userID, id, text string) (*model.Todo, error) {
			if id != "todo-1" || text != "buy eggs" {
				t.Errorf("update(%q, %q), want todo-1/buy eggs", id, text)
			}
			return &model.Todo{ID: id, UserID: userID, Text: text}, nil
		},
	}

	h := NewTodoHandler(svc)

	body := strings.NewReader(`{"todo":"buy eggs"}`)
	req := httptest.NewRequest(http.MethodPut, "/v1/todos/todo-1", body)
	req = withUserID(req, "user-a")
	req = withChiURLParam(req, "id", "todo-1")
	w := httptest.NewRecorder()

	h.Update(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got todoResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Todo != "buy eggs" {
		t.Errorf("todo = %q, want %q", got.Todo, "buy eggs")
	}
}

// --- DELETE /v1/todos/{id} テスト ---

func TestTodoHandler_Destroy_Success(t *testing.T) {
	deleted := false
	svc := &mockTodoService{
		deleteFn: func(ctx context.Context, userID, id string) error {
			deleted = true
			return nil
		},
	}

	h := NewTodoHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/v1/todos/todo-1", nil)
	req = withUserID(req, "user-a")
	req = withChiURLParam(req, "id", "todo-1")
	w := httptest.NewRecorder()

	h.Destroy(w, req)

	if w.Result().StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNoContent)
	}
	if !deleted {
		t.Error("expected Delete to be called")
	}
}

func TestTodoHandler_Destroy_Forbidden_Returns403(t *testing.T) {
	svc := &mockTodoService{
		deleteFn: func(ctx context.Context, userID, id string) error {
			return model.NewForbiddenError()
		},
	}

	h := NewTodoHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/v1/todos/todo-1", nil)
	req = withUserID(req, "user-b")
	req = withChiURLParam(req, "id", "todo-1")
	w := httptest.NewRecorder()

	h.Destroy(w, req)

	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusForbidden)
	}
}

// --- POST /v1/todos/{id}/done, /undone テスト ---

func TestTodoHandler_Done_Success(t *testing.T) {
	svc := &mockTodoService{
		doneFn: func(ctx context.Context, userID, id string) (*model.Todo, error) {
			return &model.Todo{ID: id, UserID: userID, Text: "buy milk", Done: true}, nil
		},
	}

	h := NewTodoHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/todos/todo-1/done", nil)
	req = withUserID(req, "user-a")
	req = withChiURLParam(req, "id", "todo-1")
	w := httptest.NewRecorder()

	h.Done(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got todoResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !got.Done {
		t.Error("done = false, want true")
	}
}

func TestTodoHandler_Undone_Success(t *testing.T) {
	svc := &mockTodoService{
		undoneFn: func(ctx context.Context, userID, id string) (*model.Todo, error) {
			return &model.Todo{ID: id, UserID: userID, Text: "buy milk", Done: false}, nil
		},
	}

	h := NewTodoHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/todos/todo-1/undone", nil)
	req = withUserID(req, "user-a")
	req = withChiURLParam(req, "id", "todo-1")
	w := httptest.NewRecorder()

	h.Undone(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got todoResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Done {
		t.Error("done = true, want false")
	}
}
