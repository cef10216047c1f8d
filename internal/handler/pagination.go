package handler

import (
	"net/http"
	"strconv"

	"github.com/hitoshi/todoman/internal/model"
	"github.com/hitoshi/todoman/internal/repository"
)

// paginationResponse は一覧APIのページング情報。
type paginationResponse struct {
	Page      int `json:"page"`
	PageSize  int `json:"page_size"`
	RowCount  int `json:"row_count"`
	PageCount int `json:"page_count"`
}

// parsePage はクエリパラメータ order / page / page_size を解析する。
// 数値でない値はINVALID_PAGEとして拒否する。既定値の適用と列名の検証は
// サービス層が行う。
func parsePage(r *http.Request) (repository.Page, error) {
	page := repository.Page{
		Order: r.URL.Query().Get("order"),
	}

	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return repository.Page{}, model.NewInvalidPageError()
		}
		page.Number = n
	}

	if raw := r.URL.Query().Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return repository.Page{}, model.NewInvalidPageError()
		}
		page.Size = n
	}

	return page, nil
}

// newPaginationResponse は総件数からページング情報を組み立てる。
// サービス層と同じ既定値を適用する。
func newPaginationResponse(page repository.Page, rowCount int) paginationResponse {
	if page.Number == 0 {
		page.Number = 1
	}
	if page.Size == 0 {
		page.Size = repository.DefaultPageSize
	}

	pageCount := (rowCount + page.Size - 1) / page.Size

	return paginationResponse{
		Page:      page.Number,
		PageSize:  page.Size,
		RowCount:  rowCount,
		PageCount: pageCount,
	}
}
