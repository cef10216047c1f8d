package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hitoshi/todoman/internal/model"
)

// PostgresTodoRepo はPostgreSQLを使用したTODOリポジトリ。
type PostgresTodoRepo struct {
	db *sql.DB
}

// NewPostgresTodoRepo はPostgresTodoRepoを生成する。
func NewPostgresTodoRepo(db *sql.DB) *PostgresTodoRepo {
	return &PostgresTodoRepo{db: db}
}

// todoOrderColumns はListByUserIDで許可されるソート列。
var todoOrderColumns = map[string]struct{}{
	"created_at": {},
	"updated_at": {},
	"todo":       {},
	"done":       {},
}

// orderClause はOrder指定から安全なORDER BY句（"列名 ASC|DESC"形式）を構築する。
// 先頭の"-"は降順を表す。許可リスト外の列はデフォルト列の昇順に置き換える。
// SQL文字列へ直接埋め込むため、列名は必ず許可リストを通すこと。
func orderClause(order string, allowed map[string]struct{}, defaultColumn string) string {
	column := order
	direction := "ASC"
	if strings.HasPrefix(order, "-") {
		column = order[1:]
		direction = "DESC"
	}
	if _, ok := allowed[column]; !ok {
		return defaultColumn + " ASC"
	}
	return column + " " + direction
}

// FindByID は指定IDのTODOを取得する。見つからない場合はnilを返す。
func (r *PostgresTodoRepo) FindByID(ctx context.Context, id string) (*model.Todo, error) {
	todo := &model.Todo{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, todo, done, created_at, updated_at FROM todos WHERE id = $1`,
		id,
	).Scan(&todo.ID, &todo.UserID, &todo.Text, &todo.Done, &todo.CreatedAt, &todo.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find todo by ID: %w", err)
	}

	return todo, nil
}

// Create はTODOを作成する。
func (r *PostgresTodoRepo) Create(ctx context.Context, todo *model.Todo) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO todos (id, user_id, todo, done, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		todo.ID, todo.UserID, todo.Text, todo.Done, todo.CreatedAt, todo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert todo: %w", err)
	}

	return nil
}

// UpdateText は指定IDのTODO本文を更新する。
func (r *PostgresTodoRepo) UpdateText(ctx context.Context, id, text string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE todos SET todo = $2, updated_at = now() WHERE id = $1`,
		id, text,
	)
	if err != nil {
		return fmt.Errorf("failed to update todo text: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("todo not found: %s", id)
	}
	return nil
}

// SetDone は指定IDのTODOの完了状態を設定する。
// 同じ値を繰り返し設定しても結果は変わらない（冪等）。
func (r *PostgresTodoRepo) SetDone(ctx context.Context, id string, done bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE todos SET done = $2, updated_at = now() WHERE id = $1`,
		id, done,
	)
	if err != nil {
		return fmt.Errorf("failed to set todo done state: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("todo not found: %s", id)
	}
	return nil
}

// DeleteByID は指定IDのTODOを削除する。
func (r *PostgresTodoRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM todos WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("todo not found: %s", id)
	}
	return nil
}

// ListByUserID は指定ユーザーのTODO一覧をフィルタ付きで取得する。
// 必ずuser_idで絞り込むため、他ユーザーのTODOが混入することはない。
func (r *PostgresTodoRepo) ListByUserID(ctx context.Context, userID string, filter TodoFilter) ([]*model.Todo, int, error) {
	where := []string{"user_id = $1"}
	args := []interface{}{userID}

	if filter.Done != nil {
		args = append(args, *filter.Done)
		where = append(where, fmt.Sprintf("done = $%d", len(args)))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		where = append(where, fmt.Sprintf("todo ILIKE $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM todos WHERE %s`, whereClause)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count todos: %w", err)
	}

	orderBy := orderClause(filter.Page.Order, todoOrderColumns, "created_at")
	offset := (filter.Page.Number - 1) * filter.Page.Size

	args = append(args, filter.Page.Size, offset)
	query := fmt.Sprintf(
		`SELECT id, user_id, todo, done, created_at, updated_at
		 FROM todos WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		whereClause, orderBy, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	var todos []*model.Todo
	for rows.Next() {
		todo := &model.Todo{}
		if err := rows.Scan(&todo.ID, &todo.UserID, &todo.Text, &todo.Done, &todo.CreatedAt, &todo.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan todo row: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate todo rows: %w", err)
	}

	return todos, total, nil
}

// compile-time interface check
var _ TodoRepository = (*PostgresTodoRepo)(nil)
