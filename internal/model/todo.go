package model

import "time"

// Todo はユーザーが所有するTODO項目を表す。
// UserIDは作成時に決定され、以後変更されない。
// UserIDはAPIレスポンスには含めない（所有情報の秘匿）。
type Todo struct {
	ID        string
	UserID    string
	Text      string
	Done      bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
