package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// 直列化失敗・デッドロック・条件付き更新の不成立。トランザクションごとやり直せる。
	ErrConflict = errors.New("conflict")
	// 一意制約違反
	ErrDuplicate = errors.New("duplicate")
)
