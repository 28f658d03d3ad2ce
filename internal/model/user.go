// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptハッシュであり、レスポンスやログに出力してはならない。
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Category は日記エントリの分類を表す。
type Category struct {
	ID         int64
	Name       string
	Color      string
	Icon       string
	IsEditable bool
	UserID     int64
	CreatedAt  time.Time
}

// JournalEntry は日記エントリを表す。
// CategoryIDはカテゴリ未指定の場合nil。
type JournalEntry struct {
	ID         int64
	Title      string
	Content    string
	CategoryID *int64
	EntryDate  time.Time
	UserID     int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
