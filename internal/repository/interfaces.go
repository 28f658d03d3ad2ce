// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/daybook/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。passwordHashにはbcryptハッシュを渡す。
	// usernameが既に存在する場合はmodel.ErrDuplicateUsernameを返す。
	// 一意性の保証はDBのUNIQUE制約に依存する（check-then-insertはしない）。
	Create(ctx context.Context, username, passwordHash string) (*model.User, error)

	// FindByUsername は指定usernameのユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// CategoryRepository はカテゴリデータの永続化インターフェース。
type CategoryRepository interface {
	// Create はカテゴリを作成し、採番されたIDをcategoryに書き戻す。
	Create(ctx context.Context, category *model.Category) error

	// FindByID は指定IDのカテゴリを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Category, error)

	// ListByUserID はユーザーのカテゴリ一覧を返す。
	ListByUserID(ctx context.Context, userID int64) ([]*model.Category, error)

	// Update はカテゴリを更新する。
	Update(ctx context.Context, category *model.Category) error

	// Delete は指定IDのカテゴリを削除する。
	Delete(ctx context.Context, id int64) error
}

// JournalEntryRepository は日記エントリデータの永続化インターフェース。
type JournalEntryRepository interface {
	// Create はエントリを作成し、採番されたIDをentryに書き戻す。
	Create(ctx context.Context, entry *model.JournalEntry) error

	// FindByID は指定IDのエントリを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.JournalEntry, error)

	// ListByUserID はユーザーのエントリ一覧をentry_date降順で返す。
	ListByUserID(ctx context.Context, userID int64) ([]*model.JournalEntry, error)

	// Update はエントリを更新し、updated_atを現在時刻に進める。
	Update(ctx context.Context, entry *model.JournalEntry) error

	// Delete は指定IDのエントリを削除する。
	Delete(ctx context.Context, id int64) error
}
