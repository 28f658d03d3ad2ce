package repository

import (
	"testing"
	"time"

	"github.com/hitoshi/daybook/internal/model"
)

// PostgresUserRepoはUserRepositoryインターフェースを満たすことを検証
func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
}

// PostgresCategoryRepoはCategoryRepositoryインターフェースを満たすことを検証
func TestPostgresCategoryRepo_ImplementsInterface(t *testing.T) {
	var _ CategoryRepository = (*PostgresCategoryRepo)(nil)
}

// PostgresEntryRepoはJournalEntryRepositoryインターフェースを満たすことを検証
func TestPostgresEntryRepo_ImplementsInterface(t *testing.T) {
	var _ JournalEntryRepository = (*PostgresEntryRepo)(nil)
}

// NewPostgresUserRepoが正しく初期化されることを検証
func TestNewPostgresUserRepo_Initializes(t *testing.T) {
	repo := NewPostgresUserRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// NewPostgresCategoryRepoが正しく初期化されることを検証
func TestNewPostgresCategoryRepo_Initializes(t *testing.T) {
	repo := NewPostgresCategoryRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// NewPostgresEntryRepoが正しく初期化されることを検証
func TestNewPostgresEntryRepo_Initializes(t *testing.T) {
	repo := NewPostgresEntryRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// Userモデルのフィールドが正しく構築されることを検証
func TestUserModel_Fields(t *testing.T) {
	now := time.Now()
	user := &model.User{
		ID:           1,
		Username:     "alice",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		CreatedAt:    now,
	}

	if user.ID != 1 {
		t.Errorf("user.ID = %d, want 1", user.ID)
	}
	if user.Username != "alice" {
		t.Errorf("user.Username = %q, want %q", user.Username, "alice")
	}
	if user.CreatedAt != now {
		t.Errorf("user.CreatedAt = %v, want %v", user.CreatedAt, now)
	}
}

// JournalEntryのCategoryIDがnil許容であることを検証
func TestJournalEntryModel_NilCategory(t *testing.T) {
	entry := &model.JournalEntry{
		ID:    1,
		Title: "無題",
	}

	if entry.CategoryID != nil {
		t.Error("category_id should be nil by default")
	}
}
