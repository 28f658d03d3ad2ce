// Package journal は日記エントリ管理のドメインロジックを提供する。
package journal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/daybook/internal/model"
	"github.com/hitoshi/daybook/internal/repository"
	"github.com/hitoshi/daybook/internal/security"
)

// CreateEntryInput はエントリ作成の入力。
type CreateEntryInput struct {
	Title      string
	Content    string
	CategoryID *int64
	EntryDate  time.Time
}

// UpdateEntryInput はエントリ更新の入力。
type UpdateEntryInput struct {
	Title      string
	Content    string
	CategoryID *int64
	EntryDate  time.Time
}

// Service は日記エントリのサービス層。
// 所有権チェック、入力検証、本文サニタイズのビジネスロジックを提供する。
type Service struct {
	entryRepo    repository.JournalEntryRepository
	categoryRepo repository.CategoryRepository
	sanitizer    security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	entryRepo repository.JournalEntryRepository,
	categoryRepo repository.CategoryRepository,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		entryRepo:    entryRepo,
		categoryRepo: categoryRepo,
		sanitizer:    sanitizer,
	}
}

// CreateEntry は日記エントリを作成する。
// 本文は保存前にサニタイズされる。カテゴリ指定がある場合は
// そのカテゴリが呼び出しユーザーのものであることを確認する。
func (s *Service) CreateEntry(ctx context.Context, userID int64, input CreateEntryInput) (*model.JournalEntry, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, model.NewInvalidRequestError("タイトルは必須です")
	}

	if input.CategoryID != nil {
		if err := s.verifyCategoryOwnership(ctx, userID, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	entryDate := input.EntryDate
	if entryDate.IsZero() {
		entryDate = time.Now()
	}

	entry := &model.JournalEntry{
		Title:      strings.TrimSpace(input.Title),
		Content:    s.sanitizer.Sanitize(input.Content),
		CategoryID: input.CategoryID,
		EntryDate:  entryDate,
		UserID:     userID,
	}

	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("エントリの作成に失敗しました: %w", err)
	}

	return entry, nil
}

// ListEntries はユーザーのエントリ一覧をentry_date降順で返す。
func (s *Service) ListEntries(ctx context.Context, userID int64) ([]*model.JournalEntry, error) {
	entries, err := s.entryRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("エントリ一覧の取得に失敗しました: %w", err)
	}
	return entries, nil
}

// GetEntry は指定IDのエントリを返す。
// 存在しない場合も他ユーザーのエントリの場合も同じ未検出エラーを返す
// （他ユーザーのエントリの存在を漏らさない）。
func (s *Service) GetEntry(ctx context.Context, userID, entryID int64) (*model.JournalEntry, error) {
	return s.findOwnedEntry(ctx, userID, entryID)
}

// UpdateEntry は指定IDのエントリを更新する。
func (s *Service) UpdateEntry(ctx context.Context, userID, entryID int64, input UpdateEntryInput) (*model.JournalEntry, error) {
	entry, err := s.findOwnedEntry(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Title) == "" {
		return nil, model.NewInvalidRequestError("タイトルは必須です")
	}

	if input.CategoryID != nil {
		if err := s.verifyCategoryOwnership(ctx, userID, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	entry.Title = strings.TrimSpace(input.Title)
	entry.Content = s.sanitizer.Sanitize(input.Content)
	entry.CategoryID = input.CategoryID
	if !input.EntryDate.IsZero() {
		entry.EntryDate = input.EntryDate
	}

	if err := s.entryRepo.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("エントリの更新に失敗しました: %w", err)
	}

	return entry, nil
}

// DeleteEntry は指定IDのエントリを削除する。
func (s *Service) DeleteEntry(ctx context.Context, userID, entryID int64) error {
	if _, err := s.findOwnedEntry(ctx, userID, entryID); err != nil {
		return err
	}

	if err := s.entryRepo.Delete(ctx, entryID); err != nil {
		return fmt.Errorf("エントリの削除に失敗しました: %w", err)
	}

	return nil
}

// findOwnedEntry はエントリを取得し、呼び出しユーザーの所有物であることを確認する。
func (s *Service) findOwnedEntry(ctx context.Context, userID, entryID int64) (*model.JournalEntry, error) {
	entry, err := s.entryRepo.FindByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("エントリの取得に失敗しました: %w", err)
	}
	if entry == nil || entry.UserID != userID {
		return nil, model.NewEntryNotFoundError(entryID)
	}
	return entry, nil
}

// verifyCategoryOwnership はカテゴリが呼び出しユーザーのものであることを確認する。
func (s *Service) verifyCategoryOwnership(ctx context.Context, userID, categoryID int64) error {
	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("カテゴリの取得に失敗しました: %w", err)
	}
	if category == nil || category.UserID != userID {
		return model.NewCategoryNotFoundError(categoryID)
	}
	return nil
}
