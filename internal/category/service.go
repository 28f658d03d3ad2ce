// Package category はカテゴリ管理のドメインロジックを提供する。
package category

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hitoshi/daybook/internal/model"
	"github.com/hitoshi/daybook/internal/repository"
)

// colorPattern はカテゴリ色の形式（#RRGGBB）。
var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// CreateCategoryInput はカテゴリ作成の入力。
type CreateCategoryInput struct {
	Name  string
	Color string
	Icon  string
}

// UpdateCategoryInput はカテゴリ更新の入力。
type UpdateCategoryInput struct {
	Name  string
	Color string
	Icon  string
}

// Service はカテゴリのサービス層。
// 所有権チェックと入力検証のビジネスロジックを提供する。
type Service struct {
	categoryRepo repository.CategoryRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(categoryRepo repository.CategoryRepository) *Service {
	return &Service{categoryRepo: categoryRepo}
}

// CreateCategory はカテゴリを作成する。ユーザー作成のカテゴリは編集可能。
func (s *Service) CreateCategory(ctx context.Context, userID int64, input CreateCategoryInput) (*model.Category, error) {
	if err := validateCategoryInput(input.Name, input.Color); err != nil {
		return nil, err
	}

	category := &model.Category{
		Name:       strings.TrimSpace(input.Name),
		Color:      input.Color,
		Icon:       input.Icon,
		IsEditable: true,
		UserID:     userID,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("カテゴリの作成に失敗しました: %w", err)
	}

	return category, nil
}

// ListCategories はユーザーのカテゴリ一覧を返す。
func (s *Service) ListCategories(ctx context.Context, userID int64) ([]*model.Category, error) {
	categories, err := s.categoryRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("カテゴリ一覧の取得に失敗しました: %w", err)
	}
	return categories, nil
}

// GetCategory は指定IDのカテゴリを返す。
// 存在しない場合も他ユーザーのカテゴリの場合も同じ未検出エラーを返す。
func (s *Service) GetCategory(ctx context.Context, userID, categoryID int64) (*model.Category, error) {
	return s.findOwnedCategory(ctx, userID, categoryID)
}

// UpdateCategory は指定IDのカテゴリを更新する。
// 編集不可のカテゴリ（既定カテゴリ）は更新できない。
func (s *Service) UpdateCategory(ctx context.Context, userID, categoryID int64, input UpdateCategoryInput) (*model.Category, error) {
	category, err := s.findOwnedCategory(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	if !category.IsEditable {
		return nil, model.NewInvalidRequestError("このカテゴリは編集できません")
	}

	if err := validateCategoryInput(input.Name, input.Color); err != nil {
		return nil, err
	}

	category.Name = strings.TrimSpace(input.Name)
	category.Color = input.Color
	category.Icon = input.Icon

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("カテゴリの更新に失敗しました: %w", err)
	}

	return category, nil
}

// DeleteCategory は指定IDのカテゴリを削除する。
// 編集不可のカテゴリは削除できない。
// カテゴリを参照しているエントリのcategory_idはDBの外部キーによりNULLになる。
func (s *Service) DeleteCategory(ctx context.Context, userID, categoryID int64) error {
	category, err := s.findOwnedCategory(ctx, userID, categoryID)
	if err != nil {
		return err
	}

	if !category.IsEditable {
		return model.NewInvalidRequestError("このカテゴリは削除できません")
	}

	if err := s.categoryRepo.Delete(ctx, categoryID); err != nil {
		return fmt.Errorf("カテゴリの削除に失敗しました: %w", err)
	}

	return nil
}

// findOwnedCategory はカテゴリを取得し、呼び出しユーザーの所有物であることを確認する。
func (s *Service) findOwnedCategory(ctx context.Context, userID, categoryID int64) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("カテゴリの取得に失敗しました: %w", err)
	}
	if category == nil || category.UserID != userID {
		return nil, model.NewCategoryNotFoundError(categoryID)
	}
	return category, nil
}

// validateCategoryInput はカテゴリ入力の検証を行う。
func validateCategoryInput(name, color string) error {
	if strings.TrimSpace(name) == "" {
		return model.NewInvalidRequestError("カテゴリ名は必須です")
	}
	if color != "" && !colorPattern.MatchString(color) {
		return model.NewInvalidRequestError("カテゴリ色は#RRGGBB形式で指定してください")
	}
	return nil
}
