package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/daybook/internal/model"
)

// PostgresEntryRepo はPostgreSQLを使用した日記エントリリポジトリ。
type PostgresEntryRepo struct {
	db *sql.DB
}

// NewPostgresEntryRepo はPostgresEntryRepoを生成する。
func NewPostgresEntryRepo(db *sql.DB) *PostgresEntryRepo {
	return &PostgresEntryRepo{db: db}
}

// Create はエントリを作成し、採番されたIDをentryに書き戻す。
func (r *PostgresEntryRepo) Create(ctx context.Context, entry *model.JournalEntry) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO journal_entries (title, content, category_id, entry_date, user_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		entry.Title, entry.Content, entry.CategoryID, entry.EntryDate, entry.UserID,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert journal entry: %w", err)
	}

	return nil
}

// FindByID は指定IDのエントリを取得する。見つからない場合はnilを返す。
func (r *PostgresEntryRepo) FindByID(ctx context.Context, id int64) (*model.JournalEntry, error) {
	entry := &model.JournalEntry{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, content, category_id, entry_date, user_id, created_at, updated_at
		 FROM journal_entries WHERE id = $1`,
		id,
	).Scan(&entry.ID, &entry.Title, &entry.Content, &entry.CategoryID,
		&entry.EntryDate, &entry.UserID, &entry.CreatedAt, &entry.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find journal entry by ID: %w", err)
	}

	return entry, nil
}

// ListByUserID はユーザーのエントリ一覧をentry_date降順で返す。
func (r *PostgresEntryRepo) ListByUserID(ctx context.Context, userID int64) ([]*model.JournalEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, content, category_id, entry_date, user_id, created_at, updated_at
		 FROM journal_entries WHERE user_id = $1 ORDER BY entry_date DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer rows.Close()

	entries := []*model.JournalEntry{}
	for rows.Next() {
		entry := &model.JournalEntry{}
		if err := rows.Scan(&entry.ID, &entry.Title, &entry.Content, &entry.CategoryID,
			&entry.EntryDate, &entry.UserID, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate journal entries: %w", err)
	}

	return entries, nil
}

// Update はエントリを更新し、updated_atを現在時刻に進める。
func (r *PostgresEntryRepo) Update(ctx context.Context, entry *model.JournalEntry) error {
	err := r.db.QueryRowContext(ctx,
		`UPDATE journal_entries
		 SET title = $1, content = $2, category_id = $3, entry_date = $4, updated_at = now()
		 WHERE id = $5
		 RETURNING updated_at`,
		entry.Title, entry.Content, entry.CategoryID, entry.EntryDate, entry.ID,
	).Scan(&entry.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("journal entry not found: %d", entry.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update journal entry: %w", err)
	}

	return nil
}

// Delete は指定IDのエントリを削除する。
func (r *PostgresEntryRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM journal_entries WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("journal entry not found: %d", id)
	}

	return nil
}

// compile-time interface check
var _ JournalEntryRepository = (*PostgresEntryRepo)(nil)
