package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/daybook/internal/journal"
	"github.com/hitoshi/daybook/internal/middleware"
	"github.com/hitoshi/daybook/internal/model"
)

// EntryServiceInterface はエントリハンドラーが必要とするサービスインターフェース。
type EntryServiceInterface interface {
	CreateEntry(ctx context.Context, userID int64, input journal.CreateEntryInput) (*model.JournalEntry, error)
	ListEntries(ctx context.Context, userID int64) ([]*model.JournalEntry, error)
	GetEntry(ctx context.Context, userID, entryID int64) (*model.JournalEntry, error)
	UpdateEntry(ctx context.Context, userID, entryID int64, input journal.UpdateEntryInput) (*model.JournalEntry, error)
	DeleteEntry(ctx context.Context, userID, entryID int64) error
}

// EntryHandler は日記エントリのHTTPハンドラー。
type EntryHandler struct {
	service EntryServiceInterface
}

// NewEntryHandler はEntryHandlerを生成する。
func NewEntryHandler(service EntryServiceInterface) *EntryHandler {
	return &EntryHandler{service: service}
}

// entryRequest はエントリ作成・更新リクエストのボディ。
type entryRequest struct {
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	CategoryID *int64     `json:"categoryId"`
	EntryDate  *time.Time `json:"entryDate"`
}

// entryResponse は日記エントリのAPIレスポンス。
type entryResponse struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CategoryID *int64    `json:"categoryId"`
	EntryDate  time.Time `json:"entryDate"`
	UserID     int64     `json:"userId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ListEntries はユーザーのエントリ一覧を返す。
// GET /api/entries
func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthenticated(w)
		return
	}

	entries, err := h.service.ListEntries(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]entryResponse, len(entries))
	for i, entry := range entries {
		results[i] = toEntryResponse(entry)
	}

	writeJSONResponse(w, http.StatusOK, results)
}

// CreateEntry は日記エントリを作成する。
// POST /api/entries
func (h *EntryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthenticated(w)
		return
	}

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	input := journal.CreateEntryInput{
		Title:      req.Title,
		Content:    req.Content,
		CategoryID: req.CategoryID,
	}
	if req.EntryDate != nil {
		input.EntryDate = *req.EntryDate
	}

	entry, err := h.service.CreateEntry(r.Context(), userID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, toEntryResponse(entry))
}

// GetEntry は指定IDのエントリを返す。
// GET /api/entries/{id}
func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthenticated(w)
		return
	}

	entryID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	entry, err := h.service.GetEntry(r.Context(), userID, entryID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toEntryResponse(entry))
}

// UpdateEntry は指定IDのエントリを更新する。
// PUT /api/entries/{id}
func (h *EntryHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthenticated(w)
		return
	}

	entryID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	input := journal.UpdateEntryInput{
		Title:      req.Title,
		Content:    req.Content,
		CategoryID: req.CategoryID,
	}
	if req.EntryDate != nil {
		input.EntryDate = *req.EntryDate
	}

	entry, err := h.service.UpdateEntry(r.Context(), userID, entryID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toEntryResponse(entry))
}

// DeleteEntry は指定IDのエントリを削除する。
// DELETE /api/entries/{id}
func (h *EntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthenticated(w)
		return
	}

	entryID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteEntry(r.Context(), userID, entryID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseIDParam はURLパラメータのidをint64に変換する。失敗時は400を書き込む。
func parseIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("IDは正の整数で指定してください"))
		return 0, false
	}
	return id, true
}

// toEntryResponse はmodel.JournalEntryからAPIレスポンスに変換する。
func toEntryResponse(entry *model.JournalEntry) entryResponse {
	return entryResponse{
		ID:         entry.ID,
		Title:      entry.Title,
		Content:    entry.Content,
		CategoryID: entry.CategoryID,
		EntryDate:  entry.EntryDate,
		UserID:     entry.UserID,
		CreatedAt:  entry.CreatedAt,
		UpdatedAt:  entry.UpdatedAt,
	}
}
