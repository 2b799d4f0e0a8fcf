package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"subvention/internal/db"
	"subvention/internal/metrics"
	"subvention/internal/middleware"
	"subvention/internal/models"
	"subvention/internal/validation"
)

// KeywordStore is the exclusion keyword workflow as seen by the API.
type KeywordStore interface {
	ApplyExclusionKeyword(ctx context.Context, name, description string) (*models.ApplyResult, error)
	RevokeExclusionKeyword(ctx context.Context, id int64) (*models.RevokeResult, error)
	ListActiveKeywords(ctx context.Context) ([]models.ExclusionKeyword, error)
	GetKeyword(ctx context.Context, id int64) (*models.ExclusionKeyword, error)
	FindExcludedBy(ctx context.Context, keyword string) ([]models.AnnouncementSummary, error)
	ListKeywordEvents(ctx context.Context, keywordID int64) ([]models.KeywordEvent, error)
}

// KeywordHandler handles exclusion keyword operations via JSON API.
type KeywordHandler struct {
	store KeywordStore
}

// NewKeywordHandler creates a new API exclusion keyword handler.
func NewKeywordHandler(store KeywordStore) *KeywordHandler {
	return &KeywordHandler{store: store}
}

// Apply registers an exclusion keyword and excludes matching announcements.
func (h *KeywordHandler) Apply(c fiber.Ctx) error {
	var body struct {
		Keyword     string `json:"keyword"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	started := time.Now()
	result, err := h.store.ApplyExclusionKeyword(c.Context(), body.Keyword, body.Description)
	metrics.ObserveOperation("apply", outcome(err), started)
	if err != nil {
		return keywordError(c, "apply", err)
	}
	metrics.RecordApply(result)

	slog.Info("exclusion keyword applied",
		"keyword", result.Keyword,
		"keyword_id", result.KeywordID,
		"affected", result.AffectedCount,
		"updated", result.UpdatedCount,
		"deactivated", result.DeactivatedCount,
		"actor", middleware.Subject(c),
	)
	return jsonCreated(c, result)
}

// List returns active exclusion keywords with live exclusion counts.
func (h *KeywordHandler) List(c fiber.Ctx) error {
	keywords, err := h.store.ListActiveKeywords(c.Context())
	if err != nil {
		return keywordError(c, "list", err)
	}
	if keywords == nil {
		keywords = []models.ExclusionKeyword{}
	}
	return jsonSuccess(c, keywords)
}

// Get returns a keyword with the announcements it currently excludes.
func (h *KeywordHandler) Get(c fiber.Ctx) error {
	id, ok := validation.ParseID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid keyword id")
	}

	keyword, err := h.store.GetKeyword(c.Context(), id)
	if err != nil {
		return keywordError(c, "get", err)
	}

	announcements, err := h.store.FindExcludedBy(c.Context(), keyword.Name)
	if err != nil {
		return keywordError(c, "get", err)
	}
	events, err := h.store.ListKeywordEvents(c.Context(), id)
	if err != nil {
		return keywordError(c, "get", err)
	}

	detail := models.KeywordDetail{
		Keyword:       keyword,
		Announcements: announcements,
		Events:        events,
	}
	if detail.Announcements == nil {
		detail.Announcements = []models.AnnouncementSummary{}
	}
	if detail.Events == nil {
		detail.Events = []models.KeywordEvent{}
	}
	return jsonSuccess(c, detail)
}

// Revoke removes an exclusion keyword and restores announcements it alone excluded.
func (h *KeywordHandler) Revoke(c fiber.Ctx) error {
	id, ok := validation.ParseID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid keyword id")
	}

	started := time.Now()
	result, err := h.store.RevokeExclusionKeyword(c.Context(), id)
	metrics.ObserveOperation("revoke", outcome(err), started)
	if err != nil {
		return keywordError(c, "revoke", err)
	}
	metrics.RecordRevoke(result)

	slog.Info("exclusion keyword revoked",
		"keyword", result.Keyword,
		"keyword_id", result.KeywordID,
		"restored", result.RestoredCount,
		"untagged", result.UntaggedCount,
		"actor", middleware.Subject(c),
	)
	return jsonSuccess(c, result)
}

// keywordError maps workflow errors to HTTP responses.
func keywordError(c fiber.Ctx, op string, err error) error {
	switch {
	case db.IsValidationError(err):
		return jsonError(c, fiber.StatusBadRequest, validationMessage(err))
	case errors.Is(err, db.ErrKeywordActive):
		return jsonError(c, fiber.StatusConflict, "keyword is already registered")
	case errors.Is(err, db.ErrKeywordNotFound):
		return jsonError(c, fiber.StatusNotFound, "exclusion keyword not found")
	}

	slog.Error("exclusion keyword operation failed", "op", op, "error", err, "retryable", db.IsStorageError(err))
	return jsonError(c, fiber.StatusInternalServerError, "failed to "+op+" exclusion keyword")
}

// validationMessage returns the user-facing part of a validation error.
func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), db.ErrKeywordInvalid.Error()+": ")
}

// outcome classifies err for the operation metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case db.IsValidationError(err):
		return metrics.OutcomeValidation
	case errors.Is(err, db.ErrKeywordActive):
		return metrics.OutcomeConflict
	case errors.Is(err, db.ErrKeywordNotFound):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeStorage
	}
}
