package api

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"subvention/internal/db"
	"subvention/internal/models"
	"subvention/internal/validation"
)

// List and search page sizes.
const (
	defaultListLimit   = 50
	maxListLimit       = 200
	defaultSearchLimit = 100
)

// AnnouncementStore is the read side of announcements and subventions.
type AnnouncementStore interface {
	ListAnnouncements(ctx context.Context, f models.AnnouncementFilter) ([]models.AnnouncementListItem, int64, error)
	SearchAnnouncements(ctx context.Context, keyword string, limit int) ([]models.AnnouncementListItem, error)
	GetAnnouncementByID(ctx context.Context, id int64) (*models.Announcement, error)
	GetSubventionByID(ctx context.Context, id int64) (*models.Subvention, error)
}

// AnnouncementHandler serves approved announcements and their subventions.
type AnnouncementHandler struct {
	store AnnouncementStore
}

// NewAnnouncementHandler creates a new API announcement handler.
func NewAnnouncementHandler(store AnnouncementStore) *AnnouncementHandler {
	return &AnnouncementHandler{store: store}
}

// List returns a filtered page of approved announcements, newest first.
func (h *AnnouncementHandler) List(c fiber.Ctx) error {
	filter := models.AnnouncementFilter{
		Title:    c.Query("title"),
		SiteType: c.Query("site_type"),
		Page:     validation.ParsePositiveInt(c.Query("page"), 1, 0),
		Limit:    validation.ParsePositiveInt(c.Query("limit"), defaultListLimit, maxListLimit),
	}

	dates := []struct {
		param string
		dst   **time.Time
	}{
		{"created_from", &filter.CreatedFrom},
		{"created_to", &filter.CreatedTo},
		{"announcement_from", &filter.AnnouncementFrom},
		{"announcement_to", &filter.AnnouncementTo},
	}
	for _, d := range dates {
		t, ok := validation.ParseDate(c.Query(d.param))
		if !ok {
			return jsonError(c, fiber.StatusBadRequest, d.param+" must be a date in YYYY-MM-DD format")
		}
		*d.dst = t
	}

	items, total, err := h.store.ListAnnouncements(c.Context(), filter)
	if err != nil {
		slog.Error("failed to list announcements", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch announcements")
	}
	if items == nil {
		items = []models.AnnouncementListItem{}
	}

	return jsonPage(c, items, models.NewPagination(filter.Page, filter.Limit, total))
}

// Search returns approved announcements whose title contains the keyword.
func (h *AnnouncementHandler) Search(c fiber.Ctx) error {
	keyword := strings.TrimSpace(c.Query("keyword"))
	if keyword == "" {
		return jsonError(c, fiber.StatusBadRequest, "keyword is required")
	}
	limit := validation.ParsePositiveInt(c.Query("limit"), defaultSearchLimit, maxListLimit)

	items, err := h.store.SearchAnnouncements(c.Context(), keyword, limit)
	if err != nil {
		slog.Error("failed to search announcements", "keyword", keyword, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to search announcements")
	}
	if items == nil {
		items = []models.AnnouncementListItem{}
	}
	return jsonSuccess(c, items)
}

// Get returns a single announcement by ID.
func (h *AnnouncementHandler) Get(c fiber.Ctx) error {
	id, ok := validation.ParseID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid announcement id")
	}

	announcement, err := h.store.GetAnnouncementByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrAnnouncementNotFound) {
			return jsonError(c, fiber.StatusNotFound, "announcement not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch announcement")
	}

	return jsonSuccess(c, announcement)
}

// GetSubvention returns a single subvention by ID.
func (h *AnnouncementHandler) GetSubvention(c fiber.Ctx) error {
	id, ok := validation.ParseID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid subvention id")
	}

	subvention, err := h.store.GetSubventionByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrSubventionNotFound) {
			return jsonError(c, fiber.StatusNotFound, "subvention not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch subvention")
	}

	return jsonSuccess(c, subvention)
}
