package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrvvsreddy/school-p1/internal/models"
)

type PageHandler struct {
	DB *gorm.DB
}

// GetPage returns the active sections of one public page keyed by section.
func (h *PageHandler) GetPage(c echo.Context) error {
	slug := c.Param("slug")

	var sections []models.PageSection
	err := h.DB.WithContext(c.Request().Context()).
		Where("page_slug = ? AND is_active = ?", slug, true).
		Order("order_index").
		Find(&sections).Error
	if err != nil {
		return internalError(c, "page lookup failed", err)
	}
	if len(sections) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Page not found")
	}

	content := map[string]datatypes.JSONMap{}
	for _, s := range sections {
		content[s.SectionKey] = s.Content
	}

	return c.JSON(http.StatusOK, echo.Map{
		"page_slug": slug,
		"sections":  content,
	})
}

// GetFullContent returns every active section of every page in one payload,
// for the public site to hydrate from a single request.
func (h *PageHandler) GetFullContent(c echo.Context) error {
	var sections []models.PageSection
	err := h.DB.WithContext(c.Request().Context()).
		Where("is_active = ?", true).
		Order("page_slug, order_index").
		Find(&sections).Error
	if err != nil {
		return internalError(c, "content lookup failed", err)
	}

	pages := map[string]map[string]datatypes.JSONMap{}
	for _, s := range sections {
		if pages[s.PageSlug] == nil {
			pages[s.PageSlug] = map[string]datatypes.JSONMap{}
		}
		pages[s.PageSlug][s.SectionKey] = s.Content
	}

	return c.JSON(http.StatusOK, echo.Map{"pages": pages})
}

type sectionRequest struct {
	Content    datatypes.JSONMap `json:"content"`
	OrderIndex *int              `json:"order_index"`
	IsActive   *bool             `json:"is_active"`
}

func (h *PageHandler) upsertSection(c echo.Context, slug, key string, req sectionRequest) (*models.PageSection, error) {
	section := models.PageSection{
		PageSlug:   slug,
		SectionKey: key,
		Content:    req.Content,
		IsActive:   true,
	}
	if req.OrderIndex != nil {
		section.OrderIndex = *req.OrderIndex
	}
	if req.IsActive != nil {
		section.IsActive = *req.IsActive
	}

	err := h.DB.WithContext(c.Request().Context()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "page_slug"}, {Name: "section_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"content", "order_index", "is_active", "updated_at"}),
		}).
		Create(&section).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

// UpsertSection writes one section of a page, creating it when absent.
func (h *PageHandler) UpsertSection(c echo.Context) error {
	slug := strings.TrimSpace(c.Param("slug"))
	key := strings.TrimSpace(c.Param("section"))
	if slug == "" || key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Page slug and section key are required")
	}

	var req sectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Content == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Content is required")
	}

	section, err := h.upsertSection(c, slug, key, req)
	if err != nil {
		return internalError(c, "section upsert failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "section": section})
}

type batchSectionRequest struct {
	Sections map[string]sectionRequest `json:"sections"`
}

// BatchUpsert writes several sections of one page in a single transaction.
func (h *PageHandler) BatchUpsert(c echo.Context) error {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Page slug is required")
	}

	var req batchSectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if len(req.Sections) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "At least one section is required")
	}

	err := h.DB.WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
		for key, sec := range req.Sections {
			section := models.PageSection{
				PageSlug:   slug,
				SectionKey: key,
				Content:    sec.Content,
				IsActive:   true,
			}
			if sec.OrderIndex != nil {
				section.OrderIndex = *sec.OrderIndex
			}
			if sec.IsActive != nil {
				section.IsActive = *sec.IsActive
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "page_slug"}, {Name: "section_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"content", "order_index", "is_active", "updated_at"}),
			}).Create(&section).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return internalError(c, "batch section upsert failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Sections updated",
		"count":   len(req.Sections),
	})
}
