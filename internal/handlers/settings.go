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

type SettingHandler struct {
	DB *gorm.DB
}

func (h *SettingHandler) List(c echo.Context) error {
	q := h.DB.WithContext(c.Request().Context()).Model(&models.Setting{})
	if category := c.QueryParam("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	var settings []models.Setting
	if err := q.Order("setting_key").Find(&settings).Error; err != nil {
		return internalError(c, "settings list failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"settings": settings, "total": len(settings)})
}

type settingRequest struct {
	SettingKey   string            `json:"setting_key"`
	SettingValue datatypes.JSONMap `json:"setting_value"`
	Category     string            `json:"category"`
}

// Upsert writes a setting by key, creating it on first write.
func (h *SettingHandler) Upsert(c echo.Context) error {
	var req settingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	req.SettingKey = strings.TrimSpace(req.SettingKey)
	if req.SettingKey == "" || req.SettingValue == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "setting_key and setting_value are required")
	}

	setting := models.Setting{
		SettingKey:   req.SettingKey,
		SettingValue: req.SettingValue,
		Category:     req.Category,
	}
	err := h.DB.WithContext(c.Request().Context()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "setting_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"setting_value", "category", "updated_at"}),
		}).
		Create(&setting).Error
	if err != nil {
		return internalError(c, "setting upsert failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "setting": setting})
}
