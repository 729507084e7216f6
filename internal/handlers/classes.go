package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mrvvsreddy/school-p1/internal/models"
)

type ClassHandler struct {
	DB *gorm.DB
}

type classRequest struct {
	ClassName      *string `json:"class"`
	Section        *string `json:"section"`
	ClassTeacherID *string `json:"class_teacher_id"`
	Capacity       *int    `json:"capacity"`
	Room           *string `json:"room"`
	AcademicYear   *string `json:"academic_year"`
	IsActive       *bool   `json:"is_active"`
}

func (h *ClassHandler) List(c echo.Context) error {
	q := h.DB.WithContext(c.Request().Context()).Model(&models.Class{})
	if parseBoolDefault(c.QueryParam("active_only"), true) {
		q = q.Where("is_active = ?", true)
	}
	if year := c.QueryParam("academic_year"); year != "" {
		q = q.Where("academic_year = ?", year)
	}

	var classes []models.Class
	if err := q.Order("class_name, section").Find(&classes).Error; err != nil {
		return internalError(c, "class list failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"classes": classes, "total": len(classes)})
}

func (h *ClassHandler) Get(c echo.Context) error {
	id, err := pathID(c, "Class not found")
	if err != nil {
		return err
	}

	var class models.Class
	err = h.DB.WithContext(c.Request().Context()).
		Where("id = ?", id).
		First(&class).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Class not found")
		}
		return internalError(c, "class lookup failed", err)
	}
	return c.JSON(http.StatusOK, class)
}

func (h *ClassHandler) Create(c echo.Context) error {
	var req classRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.ClassName == nil || strings.TrimSpace(*req.ClassName) == "" ||
		req.Section == nil || *req.Section == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Class and section are required")
	}

	class := models.Class{
		ClassName: strings.TrimSpace(*req.ClassName),
		Section:   *req.Section,
		Capacity:  40,
		IsActive:  true,
	}
	if req.ClassTeacherID != nil {
		class.ClassTeacherID = *req.ClassTeacherID
	}
	if req.Capacity != nil {
		class.Capacity = *req.Capacity
	}
	if req.Room != nil {
		class.Room = *req.Room
	}
	if req.AcademicYear != nil {
		class.AcademicYear = *req.AcademicYear
	}
	if req.IsActive != nil {
		class.IsActive = *req.IsActive
	}

	if err := h.DB.WithContext(c.Request().Context()).Create(&class).Error; err != nil {
		return internalError(c, "class create failed", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "class": class})
}

func (h *ClassHandler) Update(c echo.Context) error {
	id, err := pathID(c, "Class not found")
	if err != nil {
		return err
	}

	var class models.Class
	err = h.DB.WithContext(c.Request().Context()).
		Where("id = ?", id).
		First(&class).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Class not found")
		}
		return internalError(c, "class lookup failed", err)
	}

	var req classRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if req.ClassName != nil {
		class.ClassName = strings.TrimSpace(*req.ClassName)
	}
	if req.Section != nil {
		class.Section = *req.Section
	}
	if req.ClassTeacherID != nil {
		class.ClassTeacherID = *req.ClassTeacherID
	}
	if req.Capacity != nil {
		class.Capacity = *req.Capacity
	}
	if req.Room != nil {
		class.Room = *req.Room
	}
	if req.AcademicYear != nil {
		class.AcademicYear = *req.AcademicYear
	}
	if req.IsActive != nil {
		class.IsActive = *req.IsActive
	}

	if err := h.DB.WithContext(c.Request().Context()).Save(&class).Error; err != nil {
		return internalError(c, "class update failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "class": class})
}

func (h *ClassHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "Class not found")
	if err != nil {
		return err
	}

	res := h.DB.WithContext(c.Request().Context()).
		Where("id = ?", id).
		Delete(&models.Class{})
	if res.Error != nil {
		return internalError(c, "class delete failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Class not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Class deleted"})
}
