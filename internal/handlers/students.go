package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mrvvsreddy/school-p1/internal/models"
	"github.com/mrvvsreddy/school-p1/internal/util"
)

type StudentHandler struct {
	DB *gorm.DB
}

type studentRequest struct {
	Name          *string           `json:"name"`
	RollNo        *string           `json:"roll_no"`
	ClassName     *string           `json:"class"`
	Section       *string           `json:"section"`
	AdmissionNo   *string           `json:"admission_no"`
	AdmissionDate *time.Time        `json:"admission_date"`
	PhotoURL      *string           `json:"photo_url"`
	PersonalInfo  datatypes.JSONMap `json:"personal_info"`
	IsActive      *bool             `json:"is_active"`
}

func (h *StudentHandler) List(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("page_size"), 50)
	offset, limit := util.Calculate(page, size)

	q := h.DB.WithContext(c.Request().Context()).Model(&models.Student{})
	if parseBoolDefault(c.QueryParam("active_only"), true) {
		q = q.Where("is_active = ?", true)
	}
	if class := c.QueryParam("class"); class != "" {
		q = q.Where("class_name = ?", class)
	}
	if search := strings.TrimSpace(c.QueryParam("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(roll_no) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return internalError(c, "student count failed", err)
	}

	var students []models.Student
	if err := q.Order("name").Offset(offset).Limit(limit).Find(&students).Error; err != nil {
		return internalError(c, "student list failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"students":  students,
		"total":     total,
		"page":      page,
		"page_size": limit,
	})
}

func (h *StudentHandler) Get(c echo.Context) error {
	id, err := pathID(c, "Student not found")
	if err != nil {
		return err
	}

	var student models.Student
	err = h.DB.WithContext(c.Request().Context()).
		Where("id = ?", id).
		First(&student).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Student not found")
		}
		return internalError(c, "student lookup failed", err)
	}
	return c.JSON(http.StatusOK, student)
}

func (h *StudentHandler) Create(c echo.Context) error {
	var req studentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" ||
		req.RollNo == nil || *req.RollNo == "" ||
		req.ClassName == nil || *req.ClassName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name, roll_no and class are required")
	}

	student := models.Student{
		Name:         strings.TrimSpace(*req.Name),
		RollNo:       *req.RollNo,
		ClassName:    *req.ClassName,
		PersonalInfo: req.PersonalInfo,
		IsActive:     true,
	}
	if req.Section != nil {
		student.Section = *req.Section
	}
	if req.AdmissionNo != nil {
		student.AdmissionNo = *req.AdmissionNo
	}
	student.AdmissionDate = req.AdmissionDate
	if req.PhotoURL != nil {
		student.PhotoURL = *req.PhotoURL
	}
	if req.IsActive != nil {
		student.IsActive = *req.IsActive
	}

	if err := h.DB.WithContext(c.Request().Context()).Create(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return echo.NewHTTPError(http.StatusBadRequest, "Student with this roll number already exists")
		}
		return internalError(c, "student create failed", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "student": student})
}

func (h *StudentHandler) Update(c echo.Context) error {
	id, err := pathID(c, "Student not found")
	if err != nil {
		return err
	}

	var student models.Student
	err = h.DB.WithContext(c.Request().Context()).
		Where("id = ?", id).
		First(&student).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Student not found")
		}
		return internalError(c, "student lookup failed", err)
	}

	var req studentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if req.Name != nil {
		student.Name = strings.TrimSpace(*req.Name)
	}
	if req.RollNo != nil {
		student.RollNo = *req.RollNo
	}
	if req.ClassName != nil {
		student.ClassName = *req.ClassName
	}
	if req.Section != nil {
		student.Section = *req.Section
	}
	if req.AdmissionNo != nil {
		student.AdmissionNo = *req.AdmissionNo
	}
	if req.AdmissionDate != nil {
		student.AdmissionDate = req.AdmissionDate
	}
	if req.PhotoURL != nil {
		student.PhotoURL = *req.PhotoURL
	}
	if req.PersonalInfo != nil {
		student.PersonalInfo = req.PersonalInfo
	}
	if req.IsActive != nil {
		student.IsActive = *req.IsActive
	}

	if err := h.DB.WithContext(c.Request().Context()).Save(&student).Error; err != nil {
		return internalError(c, "student update failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "student": student})
}

func (h *StudentHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "Student not found")
	if err != nil {
		return err
	}

	res := h.DB.WithContext(c.Request().Context()).
		Where("id = ?", id).
		Delete(&models.Student{})
	if res.Error != nil {
		return internalError(c, "student delete failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Student not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Student deleted"})
}
