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

type TeacherHandler struct {
	DB *gorm.DB
}

type teacherRequest struct {
	Name         *string           `json:"name"`
	EmployeeID   *string           `json:"employee_id"`
	Subject      *string           `json:"subject"`
	Department   *string           `json:"department"`
	Designation  *string           `json:"designation"`
	JoinDate     *time.Time        `json:"join_date"`
	PhotoURL     *string           `json:"photo_url"`
	Status       *string           `json:"status"`
	PersonalInfo datatypes.JSONMap `json:"personal_info"`
	IsActive     *bool             `json:"is_active"`
}

func (h *TeacherHandler) List(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("page_size"), 50)
	offset, limit := util.Calculate(page, size)

	q := h.DB.WithContext(c.Request().Context()).Model(&models.Teacher{})
	if parseBoolDefault(c.QueryParam("active_only"), true) {
		q = q.Where("is_active = ?", true)
	}
	if subject := c.QueryParam("subject"); subject != "" {
		q = q.Where("subject = ?", subject)
	}
	if status := c.QueryParam("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if dept := c.QueryParam("department"); dept != "" {
		q = q.Where("department = ?", dept)
	}
	if search := strings.TrimSpace(c.QueryParam("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(subject) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return internalError(c, "teacher count failed", err)
	}

	var teachers []models.Teacher
	if err := q.Order("name").Offset(offset).Limit(limit).Find(&teachers).Error; err != nil {
		return internalError(c, "teacher list failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"teachers":  teachers,
		"total":     total,
		"page":      page,
		"page_size": limit,
	})
}

func (h *TeacherHandler) Get(c echo.Context) error {
	id, err := pathID(c, "Teacher not found")
	if err != nil {
		return err
	}

	var teacher models.Teacher
	err = h.DB.WithContext(c.Request().Context()).
		Where("id = ?", id).
		First(&teacher).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Teacher not found")
		}
		return internalError(c, "teacher lookup failed", err)
	}
	return c.JSON(http.StatusOK, teacher)
}

func (h *TeacherHandler) Create(c echo.Context) error {
	var req teacherRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" ||
		req.EmployeeID == nil || *req.EmployeeID == "" ||
		req.Subject == nil || *req.Subject == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name, employee_id and subject are required")
	}

	teacher := models.Teacher{
		Name:         strings.TrimSpace(*req.Name),
		EmployeeID:   *req.EmployeeID,
		Subject:      *req.Subject,
		JoinDate:     req.JoinDate,
		PersonalInfo: req.PersonalInfo,
		Status:       "Active",
		IsActive:     true,
	}
	if req.Department != nil {
		teacher.Department = *req.Department
	}
	if req.Designation != nil {
		teacher.Designation = *req.Designation
	}
	if req.PhotoURL != nil {
		teacher.PhotoURL = *req.PhotoURL
	}
	if req.Status != nil {
		teacher.Status = *req.Status
	}
	if req.IsActive != nil {
		teacher.IsActive = *req.IsActive
	}

	if err := h.DB.WithContext(c.Request().Context()).Create(&teacher).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return echo.NewHTTPError(http.StatusBadRequest, "Teacher with this employee ID already exists")
		}
		return internalError(c, "teacher create failed", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "teacher": teacher})
}

func (h *TeacherHandler) Update(c echo.Context) error {
	id, err := pathID(c, "Teacher not found")
	if err != nil {
		return err
	}

	var teacher models.Teacher
	err = h.DB.WithContext(c.Request().Context()).
		Where("id = ?", id).
		First(&teacher).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Teacher not found")
		}
		return internalError(c, "teacher lookup failed", err)
	}

	var req teacherRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if req.Name != nil {
		teacher.Name = strings.TrimSpace(*req.Name)
	}
	if req.EmployeeID != nil {
		teacher.EmployeeID = *req.EmployeeID
	}
	if req.Subject != nil {
		teacher.Subject = *req.Subject
	}
	if req.Department != nil {
		teacher.Department = *req.Department
	}
	if req.Designation != nil {
		teacher.Designation = *req.Designation
	}
	if req.JoinDate != nil {
		teacher.JoinDate = req.JoinDate
	}
	if req.PhotoURL != nil {
		teacher.PhotoURL = *req.PhotoURL
	}
	if req.Status != nil {
		teacher.Status = *req.Status
	}
	if req.PersonalInfo != nil {
		teacher.PersonalInfo = req.PersonalInfo
	}
	if req.IsActive != nil {
		teacher.IsActive = *req.IsActive
	}

	if err := h.DB.WithContext(c.Request().Context()).Save(&teacher).Error; err != nil {
		return internalError(c, "teacher update failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "teacher": teacher})
}

func (h *TeacherHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "Teacher not found")
	if err != nil {
		return err
	}

	res := h.DB.WithContext(c.Request().Context()).
		Where("id = ?", id).
		Delete(&models.Teacher{})
	if res.Error != nil {
		return internalError(c, "teacher delete failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Teacher not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Teacher deleted"})
}
