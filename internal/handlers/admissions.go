package handlers

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mrvvsreddy/school-p1/internal/models"
	"github.com/mrvvsreddy/school-p1/internal/mykafka"
	"github.com/mrvvsreddy/school-p1/internal/util"
)

type AdmissionHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

var admissionStatuses = map[string]bool{
	"pending":     true,
	"reviewing":   true,
	"interviewed": true,
	"approved":    true,
	"rejected":    true,
}

// newApplicationID builds a human-quotable reference like APP-2026-4821.
func newApplicationID() string {
	return fmt.Sprintf("APP-%d-%04d", time.Now().UTC().Year(), rand.Intn(10000))
}

type applyRequest struct {
	StudentName    string     `json:"student_name"`
	ParentName     string     `json:"parent_name"`
	Email          string     `json:"email"`
	DialCode       string     `json:"dial_code"`
	Phone          string     `json:"phone"`
	GradeApplying  string     `json:"grade_applying"`
	DateOfBirth    *time.Time `json:"date_of_birth"`
	Address        string     `json:"address"`
	PreviousSchool string     `json:"previous_school"`
	Notes          string     `json:"notes"`
}

// Apply is the public admission form; it needs no authentication and sits
// behind the public-form rate limit.
func (h *AdmissionHandler) Apply(c echo.Context) error {
	var req applyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	req.StudentName = strings.TrimSpace(req.StudentName)
	req.ParentName = strings.TrimSpace(req.ParentName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.StudentName == "" || req.ParentName == "" || req.Email == "" ||
		req.Phone == "" || req.GradeApplying == "" {
		return echo.NewHTTPError(http.StatusBadRequest,
			"student_name, parent_name, email, phone and grade_applying are required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid email address")
	}

	admission := models.Admission{
		ApplicationID:  newApplicationID(),
		StudentName:    req.StudentName,
		ParentName:     req.ParentName,
		Email:          req.Email,
		Phone:          req.Phone,
		GradeApplying:  req.GradeApplying,
		DateOfBirth:    req.DateOfBirth,
		Address:        req.Address,
		PreviousSchool: req.PreviousSchool,
		Notes:          req.Notes,
		Status:         "pending",
	}
	if req.DialCode != "" {
		admission.DialCode = req.DialCode
	}

	err := h.DB.WithContext(c.Request().Context()).Create(&admission).Error
	// the reference collides rarely; one retry with a fresh suffix covers it
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		admission.ApplicationID = newApplicationID()
		err = h.DB.WithContext(c.Request().Context()).Create(&admission).Error
	}
	if err != nil {
		return internalError(c, "admission create failed", err)
	}

	publish(c, h.Producer, "admission_events", admission.ApplicationID, map[string]any{
		"event":          "application_submitted",
		"application_id": admission.ApplicationID,
		"student_name":   admission.StudentName,
		"grade_applying": admission.GradeApplying,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"success":        true,
		"message":        "Application submitted successfully",
		"application_id": admission.ApplicationID,
	})
}

func (h *AdmissionHandler) List(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("page_size"), 50)
	offset, limit := util.Calculate(page, size)

	q := h.DB.WithContext(c.Request().Context()).Model(&models.Admission{})
	if status := c.QueryParam("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if grade := c.QueryParam("grade"); grade != "" {
		q = q.Where("grade_applying = ?", grade)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return internalError(c, "admission count failed", err)
	}

	var admissions []models.Admission
	if err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&admissions).Error; err != nil {
		return internalError(c, "admission list failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"applications": admissions,
		"total":        total,
		"page":         page,
		"page_size":    limit,
	})
}

func (h *AdmissionHandler) Get(c echo.Context) error {
	id, err := pathID(c, "Application not found")
	if err != nil {
		return err
	}

	var admission models.Admission
	err = h.DB.WithContext(c.Request().Context()).
		Where("id = ?", id).
		First(&admission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Application not found")
		}
		return internalError(c, "admission lookup failed", err)
	}
	return c.JSON(http.StatusOK, admission)
}

type admissionUpdateRequest struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

func (h *AdmissionHandler) Update(c echo.Context) error {
	id, err := pathID(c, "Application not found")
	if err != nil {
		return err
	}

	var admission models.Admission
	err = h.DB.WithContext(c.Request().Context()).
		Where("id = ?", id).
		First(&admission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Application not found")
		}
		return internalError(c, "admission lookup failed", err)
	}

	var req admissionUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if req.Status != nil {
		if !admissionStatuses[*req.Status] {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid application status")
		}
		admission.Status = *req.Status
	}
	if req.Notes != nil {
		admission.Notes = *req.Notes
	}

	if err := h.DB.WithContext(c.Request().Context()).Save(&admission).Error; err != nil {
		return internalError(c, "admission update failed", err)
	}

	if req.Status != nil {
		publish(c, h.Producer, "admission_events", admission.ApplicationID, map[string]any{
			"event":          "application_status_changed",
			"application_id": admission.ApplicationID,
			"status":         admission.Status,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "application": admission})
}

func (h *AdmissionHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "Application not found")
	if err != nil {
		return err
	}

	res := h.DB.WithContext(c.Request().Context()).
		Where("id = ?", id).
		Delete(&models.Admission{})
	if res.Error != nil {
		return internalError(c, "admission delete failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Application not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Application deleted"})
}
