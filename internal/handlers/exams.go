package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mrvvsreddy/school-p1/internal/models"
)

type ExamHandler struct {
	DB *gorm.DB
}

type examRequest struct {
	Subject      *string    `json:"subject"`
	Grade        *string    `json:"grade"`
	AcademicYear *string    `json:"academic_year"`
	ExamDate     *time.Time `json:"exam_date"`
	StartTime    *string    `json:"start_time"`
	EndTime      *string    `json:"end_time"`
	Duration     *string    `json:"duration"`
	Location     *string    `json:"location"`
	Participants *int       `json:"participants"`
	Status       *string    `json:"status"`
	Color        *string    `json:"color"`
}

func (h *ExamHandler) List(c echo.Context) error {
	q := h.DB.WithContext(c.Request().Context()).Model(&models.Exam{})
	if grade := c.QueryParam("grade"); grade != "" {
		q = q.Where("grade = ?", grade)
	}
	if year := c.QueryParam("academic_year"); year != "" {
		q = q.Where("academic_year = ?", year)
	}
	if status := c.QueryParam("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var exams []models.Exam
	if err := q.Order("exam_date").Find(&exams).Error; err != nil {
		return internalError(c, "exam list failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"exams": exams, "total": len(exams)})
}

func (h *ExamHandler) Get(c echo.Context) error {
	id, err := pathID(c, "Exam not found")
	if err != nil {
		return err
	}

	var exam models.Exam
	err = h.DB.WithContext(c.Request().Context()).
		Where("id = ?", id).
		First(&exam).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Exam not found")
		}
		return internalError(c, "exam lookup failed", err)
	}
	return c.JSON(http.StatusOK, exam)
}

func (h *ExamHandler) Create(c echo.Context) error {
	var req examRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Subject == nil || strings.TrimSpace(*req.Subject) == "" ||
		req.Grade == nil || *req.Grade == "" ||
		req.AcademicYear == nil || *req.AcademicYear == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Subject, grade and academic_year are required")
	}

	exam := models.Exam{
		Subject:      strings.TrimSpace(*req.Subject),
		Grade:        *req.Grade,
		AcademicYear: *req.AcademicYear,
		ExamDate:     req.ExamDate,
		Status:       "Draft",
		Color:        "#3B82F6",
	}
	if req.StartTime != nil {
		exam.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		exam.EndTime = *req.EndTime
	}
	if req.Duration != nil {
		exam.Duration = *req.Duration
	}
	if req.Location != nil {
		exam.Location = *req.Location
	}
	if req.Participants != nil {
		exam.Participants = *req.Participants
	}
	if req.Status != nil {
		exam.Status = *req.Status
	}
	if req.Color != nil {
		exam.Color = *req.Color
	}

	if err := h.DB.WithContext(c.Request().Context()).Create(&exam).Error; err != nil {
		return internalError(c, "exam create failed", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "exam": exam})
}

func (h *ExamHandler) Update(c echo.Context) error {
	id, err := pathID(c, "Exam not found")
	if err != nil {
		return err
	}

	var exam models.Exam
	err = h.DB.WithContext(c.Request().Context()).
		Where("id = ?", id).
		First(&exam).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Exam not found")
		}
		return internalError(c, "exam lookup failed", err)
	}

	var req examRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if req.Subject != nil {
		exam.Subject = strings.TrimSpace(*req.Subject)
	}
	if req.Grade != nil {
		exam.Grade = *req.Grade
	}
	if req.AcademicYear != nil {
		exam.AcademicYear = *req.AcademicYear
	}
	if req.ExamDate != nil {
		exam.ExamDate = req.ExamDate
	}
	if req.StartTime != nil {
		exam.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		exam.EndTime = *req.EndTime
	}
	if req.Duration != nil {
		exam.Duration = *req.Duration
	}
	if req.Location != nil {
		exam.Location = *req.Location
	}
	if req.Participants != nil {
		exam.Participants = *req.Participants
	}
	if req.Status != nil {
		exam.Status = *req.Status
	}
	if req.Color != nil {
		exam.Color = *req.Color
	}

	if err := h.DB.WithContext(c.Request().Context()).Save(&exam).Error; err != nil {
		return internalError(c, "exam update failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "exam": exam})
}

func (h *ExamHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "Exam not found")
	if err != nil {
		return err
	}

	res := h.DB.WithContext(c.Request().Context()).
		Where("id = ?", id).
		Delete(&models.Exam{})
	if res.Error != nil {
		return internalError(c, "exam delete failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Exam not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Exam deleted"})
}

type academicYearRequest struct {
	YearName  *string    `json:"year_name"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	IsCurrent *bool      `json:"is_current"`
	IsActive  *bool      `json:"is_active"`
}

func (h *ExamHandler) ListAcademicYears(c echo.Context) error {
	var years []models.AcademicYear
	err := h.DB.WithContext(c.Request().Context()).
		Order("year_name desc").Find(&years).Error
	if err != nil {
		return internalError(c, "academic year list failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"academic_years": years, "total": len(years)})
}

func (h *ExamHandler) CreateAcademicYear(c echo.Context) error {
	var req academicYearRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.YearName == nil || strings.TrimSpace(*req.YearName) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Year name is required")
	}

	year := models.AcademicYear{
		YearName:  strings.TrimSpace(*req.YearName),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		IsActive:  true,
	}
	if req.IsCurrent != nil {
		year.IsCurrent = *req.IsCurrent
	}
	if req.IsActive != nil {
		year.IsActive = *req.IsActive
	}

	err := h.DB.WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
		// only one current year at a time
		if year.IsCurrent {
			if err := tx.Model(&models.AcademicYear{}).
				Where("is_current = ?", true).
				Update("is_current", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&year).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return echo.NewHTTPError(http.StatusBadRequest, "Academic year already exists")
		}
		return internalError(c, "academic year create failed", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "academic_year": year})
}
