package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mrvvsreddy/school-p1/internal/models"
	"github.com/mrvvsreddy/school-p1/internal/mykafka"
	"github.com/mrvvsreddy/school-p1/internal/util"
)

type ContactHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

var contactStatuses = map[string]bool{
	"new":         true,
	"in_progress": true,
	"resolved":    true,
	"closed":      true,
}

type contactCreateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	DialCode string `json:"dial_code"`
	Phone    string `json:"phone"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
}

// Create is the public contact form endpoint.
func (h *ContactHandler) Create(c echo.Context) error {
	var req contactCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Email == "" || req.Phone == "" || req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name, email, phone and message are required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid email address")
	}

	contact := models.ContactRequest{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
		Status:  "new",
	}
	if req.DialCode != "" {
		contact.DialCode = req.DialCode
	}

	if err := h.DB.WithContext(c.Request().Context()).Create(&contact).Error; err != nil {
		return internalError(c, "contact create failed", err)
	}

	publish(c, h.Producer, "contact_events", contact.ID.String(), map[string]any{
		"event":      "contact_submitted",
		"contact_id": contact.ID.String(),
		"subject":    contact.Subject,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Your message has been received",
		"id":      contact.ID,
	})
}

func (h *ContactHandler) List(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("page_size"), 50)
	offset, limit := util.Calculate(page, size)

	q := h.DB.WithContext(c.Request().Context()).Model(&models.ContactRequest{})
	if status := c.QueryParam("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if search := strings.TrimSpace(c.QueryParam("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(subject) LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return internalError(c, "contact count failed", err)
	}

	var contacts []models.ContactRequest
	if err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&contacts).Error; err != nil {
		return internalError(c, "contact list failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"contacts":  contacts,
		"total":     total,
		"page":      page,
		"page_size": limit,
	})
}

// Stats aggregates contact requests per status for the dashboard.
func (h *ContactHandler) Stats(c echo.Context) error {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := h.DB.WithContext(c.Request().Context()).
		Model(&models.ContactRequest{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return internalError(c, "contact stats failed", err)
	}

	byStatus := map[string]int64{}
	var total int64
	for _, r := range rows {
		byStatus[r.Status] = r.Count
		total += r.Count
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total":     total,
		"new":       byStatus["new"],
		"by_status": byStatus,
	})
}

func (h *ContactHandler) Get(c echo.Context) error {
	id, err := pathID(c, "Contact request not found")
	if err != nil {
		return err
	}

	var contact models.ContactRequest
	err = h.DB.WithContext(c.Request().Context()).
		Where("id = ?", id).
		First(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Contact request not found")
		}
		return internalError(c, "contact lookup failed", err)
	}
	return c.JSON(http.StatusOK, contact)
}

type contactUpdateRequest struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

func (h *ContactHandler) Update(c echo.Context) error {
	id, err := pathID(c, "Contact request not found")
	if err != nil {
		return err
	}

	var contact models.ContactRequest
	err = h.DB.WithContext(c.Request().Context()).
		Where("id = ?", id).
		First(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Contact request not found")
		}
		return internalError(c, "contact lookup failed", err)
	}

	var req contactUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if req.Status != nil {
		if !contactStatuses[*req.Status] {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid contact status")
		}
		contact.Status = *req.Status
	}
	if req.Notes != nil {
		contact.Notes = *req.Notes
	}

	if err := h.DB.WithContext(c.Request().Context()).Save(&contact).Error; err != nil {
		return internalError(c, "contact update failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "contact": contact})
}

func (h *ContactHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "Contact request not found")
	if err != nil {
		return err
	}

	res := h.DB.WithContext(c.Request().Context()).
		Where("id = ?", id).
		Delete(&models.ContactRequest{})
	if res.Error != nil {
		return internalError(c, "contact delete failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Contact request not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Contact request deleted"})
}
