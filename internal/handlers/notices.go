package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mrvvsreddy/school-p1/internal/logging"
	"github.com/mrvvsreddy/school-p1/internal/models"
	"github.com/mrvvsreddy/school-p1/internal/service/search"
	"github.com/mrvvsreddy/school-p1/internal/util"
)

type NoticeHandler struct {
	DB    *gorm.DB
	ES    *elasticsearch.Client
	Index string
}

type noticeRequest struct {
	Title          *string        `json:"title"`
	Content        *string        `json:"content"`
	Category       *string        `json:"category"`
	Priority       *string        `json:"priority"`
	TargetAudience *string        `json:"target_audience"`
	PublishedBy    *string        `json:"published_by"`
	PublishedDate  *time.Time     `json:"published_date"`
	ExpiryDate     *time.Time     `json:"expiry_date"`
	Status         *string        `json:"status"`
	Attachments    datatypes.JSON `json:"attachments"`
}

// reindex keeps the search index in step with the table; search is a
// convenience on top of the database, so failures only get logged.
func (h *NoticeHandler) reindex(c echo.Context, n *models.Notice) {
	if h.ES == nil {
		return
	}
	if err := search.IndexNotice(c.Request().Context(), h.ES, h.Index, n); err != nil {
		logging.FromContext(c.Request().Context()).Error("notice index failed", "notice_id", n.ID, "error", err)
	}
}

func (h *NoticeHandler) List(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("page_size"), 50)
	offset, limit := util.Calculate(page, size)

	q := h.DB.WithContext(c.Request().Context()).Model(&models.Notice{})
	if status := c.QueryParam("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if category := c.QueryParam("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return internalError(c, "notice count failed", err)
	}

	var notices []models.Notice
	if err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&notices).Error; err != nil {
		return internalError(c, "notice list failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"notices":   notices,
		"total":     total,
		"page":      page,
		"page_size": limit,
	})
}

func (h *NoticeHandler) Get(c echo.Context) error {
	id, err := pathIntID(c, "Notice not found")
	if err != nil {
		return err
	}

	var notice models.Notice
	err = h.DB.WithContext(c.Request().Context()).
		First(&notice, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Notice not found")
		}
		return internalError(c, "notice lookup failed", err)
	}
	return c.JSON(http.StatusOK, notice)
}

func (h *NoticeHandler) Create(c echo.Context) error {
	var req noticeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" ||
		req.Content == nil || *req.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Title and content are required")
	}

	notice := models.Notice{
		Title:         strings.TrimSpace(*req.Title),
		Content:       *req.Content,
		Priority:      "normal",
		Status:        "draft",
		PublishedDate: req.PublishedDate,
		ExpiryDate:    req.ExpiryDate,
		Attachments:   req.Attachments,
	}
	if req.Category != nil {
		notice.Category = *req.Category
	}
	if req.Priority != nil {
		notice.Priority = *req.Priority
	}
	if req.TargetAudience != nil {
		notice.TargetAudience = *req.TargetAudience
	}
	if req.PublishedBy != nil {
		notice.PublishedBy = *req.PublishedBy
	}
	if req.Status != nil {
		notice.Status = *req.Status
	}
	if notice.Status == "published" && notice.PublishedDate == nil {
		now := time.Now().UTC()
		notice.PublishedDate = &now
	}

	if err := h.DB.WithContext(c.Request().Context()).Create(&notice).Error; err != nil {
		return internalError(c, "notice create failed", err)
	}

	h.reindex(c, &notice)

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "notice": notice})
}

func (h *NoticeHandler) Update(c echo.Context) error {
	id, err := pathIntID(c, "Notice not found")
	if err != nil {
		return err
	}

	var notice models.Notice
	err = h.DB.WithContext(c.Request().Context()).
		First(&notice, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Notice not found")
		}
		return internalError(c, "notice lookup failed", err)
	}

	var req noticeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if req.Title != nil {
		notice.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		notice.Content = *req.Content
	}
	if req.Category != nil {
		notice.Category = *req.Category
	}
	if req.Priority != nil {
		notice.Priority = *req.Priority
	}
	if req.TargetAudience != nil {
		notice.TargetAudience = *req.TargetAudience
	}
	if req.PublishedBy != nil {
		notice.PublishedBy = *req.PublishedBy
	}
	if req.PublishedDate != nil {
		notice.PublishedDate = req.PublishedDate
	}
	if req.ExpiryDate != nil {
		notice.ExpiryDate = req.ExpiryDate
	}
	if req.Status != nil {
		notice.Status = *req.Status
		if notice.Status == "published" && notice.PublishedDate == nil {
			now := time.Now().UTC()
			notice.PublishedDate = &now
		}
	}
	if req.Attachments != nil {
		notice.Attachments = req.Attachments
	}

	if err := h.DB.WithContext(c.Request().Context()).Save(&notice).Error; err != nil {
		return internalError(c, "notice update failed", err)
	}

	h.reindex(c, &notice)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "notice": notice})
}

func (h *NoticeHandler) Delete(c echo.Context) error {
	id, err := pathIntID(c, "Notice not found")
	if err != nil {
		return err
	}

	var notice models.Notice
	err = h.DB.WithContext(c.Request().Context()).
		First(&notice, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Notice not found")
		}
		return internalError(c, "notice lookup failed", err)
	}

	if err := h.DB.WithContext(c.Request().Context()).Delete(&notice).Error; err != nil {
		return internalError(c, "notice delete failed", err)
	}

	if h.ES != nil {
		if err := search.DeleteNotice(c.Request().Context(), h.ES, h.Index, notice.ID); err != nil {
			logging.FromContext(c.Request().Context()).Error("notice deindex failed", "notice_id", notice.ID, "error", err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Notice deleted"})
}

func (h *NoticeHandler) Search(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Query parameter 'q' is required")
	}
	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Search is not available")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("page_size"), 50)
	from, limit := util.Calculate(page, size)

	total, notices, err := search.SearchNotices(c.Request().Context(), h.ES, h.Index, query, from, limit)
	if err != nil {
		return internalError(c, "notice search failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"notices":   notices,
		"total":     total,
		"page":      page,
		"page_size": limit,
	})
}
