package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mrvvsreddy/school-p1/internal/hash"
	"github.com/mrvvsreddy/school-p1/internal/logging"
	"github.com/mrvvsreddy/school-p1/internal/middleware"
	"github.com/mrvvsreddy/school-p1/internal/models"
	"github.com/mrvvsreddy/school-p1/internal/mykafka"
	"github.com/mrvvsreddy/school-p1/internal/ratelimit"
	"github.com/mrvvsreddy/school-p1/internal/token"
)

type AuthHandler struct {
	DB       *gorm.DB
	Tokens   *token.Service
	Guard    *ratelimit.Limiter
	Producer *mykafka.Producer
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userProjection struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	ImageURL string `json:"image_url,omitempty"`
}

func projectUser(u *models.AdminUser) userProjection {
	return userProjection{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Name:     u.Name,
		Role:     u.Role,
		ImageURL: u.ImageURL,
	}
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Username and password are required")
	}

	ip := c.RealIP()
	if blocked := h.Guard.BlockedFor(ip); blocked > 0 {
		return tooManyRequests(c, "Too many failed login attempts. Please try again later.", blocked)
	}

	var user models.AdminUser
	err := h.DB.WithContext(c.Request().Context()).
		Where("username = ?", req.Username).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return h.failedAttempt(c, ip, req.Username)
		}
		return internalError(c, "login lookup failed", err)
	}

	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return h.failedAttempt(c, ip, req.Username)
	}

	if user.Status != "active" {
		return echo.NewHTTPError(http.StatusForbidden, "User account is inactive")
	}

	h.Guard.ClearFailedLogins(ip)

	now := time.Now().UTC()
	if err := h.DB.WithContext(c.Request().Context()).
		Model(&user).Update("last_login", now).Error; err != nil {
		logging.FromContext(c.Request().Context()).Error("last_login update failed", "user_id", user.ID, "error", err)
	}

	jwtToken, err := h.Tokens.Issue(token.Claims{
		Username: user.Username,
		Email:    user.Email,
		UserID:   user.ID,
		Role:     user.Role,
	}, 0)
	if err != nil {
		return internalError(c, "token issue failed", err)
	}

	c.SetCookie(token.AuthCookie(jwtToken, h.Tokens.TTL))

	publish(c, h.Producer, "user_events", user.Username, map[string]any{
		"event":    "login",
		"user_id":  user.ID,
		"username": user.Username,
		"time":     now.Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Login successful",
		"token":   jwtToken,
		"user":    projectUser(&user),
	})
}

// failedAttempt records the miss and answers with the same body whether the
// username or the password was wrong. The attempt that reaches the failure
// threshold still gets a 401; the block it arms answers everything after it.
func (h *AuthHandler) failedAttempt(c echo.Context, ip, username string) error {
	if h.Guard.RecordFailedLogin(ip) {
		h.Guard.Block(ip, 0)
		logging.FromContext(c.Request().Context()).Warn("login lockout armed",
			"ip", ip, "username", username)
	}
	return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
}

func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(token.ClearAuthCookie())
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Logged out successfully",
	})
}

func (h *AuthHandler) Me(c echo.Context) error {
	userID, _ := c.Get(middleware.CtxUserID).(uint)

	var user models.AdminUser
	err := h.DB.WithContext(c.Request().Context()).First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return internalError(c, "user lookup failed", err)
	}

	return c.JSON(http.StatusOK, projectUser(&user))
}

func (h *AuthHandler) Verify(c echo.Context) error {
	claims, _ := c.Get(middleware.CtxClaims).(*token.Claims)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"valid": true,
		"user": echo.Map{
			"user_id":  claims.UserID,
			"username": claims.Username,
			"email":    claims.Email,
			"role":     claims.Role,
			"expires":  claims.ExpiresAt.UTC().Format(time.RFC3339),
		},
	})
}

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
	ImageURL string `json:"image_url"`
}

func (h *AuthHandler) ListUsers(c echo.Context) error {
	var users []models.AdminUser
	if err := h.DB.WithContext(c.Request().Context()).
		Order("id").Find(&users).Error; err != nil {
		return internalError(c, "user list failed", err)
	}

	out := make([]userProjection, 0, len(users))
	for i := range users {
		out = append(out, projectUser(&users[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out, "total": len(out)})
}

func (h *AuthHandler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Username, email and password are required")
	}
	if req.Role == "" {
		req.Role = "admin"
	}
	switch req.Role {
	case "admin", "super_admin", "editor":
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid role")
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return internalError(c, "password hash failed", err)
	}

	user := models.AdminUser{
		Username:     req.Username,
		Email:        req.Email,
		Name:         req.Name,
		Role:         req.Role,
		Status:       "active",
		ImageURL:     req.ImageURL,
		PasswordHash: hashed,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return echo.NewHTTPError(http.StatusBadRequest, "Username or email already exists")
		}
		return internalError(c, "user create failed", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "User created successfully",
		"user":    projectUser(&user),
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *AuthHandler) UpdateUserStatus(c echo.Context) error {
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Status != "active" && req.Status != "inactive" {
		return echo.NewHTTPError(http.StatusBadRequest, "Status must be 'active' or 'inactive'")
	}

	id, err := pathIntID(c, "User not found")
	if err != nil {
		return err
	}

	res := h.DB.WithContext(c.Request().Context()).
		Model(&models.AdminUser{}).
		Where("id = ?", id).
		Update("status", req.Status)
	if res.Error != nil {
		return internalError(c, "user status update failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "User status updated",
	})
}
