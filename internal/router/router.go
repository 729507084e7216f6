package router

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mrvvsreddy/school-p1/internal/handlers"
	"github.com/mrvvsreddy/school-p1/internal/middleware"
	"github.com/mrvvsreddy/school-p1/internal/mykafka"
	"github.com/mrvvsreddy/school-p1/internal/ratelimit"
	"github.com/mrvvsreddy/school-p1/internal/token"
)

// Deps carries everything the route table needs. ES may be nil when search
// is not configured; handlers degrade instead of failing startup.
type Deps struct {
	DB          *gorm.DB
	Tokens      *token.Service
	Guard       *ratelimit.Limiter
	Producer    *mykafka.Producer
	ES          *elasticsearch.Client
	NoticeIndex string
}

func Register(e *echo.Echo, deps Deps) {
	auth := &handlers.AuthHandler{DB: deps.DB, Tokens: deps.Tokens, Guard: deps.Guard, Producer: deps.Producer}
	students := &handlers.StudentHandler{DB: deps.DB}
	teachers := &handlers.TeacherHandler{DB: deps.DB}
	classes := &handlers.ClassHandler{DB: deps.DB}
	exams := &handlers.ExamHandler{DB: deps.DB}
	notices := &handlers.NoticeHandler{DB: deps.DB, ES: deps.ES, Index: deps.NoticeIndex}
	admissions := &handlers.AdmissionHandler{DB: deps.DB, Producer: deps.Producer}
	contacts := &handlers.ContactHandler{DB: deps.DB, Producer: deps.Producer}
	pages := &handlers.PageHandler{DB: deps.DB}
	settings := &handlers.SettingHandler{DB: deps.DB}

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"service": "school-backend", "status": "ok"})
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "healthy"})
	})

	api := e.Group("/api", middleware.RateLimit(deps.Guard, ratelimit.CategoryAPIGeneral))

	// public surface
	api.GET("/pages/:slug", pages.GetPage)
	api.GET("/content/full", pages.GetFullContent)

	publicForm := middleware.RateLimit(deps.Guard, ratelimit.CategoryPublicForm)
	api.POST("/admissions/apply", admissions.Apply, publicForm)
	api.POST("/contacts", contacts.Create, publicForm)

	// auth surface
	authGroup := api.Group("/auth")
	authGroup.POST("/login", auth.Login, middleware.RateLimit(deps.Guard, ratelimit.CategoryLogin))
	authGroup.POST("/logout", auth.Logout)

	requireAuth := middleware.RequireAuth(deps.Tokens)
	adminOnly := middleware.RequireRole(middleware.AdminRoles...)
	editorOK := middleware.RequireRole(middleware.EditorRoles...)

	authGroup.GET("/me", auth.Me, requireAuth)
	authGroup.GET("/verify", auth.Verify, requireAuth)
	authGroup.GET("/users", auth.ListUsers, requireAuth, adminOnly)
	authGroup.POST("/users", auth.CreateUser, requireAuth, adminOnly)
	authGroup.PUT("/users/:id/status", auth.UpdateUserStatus, requireAuth, adminOnly)

	// admin surface
	admin := api.Group("", requireAuth, adminOnly)

	admin.GET("/students", students.List)
	admin.POST("/students", students.Create)
	admin.GET("/students/:id", students.Get)
	admin.PUT("/students/:id", students.Update)
	admin.DELETE("/students/:id", students.Delete)

	admin.GET("/teachers", teachers.List)
	admin.POST("/teachers", teachers.Create)
	admin.GET("/teachers/:id", teachers.Get)
	admin.PUT("/teachers/:id", teachers.Update)
	admin.DELETE("/teachers/:id", teachers.Delete)

	admin.GET("/classes", classes.List)
	admin.POST("/classes", classes.Create)
	admin.GET("/classes/:id", classes.Get)
	admin.PUT("/classes/:id", classes.Update)
	admin.DELETE("/classes/:id", classes.Delete)

	admin.GET("/exams", exams.List)
	admin.POST("/exams", exams.Create)
	admin.GET("/exams/:id", exams.Get)
	admin.PUT("/exams/:id", exams.Update)
	admin.DELETE("/exams/:id", exams.Delete)
	admin.GET("/academic-years", exams.ListAcademicYears)
	admin.POST("/academic-years", exams.CreateAcademicYear)

	admin.GET("/notices", notices.List)
	admin.POST("/notices", notices.Create)
	admin.GET("/notices/:id", notices.Get)
	admin.PUT("/notices/:id", notices.Update)
	admin.DELETE("/notices/:id", notices.Delete)
	admin.GET("/search/notices", notices.Search)

	admin.GET("/admissions/applications", admissions.List)
	admin.GET("/admissions/applications/:id", admissions.Get)
	admin.PUT("/admissions/applications/:id", admissions.Update)
	admin.DELETE("/admissions/applications/:id", admissions.Delete)

	admin.GET("/contacts", contacts.List)
	admin.GET("/contacts/stats", contacts.Stats)
	admin.GET("/contacts/:id", contacts.Get)
	admin.PUT("/contacts/:id", contacts.Update)
	admin.DELETE("/contacts/:id", contacts.Delete)

	admin.GET("/settings", settings.List)
	admin.POST("/settings", settings.Upsert)

	// editor surface: content editing is open to the editor role too
	editor := api.Group("/pages", requireAuth, editorOK)
	editor.PUT("/:slug/:section", pages.UpsertSection)
	editor.POST("/:slug/batch", pages.BatchUpsert)
}
