package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"debo-engineering/job-portal/internal/models"
)

var staffRoles = []models.Role{
	models.RoleAdmin,
	models.RoleRecruiter,
	models.RoleHRManager,
	models.RoleSuperAdmin,
}

type Handlers struct {
	Auth         *AuthHandler
	Jobs         *JobHandler
	Applications *ApplicationHandler
	Admin        *AdminHandler
	Middleware   *AuthMiddleware
}

// RegisterRoutes mounts the API under the given router, normally /api/v1.
func RegisterRoutes(api fiber.Router, h Handlers) {
	authenticated := h.Middleware.Authenticate()
	staff := RequireRoles(staffRoles...)
	superAdmin := RequireRoles(models.RoleSuperAdmin)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	auth := api.Group("/auth")
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/logout", h.Auth.Logout)
	auth.Post("/forgot-password", h.Auth.ForgotPassword)
	auth.Post("/reset-password", h.Auth.ResetPassword)
	auth.Get("/profile", authenticated, h.Auth.Profile)
	auth.Put("/profile", authenticated, h.Auth.UpdateProfile)

	jobs := api.Group("/jobs")
	jobs.Get("/", h.Middleware.Optional(), h.Jobs.List)
	jobs.Get("/recommended", authenticated, h.Jobs.Recommended)
	jobs.Get("/:id", h.Jobs.Get)
	jobs.Post("/", authenticated, staff, h.Jobs.Create)
	jobs.Put("/:id", authenticated, staff, h.Jobs.Update)
	jobs.Patch("/:id/status", authenticated, staff, h.Jobs.UpdateStatus)
	jobs.Delete("/:id", authenticated, staff, h.Jobs.Delete)

	apps := api.Group("/applications", authenticated)
	apps.Post("/", h.Applications.Submit)
	apps.Get("/", h.Applications.ListMine)
	apps.Get("/job/:jobId", staff, h.Applications.ListByJob)
	apps.Get("/:id", h.Applications.Get)
	apps.Get("/:id/status", h.Applications.TrackStatus)
	apps.Patch("/:id", staff, h.Applications.UpdateStatus)

	admin := api.Group("/admin", authenticated, staff)

	admin.Get("/applications", h.Applications.ListAll)
	admin.Patch("/applications/bulk-update", h.Applications.BulkUpdate)
	admin.Patch("/applications/:id", h.Applications.UpdateStatus)
	admin.Patch("/applications/:id/shortlist", h.Applications.Shortlist)
	admin.Patch("/applications/:id/classify", h.Applications.Classify)
	admin.Post("/applications/:id/interview-invite", h.Applications.InterviewInvite)
	admin.Post("/applications/:id/feedback", h.Applications.Feedback)

	admin.Get("/interns", h.Admin.ListInterns)
	admin.Patch("/interns/:id", h.Admin.UpdateInternStatus)
	admin.Patch("/interns/:id/classify", h.Admin.ClassifyIntern)
	admin.Get("/interns/:id/progression", h.Admin.ProgressionHistory)

	admin.Get("/stats", h.Admin.Stats)
	admin.Get("/reports", h.Admin.Reports)
	admin.Get("/internship-status-counts", h.Applications.InternshipTypeCounts)
	admin.Get("/jobs-with-applicant-count", h.Applications.JobsWithApplicantCount)
	admin.Get("/gada-levels", h.Admin.GadaLevels)
	admin.Get("/users/:id/resume-insights", h.Admin.ResumeInsights)

	admin.Get("/users", superAdmin, h.Admin.ListUsers)
	admin.Patch("/users/:id/role", superAdmin, h.Admin.UpdateUserRole)

	admin.Get("/settings", superAdmin, h.Admin.ListSettings)
	admin.Get("/settings/:key", superAdmin, h.Admin.GetSetting)
	admin.Post("/settings", superAdmin, h.Admin.AddSetting)
	admin.Patch("/settings", superAdmin, h.Admin.UpsertSetting)
	admin.Delete("/settings/:key", superAdmin, h.Admin.DeleteSetting)

	admin.Get("/email-templates", superAdmin, h.Admin.ListEmailTemplates)
	admin.Post("/email-templates", superAdmin, h.Admin.CreateEmailTemplate)
	admin.Patch("/email-templates/:id", superAdmin, h.Admin.UpdateEmailTemplate)
	admin.Delete("/email-templates/:id", superAdmin, h.Admin.DeleteEmailTemplate)

	admin.Get("/audit-logs", superAdmin, h.Admin.AuditLogs)
}
