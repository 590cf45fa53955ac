package handlers

import (
	"github.com/gofiber/fiber/v2"

	"debo-engineering/job-portal/internal/models"
	"debo-engineering/job-portal/internal/services"
)

type AdminHandler struct {
	adminService services.AdminService
}

func NewAdminHandler(adminService services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.adminService.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, stats)
}

func (h *AdminHandler) Reports(c *fiber.Ctx) error {
	reports, err := h.adminService.Reports(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, reports)
}

func (h *AdminHandler) GadaLevels(c *fiber.Ctx) error {
	return ok(c, h.adminService.GadaLevels())
}

// ListUsers handles GET /admin/users?role=
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.adminService.ListUsers(c.UserContext(), c.Query("role"))
	if err != nil {
		return err
	}
	return ok(c, users)
}

func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateRoleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.adminService.UpdateUserRole(c.UserContext(), actor, id, req.Role)
	if err != nil {
		return err
	}
	return ok(c, user)
}

func (h *AdminHandler) ListInterns(c *fiber.Ctx) error {
	interns, err := h.adminService.ListInterns(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, interns)
}

func (h *AdminHandler) UpdateInternStatus(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateInternStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.adminService.UpdateInternStatus(c.UserContext(), actor, id, req.Status)
	if err != nil {
		return err
	}
	return ok(c, user)
}

func (h *AdminHandler) ClassifyIntern(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req models.ClassifyInternRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.adminService.ClassifyIntern(c.UserContext(), actor, id, req.ExperienceLevel, req.Status)
	if err != nil {
		return err
	}
	return ok(c, user)
}

func (h *AdminHandler) ProgressionHistory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	history, err := h.adminService.ProgressionHistory(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, history)
}

func (h *AdminHandler) ResumeInsights(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	insights, err := h.adminService.ResumeInsights(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, insights)
}

func (h *AdminHandler) ListSettings(c *fiber.Ctx) error {
	settings, err := h.adminService.ListSettings(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, settings)
}

func (h *AdminHandler) GetSetting(c *fiber.Ctx) error {
	setting, err := h.adminService.GetSetting(c.UserContext(), c.Params("key"))
	if err != nil {
		return err
	}
	return ok(c, setting)
}

// AddSetting handles POST /admin/settings and fails if the key exists.
func (h *AdminHandler) AddSetting(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}

	var req models.SettingRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	setting, err := h.adminService.AddSetting(c.UserContext(), actor, req.Key, req.Value)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, setting)
}

// UpsertSetting handles PATCH /admin/settings
func (h *AdminHandler) UpsertSetting(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}

	var req models.SettingRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	setting, err := h.adminService.UpsertSetting(c.UserContext(), actor, req.Key, req.Value)
	if err != nil {
		return err
	}
	return ok(c, setting)
}

func (h *AdminHandler) DeleteSetting(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}

	key := c.Params("key")
	if err := h.adminService.DeleteSetting(c.UserContext(), actor, key); err != nil {
		return err
	}
	return ok(c, fiber.Map{"key": key, "message": "setting deleted"})
}

func (h *AdminHandler) ListEmailTemplates(c *fiber.Ctx) error {
	templates, err := h.adminService.ListEmailTemplates(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, templates)
}

func (h *AdminHandler) CreateEmailTemplate(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}

	var req models.EmailTemplateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	tmpl, err := h.adminService.CreateEmailTemplate(c.UserContext(), actor, req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, tmpl)
}

func (h *AdminHandler) UpdateEmailTemplate(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req models.EmailTemplateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	tmpl, err := h.adminService.UpdateEmailTemplate(c.UserContext(), actor, id, req)
	if err != nil {
		return err
	}
	return ok(c, tmpl)
}

func (h *AdminHandler) DeleteEmailTemplate(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.adminService.DeleteEmailTemplate(c.UserContext(), actor, id); err != nil {
		return err
	}
	return ok(c, fiber.Map{"id": id, "message": "email template deleted"})
}

// AuditLogs handles GET /admin/audit-logs?limit=
func (h *AdminHandler) AuditLogs(c *fiber.Ctx) error {
	logs, err := h.adminService.AuditLogs(c.UserContext(), c.QueryInt("limit", 100))
	if err != nil {
		return err
	}
	return ok(c, logs)
}
