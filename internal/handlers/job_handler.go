package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"debo-engineering/job-portal/internal/apperrors"
	"debo-engineering/job-portal/internal/models"
	"debo-engineering/job-portal/internal/services"
)

type JobHandler struct {
	jobService services.JobService
}

func NewJobHandler(jobService services.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

// List handles GET /jobs. Only staff may look past active postings.
func (h *JobHandler) List(c *fiber.Ctx) error {
	filter := models.JobFilter{
		Type:            c.Query("type"),
		ExperienceLevel: c.Query("experienceLevel"),
		Category:        c.Query("category"),
		Status:          models.JobStatus(c.Query("status")),
		Search:          c.Query("search"),
	}
	if skills := c.Query("skills"); skills != "" {
		filter.Skills = []string{skills}
	}
	if raw := c.Query("isInternship"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return apperrors.NewValidation("invalid isInternship", map[string]string{"isInternship": "must be true or false"})
		}
		filter.IsInternship = &v
	}

	if actor, found := actorFrom(c); !found || !actor.IsStaff() {
		filter.Status = models.JobStatusActive
	}

	jobs, err := h.jobService.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return ok(c, jobs)
}

func (h *JobHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	job, err := h.jobService.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, job)
}

func (h *JobHandler) Recommended(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}

	jobs, err := h.jobService.Recommended(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return ok(c, jobs)
}

// Create handles POST /jobs. The raw body is schema-validated by the service.
func (h *JobHandler) Create(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}

	job, err := h.jobService.Create(c.UserContext(), actor, c.Body())
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, job)
}

func (h *JobHandler) Update(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	job, err := h.jobService.Update(c.UserContext(), actor, id, c.Body())
	if err != nil {
		return err
	}
	return ok(c, job)
}

func (h *JobHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateJobStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	job, err := h.jobService.UpdateStatus(c.UserContext(), actor, id, req.Status)
	if err != nil {
		return err
	}
	return ok(c, job)
}

// Delete handles DELETE /jobs/:id. Without ?force=true the job is archived.
func (h *JobHandler) Delete(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	force := c.QueryBool("force", false)
	if err := h.jobService.Delete(c.UserContext(), actor, id, force); err != nil {
		return err
	}

	message := "job archived"
	if force {
		message = "job deleted"
	}
	return ok(c, fiber.Map{"id": id, "message": message})
}
