package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"debo-engineering/job-portal/internal/apperrors"
	"debo-engineering/job-portal/internal/models"
	"debo-engineering/job-portal/internal/services"
)

type ApplicationHandler struct {
	applicationService services.ApplicationService
}

func NewApplicationHandler(applicationService services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applicationService: applicationService}
}

// Submit handles POST /applications as a multipart form with a resume file.
func (h *ApplicationHandler) Submit(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return apperrors.NewValidation("application must be submitted as multipart form data", map[string]string{"body": "invalid multipart form"})
	}

	jobID, err := strconv.ParseUint(strings.TrimSpace(firstValue(form.Value, "jobId")), 10, 64)
	if err != nil || jobID == 0 {
		return apperrors.NewValidation("jobId is required", map[string]string{"jobId": "must be a positive integer"})
	}

	input := services.SubmitApplicationInput{
		JobID:           uint(jobID),
		Skills:          formValues(form.Value, "skills"),
		ExperienceLevel: strings.TrimSpace(firstValue(form.Value, "experienceLevel")),
		CoverLetter:     firstValue(form.Value, "coverLetter"),
		Education:       formValues(form.Value, "education"),
	}
	if files := form.File["resume"]; len(files) > 0 {
		input.Resume = files[0]
	}

	app, err := h.applicationService.Submit(c.UserContext(), actor, input)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, app)
}

func (h *ApplicationHandler) ListMine(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}

	apps, err := h.applicationService.ListMine(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return ok(c, apps)
}

func (h *ApplicationHandler) Get(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	app, err := h.applicationService.Get(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return ok(c, app)
}

// TrackStatus handles GET /applications/:id/status
func (h *ApplicationHandler) TrackStatus(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	status, err := h.applicationService.TrackStatus(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return ok(c, status)
}

func (h *ApplicationHandler) ListByJob(c *fiber.Ctx) error {
	jobID, err := paramID(c, "jobId")
	if err != nil {
		return err
	}

	apps, err := h.applicationService.ListByJob(c.UserContext(), jobID)
	if err != nil {
		return err
	}
	return ok(c, apps)
}

// ListAll handles GET /admin/applications?status=&jobId=
func (h *ApplicationHandler) ListAll(c *fiber.Ctx) error {
	var filter models.ApplicationFilter
	if raw := c.Query("status"); raw != "" {
		status, valid := models.ParseApplicationStatus(raw)
		if !valid {
			return apperrors.NewValidation("invalid status filter", map[string]string{"status": "invalid"})
		}
		filter.Status = status
	}
	if raw := c.Query("jobId"); raw != "" {
		jobID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return apperrors.NewValidation("invalid jobId filter", map[string]string{"jobId": "must be a positive integer"})
		}
		filter.JobID = uint(jobID)
	}

	apps, err := h.applicationService.ListAll(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return ok(c, apps)
}

func (h *ApplicationHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	app, err := h.applicationService.UpdateStatus(c.UserContext(), actor, id, req.Status, req.Feedback)
	if err != nil {
		return err
	}
	return ok(c, app)
}

func (h *ApplicationHandler) BulkUpdate(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}

	var req models.BulkUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.applicationService.BulkUpdate(c.UserContext(), actor, req.ApplicationIDs, req.Status, req.Feedback)
	if err != nil {
		return err
	}
	return ok(c, result)
}

func (h *ApplicationHandler) Shortlist(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	app, err := h.applicationService.Shortlist(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return ok(c, app)
}

func (h *ApplicationHandler) Classify(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req models.ClassifyApplicantRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	app, err := h.applicationService.Classify(c.UserContext(), actor, id, req.GadaLevel, req.InternshipType)
	if err != nil {
		return err
	}
	return ok(c, app)
}

func (h *ApplicationHandler) InterviewInvite(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req models.InterviewInviteRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.applicationService.SendInterviewInvite(c.UserContext(), actor, id, req.InterviewDetails)
	if err != nil {
		return err
	}
	return ok(c, result)
}

func (h *ApplicationHandler) Feedback(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req models.FeedbackRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	app, err := h.applicationService.SendFeedback(c.UserContext(), actor, id, req.Feedback)
	if err != nil {
		return err
	}
	return ok(c, app)
}

func (h *ApplicationHandler) InternshipTypeCounts(c *fiber.Ctx) error {
	counts, err := h.applicationService.InternshipTypeCounts(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, counts)
}

func (h *ApplicationHandler) JobsWithApplicantCount(c *fiber.Ctx) error {
	jobs, err := h.applicationService.JobsWithApplicantCount(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, jobs)
}

func firstValue(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}
