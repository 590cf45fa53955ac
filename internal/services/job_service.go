package services

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"gorm.io/datatypes"

	"debo-engineering/job-portal/internal/apperrors"
	"debo-engineering/job-portal/internal/logger"
	"debo-engineering/job-portal/internal/models"
	"debo-engineering/job-portal/internal/repositories"
)

const recommendationLimit = 10

type JobService interface {
	Create(ctx context.Context, actor Actor, payload []byte) (*models.Job, error)
	Update(ctx context.Context, actor Actor, id uint, payload []byte) (*models.Job, error)
	Get(ctx context.Context, id uint) (*models.Job, error)
	List(ctx context.Context, filter models.JobFilter) ([]models.JobWithCount, error)
	UpdateStatus(ctx context.Context, actor Actor, id uint, status models.JobStatus) (*models.Job, error)
	Delete(ctx context.Context, actor Actor, id uint, force bool) error
	Recommended(ctx context.Context, actor Actor) ([]models.JobRecommendation, error)
}

type jobService struct {
	jobs  repositories.JobRepository
	users repositories.UserRepository
	index JobIndexService
	audit AuditService
	log   logger.Logger
}

func NewJobService(
	jobs repositories.JobRepository,
	users repositories.UserRepository,
	index JobIndexService,
	audit AuditService,
	log logger.Logger,
) JobService {
	return &jobService{
		jobs:  jobs,
		users: users,
		index: index,
		audit: audit,
		log:   log,
	}
}

func decodeJobRequest(payload []byte) (*models.JobRequest, error) {
	var req models.JobRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, apperrors.NewValidation("invalid job payload", map[string]string{"body": err.Error()})
	}
	return &req, nil
}

func (s *jobService) Create(ctx context.Context, actor Actor, payload []byte) (*models.Job, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := validateJobPayload(createJobSchema, payload); err != nil {
		return nil, err
	}
	req, err := decodeJobRequest(payload)
	if err != nil {
		return nil, err
	}

	job := &models.Job{Status: models.JobStatusActive}
	applyJobRequest(job, req)
	if err := validateInternshipFields(job); err != nil {
		return nil, err
	}
	createdBy := actor.ID
	job.CreatedBy = &createdBy

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	s.reindex(ctx, job)
	s.audit.Record(ctx, actor.ID, AuditJobCreated, map[string]interface{}{
		"job_id": job.ID,
		"title":  job.Title,
	})

	return job, nil
}

func (s *jobService) Update(ctx context.Context, actor Actor, id uint, payload []byte) (*models.Job, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := validateJobPayload(updateJobSchema, payload); err != nil {
		return nil, err
	}
	req, err := decodeJobRequest(payload)
	if err != nil {
		return nil, err
	}

	existing, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *existing
	applyJobRequest(&merged, req)
	if err := validateInternshipFields(&merged); err != nil {
		return nil, err
	}

	job, err := s.jobs.Update(ctx, id, jobUpdates(req, &merged))
	if err != nil {
		return nil, err
	}

	s.reindex(ctx, job)
	s.audit.Record(ctx, actor.ID, AuditJobUpdated, map[string]interface{}{"job_id": id})

	return job, nil
}

func (s *jobService) Get(ctx context.Context, id uint) (*models.Job, error) {
	return s.jobs.FindByID(ctx, id)
}

func (s *jobService) List(ctx context.Context, filter models.JobFilter) ([]models.JobWithCount, error) {
	filter.Skills = ParseSkills(filter.Skills)
	jobs, err := s.jobs.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return withApplicantCounts(ctx, s.jobs, jobs)
}

func (s *jobService) UpdateStatus(ctx context.Context, actor Actor, id uint, status models.JobStatus) (*models.Job, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperrors.NewValidation("status must be one of active, closed, archived", map[string]string{"status": "invalid"})
	}

	job, err := s.jobs.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.reindex(ctx, job)
	s.audit.Record(ctx, actor.ID, AuditJobUpdated, map[string]interface{}{
		"job_id": id,
		"status": string(status),
	})

	return job, nil
}

// Delete archives the job unless force is set, in which case the job and its
// applications are removed.
func (s *jobService) Delete(ctx context.Context, actor Actor, id uint, force bool) error {
	if err := requireStaff(actor); err != nil {
		return err
	}

	if force {
		if err := s.jobs.Delete(ctx, id); err != nil {
			return err
		}
	} else if _, err := s.jobs.UpdateStatus(ctx, id, models.JobStatusArchived); err != nil {
		return err
	}

	if err := s.index.RemoveJob(ctx, id); err != nil {
		s.log.Warn("failed to remove job from index", map[string]interface{}{
			"job_id": id,
			"error":  err,
		})
	}

	s.audit.Record(ctx, actor.ID, AuditJobDeleted, map[string]interface{}{
		"job_id": id,
		"force":  force,
	})
	return nil
}

// Recommended ranks active jobs for the caller's profile. Without a semantic
// index it falls back to skill overlap.
func (s *jobService) Recommended(ctx context.Context, actor Actor) ([]models.JobRecommendation, error) {
	user, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if s.index.Enabled() {
		recs, err := s.semanticRecommendations(ctx, user)
		if err == nil {
			return recs, nil
		}
		s.log.Warn("semantic recommendations failed, using skill overlap", map[string]interface{}{
			"user_id": user.ID,
			"error":   err,
		})
	}

	jobs, err := s.jobs.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return rankBySkillOverlap(jobs, user.Skills, recommendationLimit), nil
}

func (s *jobService) semanticRecommendations(ctx context.Context, user *models.User) ([]models.JobRecommendation, error) {
	profile := strings.Join([]string{
		strings.Join(user.Skills, ", "),
		user.Experience,
		strings.Join(user.Education, ", "),
	}, "\n")

	matches, err := s.index.Recommend(ctx, profile, recommendationLimit)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(matches))
	for i, m := range matches {
		ids[i] = m.JobID
	}
	jobs, err := s.jobs.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]models.Job, len(jobs))
	for _, job := range jobs {
		byID[job.ID] = job
	}

	recs := make([]models.JobRecommendation, 0, len(matches))
	for _, m := range matches {
		job, ok := byID[m.JobID]
		if !ok || !job.AcceptsApplications() {
			continue
		}
		recs = append(recs, models.JobRecommendation{Job: job, Score: m.Score})
	}
	return recs, nil
}

func rankBySkillOverlap(jobs []models.Job, skills []string, limit int) []models.JobRecommendation {
	have := make(map[string]bool, len(skills))
	for _, skill := range skills {
		have[strings.ToLower(strings.TrimSpace(skill))] = true
	}

	var recs []models.JobRecommendation
	for _, job := range jobs {
		if len(job.Skills) == 0 {
			continue
		}
		matched := 0
		for _, skill := range job.Skills {
			if have[strings.ToLower(strings.TrimSpace(skill))] {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		recs = append(recs, models.JobRecommendation{
			Job:   job,
			Score: float32(matched) / float32(len(job.Skills)),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	if len(recs) > limit {
		recs = recs[:limit]
	}
	if recs == nil {
		recs = []models.JobRecommendation{}
	}
	return recs
}

func (s *jobService) reindex(ctx context.Context, job *models.Job) {
	if err := s.index.IndexJob(ctx, job); err != nil {
		s.log.Warn("failed to index job", map[string]interface{}{
			"job_id": job.ID,
			"error":  err,
		})
	}
}

func applyJobRequest(job *models.Job, req *models.JobRequest) {
	if req.Title != nil {
		job.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.Requirements != nil {
		job.Requirements = req.Requirements
	}
	if req.Responsibilities != nil {
		job.Responsibilities = req.Responsibilities
	}
	if req.Benefits != nil {
		job.Benefits = req.Benefits
	}
	if req.Skills != nil {
		job.Skills = ParseSkills(req.Skills)
	}
	if req.Location != nil {
		job.Location = *req.Location
	}
	if req.Type != nil {
		job.Type = strings.ToLower(strings.TrimSpace(*req.Type))
		if job.Type == "internship" {
			job.IsInternship = true
		}
	}
	if req.ExperienceLevel != nil {
		job.ExperienceLevel = *req.ExperienceLevel
	}
	if req.Deadline != nil {
		job.Deadline = req.Deadline
	}
	if req.IsInternship != nil {
		job.IsInternship = *req.IsInternship || job.Type == "internship"
	}
	if req.MinGadaLevel != nil {
		job.MinGadaLevel = req.MinGadaLevel
		if *req.MinGadaLevel == "" {
			job.MinGadaLevel = nil
		}
	}
	if req.InternshipDuration != nil {
		job.InternshipDuration = req.InternshipDuration
	}
	if req.StipendRange != nil {
		job.StipendRange = *req.StipendRange
	}
	if req.Category != nil {
		job.Category = *req.Category
	}
	if req.Status != nil {
		job.Status = *req.Status
	}
}

// jobUpdates lists the columns a partial update touches, read from the merged job.
func jobUpdates(req *models.JobRequest, job *models.Job) map[string]interface{} {
	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = job.Title
	}
	if req.Description != nil {
		updates["description"] = job.Description
	}
	if req.Requirements != nil {
		updates["requirements"] = job.Requirements
	}
	if req.Responsibilities != nil {
		updates["responsibilities"] = job.Responsibilities
	}
	if req.Benefits != nil {
		updates["benefits"] = job.Benefits
	}
	if req.Skills != nil {
		updates["skills"] = datatypes.JSONSlice[string](job.Skills)
	}
	if req.Location != nil {
		updates["location"] = job.Location
	}
	if req.Type != nil || req.IsInternship != nil {
		updates["type"] = job.Type
		updates["is_internship"] = job.IsInternship
	}
	if req.ExperienceLevel != nil {
		updates["experience_level"] = job.ExperienceLevel
	}
	if req.Deadline != nil {
		updates["deadline"] = job.Deadline
	}
	if req.MinGadaLevel != nil {
		updates["min_gada_level"] = job.MinGadaLevel
	}
	if req.InternshipDuration != nil {
		updates["internship_duration"] = job.InternshipDuration
	}
	if req.StipendRange != nil {
		updates["stipend_range"] = job.StipendRange
	}
	if req.Category != nil {
		updates["category"] = job.Category
	}
	if req.Status != nil {
		updates["status"] = job.Status
	}
	return updates
}

func validateInternshipFields(job *models.Job) error {
	if !job.IsInternship {
		return nil
	}
	if job.MinGadaLevel == nil {
		return apperrors.NewValidation("internship postings require minGadaLevel", map[string]string{"minGadaLevel": "required"})
	}
	if _, ok := GadaLevelByID(*job.MinGadaLevel); !ok {
		return apperrors.NewValidation("minGadaLevel is not a valid Gada level", map[string]string{"minGadaLevel": "unknown level"})
	}
	return nil
}
