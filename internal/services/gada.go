package services

import (
	"strings"

	"debo-engineering/job-portal/internal/apperrors"
	"debo-engineering/job-portal/internal/models"
)

// GadaLevel is one tier of the intern seniority ladder. MinDuration is in weeks.
type GadaLevel struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	MinDuration int      `json:"min_duration"`
	Privileges  []string `json:"privileges"`
}

// paidInternshipMinWeeks is the duration from which an internship is paid.
const paidInternshipMinWeeks = 16

var gadaLevels = []GadaLevel{
	{ID: "beginner", Name: "Beginner", MinDuration: 4, Privileges: []string{"basic-training"}},
	{ID: "early-beginner", Name: "Early Beginner", MinDuration: 8, Privileges: []string{"project-access"}},
	{ID: "junior-developer", Name: "Junior Developer", MinDuration: 12, Privileges: []string{"code-review"}},
	{ID: "mid-level-developer", Name: "Mid-Level Developer", MinDuration: 16, Privileges: []string{"mentorship"}},
	{ID: "senior-developer", Name: "Senior Developer", MinDuration: 20, Privileges: []string{"architecture"}},
	{ID: "tech-lead", Name: "Tech Lead", MinDuration: 24, Privileges: []string{"team-lead"}},
	{ID: "expert-developer", Name: "Expert Developer", MinDuration: 28, Privileges: []string{"research"}},
	{ID: "master-developer", Name: "Master Developer", MinDuration: 32, Privileges: []string{"strategy"}},
}

// GadaLevels returns a copy of the eight levels in progression order.
func GadaLevels() []GadaLevel {
	out := make([]GadaLevel, len(gadaLevels))
	copy(out, gadaLevels)
	return out
}

func gadaIndex(id string) int {
	for i, level := range gadaLevels {
		if level.ID == id {
			return i
		}
	}
	return -1
}

// GadaLevelByID looks up a level by its exact id.
func GadaLevelByID(id string) (GadaLevel, bool) {
	if i := gadaIndex(id); i >= 0 {
		return gadaLevels[i], true
	}
	return GadaLevel{}, false
}

// GadaLevelByName resolves a display name or id, ignoring case.
func GadaLevelByName(name string) (GadaLevel, bool) {
	name = strings.TrimSpace(name)
	for _, level := range gadaLevels {
		if strings.EqualFold(level.Name, name) || strings.EqualFold(level.ID, name) {
			return level, true
		}
	}
	return GadaLevel{}, false
}

// CanProgress is true only when target immediately follows current.
func CanProgress(current, target string) bool {
	ci := gadaIndex(current)
	if ci < 0 {
		return false
	}
	ti := gadaIndex(target)
	return ti >= 0 && ti == ci+1
}

// ValidateLevelAssignment allows only the first level for an unclassified
// intern and only the next level otherwise.
func ValidateLevelAssignment(current *string, target string) error {
	if current == nil || *current == "" {
		if target != gadaLevels[0].ID {
			return apperrors.NewInvalidInitialLevel(gadaLevels[0].Name)
		}
		return nil
	}

	if !CanProgress(*current, target) {
		return apperrors.NewInvalidProgression(*current, target)
	}
	return nil
}

// NextGadaLevel returns the level after current, or false at the top.
func NextGadaLevel(current *string) (GadaLevel, bool) {
	if current == nil || *current == "" {
		return gadaLevels[0], true
	}
	i := gadaIndex(*current)
	if i < 0 || i+1 >= len(gadaLevels) {
		return GadaLevel{}, false
	}
	return gadaLevels[i+1], true
}

// MeetsMinimumLevel reports whether level is at or above min.
func MeetsMinimumLevel(level, min string) bool {
	li, mi := gadaIndex(level), gadaIndex(min)
	return li >= 0 && mi >= 0 && li >= mi
}

// DeriveInternshipType maps a level to paid or unpaid from its minimum duration.
func DeriveInternshipType(levelID string) (models.InternshipType, bool) {
	level, ok := GadaLevelByID(levelID)
	if !ok {
		return "", false
	}
	if level.MinDuration < paidInternshipMinWeeks {
		return models.InternshipUnpaid, true
	}
	return models.InternshipPaid, true
}

// ClassifyInternshipDuration labels a duration in weeks as paid or unpaid.
func ClassifyInternshipDuration(weeks int) string {
	if weeks < paidInternshipMinWeeks {
		return "Unpaid Internship"
	}
	return "Paid Internship"
}
