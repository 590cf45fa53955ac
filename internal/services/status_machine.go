package services

import (
	"debo-engineering/job-portal/internal/apperrors"
	"debo-engineering/job-portal/internal/models"
)

var transitionTable = map[models.ApplicationStatus][]models.ApplicationStatus{
	models.StatusSubmitted:   {models.StatusUnderReview, models.StatusRejected},
	models.StatusUnderReview: {models.StatusShortlisted, models.StatusRejected},
	models.StatusShortlisted: {models.StatusInterview, models.StatusRejected},
	models.StatusInterview:   {models.StatusAccepted, models.StatusRejected},
	models.StatusAccepted:    {},
	models.StatusRejected:    {},
}

// AllowedTransitions returns the statuses reachable from from in one step.
func AllowedTransitions(from models.ApplicationStatus) []models.ApplicationStatus {
	targets := transitionTable[from]
	out := make([]models.ApplicationStatus, len(targets))
	copy(out, targets)
	return out
}

// CanTransition reports whether to is one step from from.
func CanTransition(from, to models.ApplicationStatus) bool {
	for _, allowed := range transitionTable[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus is true for known statuses with no outgoing transitions.
func IsTerminalStatus(s models.ApplicationStatus) bool {
	targets, known := transitionTable[s]
	return known && len(targets) == 0
}

// ValidateTransition returns an InvalidTransition error unless CanTransition holds.
func ValidateTransition(from, to models.ApplicationStatus) error {
	if !CanTransition(from, to) {
		return apperrors.NewInvalidTransition(string(from), string(to))
	}
	return nil
}
