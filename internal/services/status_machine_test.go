package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"debo-engineering/job-portal/internal/apperrors"
	"debo-engineering/job-portal/internal/models"
)

func TestCanTransitionMatchesTable(t *testing.T) {
	allowed := map[models.ApplicationStatus][]models.ApplicationStatus{
		models.StatusSubmitted:   {models.StatusUnderReview, models.StatusRejected},
		models.StatusUnderReview: {models.StatusShortlisted, models.StatusRejected},
		models.StatusShortlisted: {models.StatusInterview, models.StatusRejected},
		models.StatusInterview:   {models.StatusAccepted, models.StatusRejected},
	}

	for _, from := range models.ApplicationStatuses {
		for _, to := range models.ApplicationStatuses {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)

			err := ValidateTransition(from, to)
			if want {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition), "%s -> %s", from, to)
			}
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, IsTerminalStatus(models.StatusAccepted))
	assert.True(t, IsTerminalStatus(models.StatusRejected))
	assert.False(t, IsTerminalStatus(models.StatusInterview))
	assert.False(t, IsTerminalStatus("withdrawn"))
	assert.Empty(t, AllowedTransitions(models.StatusAccepted))
}

func TestAllowedTransitionsReturnsCopy(t *testing.T) {
	targets := AllowedTransitions(models.StatusSubmitted)
	targets[0] = models.StatusAccepted

	assert.Equal(t, models.StatusUnderReview, AllowedTransitions(models.StatusSubmitted)[0])
}

func TestUnknownStatusCannotTransition(t *testing.T) {
	assert.False(t, CanTransition("pending", models.StatusUnderReview))
	assert.Error(t, ValidateTransition("pending", models.StatusUnderReview))
}
