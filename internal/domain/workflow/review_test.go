package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/garyjia/billed/internal/domain/entity"
)

// Evaluated during package initialisation, before any test runs
var decidedAtInit, decideAtInitErr = Decide(context.Background(), entity.StatusPending, entity.StatusAccepted)

func TestDecide_DuringInitialisation(t *testing.T) {
	assert.NoError(t, decideAtInitErr)
	assert.Equal(t, entity.StatusAccepted, decidedAtInit)
}

func TestDecisions(t *testing.T) {
	tests := []struct {
		status entity.Status
		want   []entity.Status
	}{
		{entity.StatusPending, []entity.Status{entity.StatusRefused, entity.StatusAccepted}},
		{entity.StatusAccepted, nil},
		{entity.StatusRefused, nil},
		{entity.Status("draft"), nil},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, Decisions(tt.status))
		})
	}
}

func TestIsReviewed(t *testing.T) {
	assert.False(t, IsReviewed(entity.StatusPending))
	assert.True(t, IsReviewed(entity.StatusAccepted))
	assert.True(t, IsReviewed(entity.StatusRefused))
	assert.False(t, IsReviewed(entity.Status("draft")))
}
