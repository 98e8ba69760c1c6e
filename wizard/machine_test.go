package wizard

import (
	"testing"

	"Gin_postgres_redis_fleet_custody/config"
	"Gin_postgres_redis_fleet_custody/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readyDraft() *Draft {
	d := NewDraft(FlowConfig{Mode: ModeCheckin, OdometerFloor: 100, PhotoPolicy: config.PhotoLenient}, "v1", "")
	d.General = validGeneral()
	d.Condition = validCondition()
	d.Photos = allPhotos()
	return d
}

func TestAdvanceGatedByValidation(t *testing.T) {
	d := NewDraft(FlowConfig{Mode: ModeCheckin, OdometerFloor: 100}, "v1", "")

	// empty step 1 cannot advance
	v := d.Advance(nil)
	require.NotEmpty(t, v)
	assert.Equal(t, StateStep1, d.State)

	d.General = validGeneral()
	require.Empty(t, d.Advance(nil))
	assert.Equal(t, StateStep2, d.State)
}

func TestAdvanceWalksAllSteps(t *testing.T) {
	d := readyDraft()
	for _, want := range []State{StateStep2, StateStep3, StateStep4, StateStep5} {
		require.Empty(t, d.Advance(nil), "advancing towards %s", want)
		assert.Equal(t, want, d.State)
	}
	// step 5 is the end of the line for Advance
	assert.NotEmpty(t, d.Advance(nil))
}

func TestBackAlwaysAllowed(t *testing.T) {
	d := readyDraft()
	require.Empty(t, d.Advance(nil))
	require.Equal(t, StateStep2, d.State)

	// invalidate step 1, going back must still work
	d.General = GeneralData{}
	require.NoError(t, d.Back())
	assert.Equal(t, StateStep1, d.State)

	assert.Error(t, d.Back())
}

func TestBeginSubmitOnlyFromReview(t *testing.T) {
	d := readyDraft()
	v := d.BeginSubmit(nil)
	require.NotEmpty(t, v)
	assert.Contains(t, v[0], "revisão")

	for range 4 {
		require.Empty(t, d.Advance(nil))
	}
	require.Equal(t, StateStep5, d.State)
	require.Empty(t, d.BeginSubmit(nil))
	assert.Equal(t, StateSubmitting, d.State)
}

func TestBeginSubmitRerunsEveryGate(t *testing.T) {
	d := readyDraft()
	for range 4 {
		require.Empty(t, d.Advance(nil))
	}
	// data went bad after the step already passed
	d.General.Odometer = int64p(1)
	v := d.BeginSubmit(nil)
	require.NotEmpty(t, v)
	assert.Equal(t, StateStep5, d.State)
}

func TestFailLandsOnReviewWithDataIntact(t *testing.T) {
	d := readyDraft()
	for range 4 {
		require.Empty(t, d.Advance(nil))
	}
	require.Empty(t, d.BeginSubmit(nil))

	require.NoError(t, d.Fail())
	assert.Equal(t, StateStep5, d.State)
	assert.Equal(t, "Silva", d.General.AgentName)
	assert.Len(t, d.Photos, len(models.RequiredPhotoTypes))

	// and the retry path is open again
	require.Empty(t, d.BeginSubmit(nil))
	require.NoError(t, d.Complete())
	assert.Equal(t, StateCompleted, d.State)
}

func TestCompleteOnlyFromSubmitting(t *testing.T) {
	d := readyDraft()
	assert.Error(t, d.Complete())
	assert.Error(t, d.Fail())
}

func TestTransitionTable(t *testing.T) {
	assert.True(t, CanTransition(StateStep5, StateSubmitting))
	assert.True(t, CanTransition(StateSubmitting, StateFailed))
	assert.True(t, CanTransition(StateFailed, StateStep5))
	assert.False(t, CanTransition(StateStep1, StateStep3))
	assert.False(t, CanTransition(StateCompleted, StateStep1))
	assert.False(t, CanTransition(StateStep5, StateCompleted))
}
