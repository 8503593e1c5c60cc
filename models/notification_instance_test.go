package models

import (
	"testing"
	"time"

	"garden/constants"
	"garden/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingInstance(nextDue time.Time) *NotificationInstance {
	return &NotificationInstance{
		ID:             1,
		NotificationID: 10,
		NextDue:        nextDue,
		Status:         constants.InstanceStatusPending,
	}
}

func TestInstanceComplete(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	instance := pendingInstance(t0.AddDate(0, 0, 7))

	now := t0.AddDate(0, 0, 8)
	err := instance.Complete(now, 7)
	require.NoError(t, err)

	assert.Equal(t, constants.InstanceStatusCompleted, instance.Status)
	require.NotNil(t, instance.CompletedAt)
	require.NotNil(t, instance.LastCompleted)
	assert.Equal(t, now, *instance.CompletedAt)
	assert.Equal(t, now, *instance.LastCompleted)
	assert.Equal(t, t0.AddDate(0, 0, 15), instance.NextDue)
}

func TestInstanceSkipAnchorsToPreviousDue(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	instance := pendingInstance(t0.AddDate(0, 0, 7))

	err := instance.Skip(7)
	require.NoError(t, err)

	assert.Equal(t, constants.InstanceStatusSkipped, instance.Status)
	assert.Equal(t, t0.AddDate(0, 0, 14), instance.NextDue)
	assert.Nil(t, instance.CompletedAt)
}

func TestInstanceMarkMissed(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	instance := pendingInstance(t0.AddDate(0, 0, 7))

	now := t0.AddDate(0, 0, 25)
	err := instance.MarkMissed(now, 7)
	require.NoError(t, err)

	assert.Equal(t, constants.InstanceStatusMissed, instance.Status)
	assert.Equal(t, t0.AddDate(0, 0, 32), instance.NextDue)
}

func TestTerminalStatesRejectTransitions(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	terminal := []string{
		constants.InstanceStatusCompleted,
		constants.InstanceStatusSkipped,
		constants.InstanceStatusMissed,
	}
	for _, status := range terminal {
		instance := pendingInstance(t0)
		instance.Status = status

		for _, err := range []error{
			instance.Complete(t0, 7),
			instance.Skip(7),
			instance.MarkMissed(t0, 7),
		} {
			require.Error(t, err)
			appErr := errors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, errors.ErrCodeInvalidTransition, appErr.Code)
		}
	}
}

func TestInstanceIsOverdue(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	instance := pendingInstance(t0)

	assert.True(t, instance.IsOverdue(t0.Add(time.Minute)))
	assert.False(t, instance.IsOverdue(t0.Add(-time.Minute)))
}

func TestNotificationIsOneTime(t *testing.T) {
	assert.True(t, (&Notification{IntervalDays: 0}).IsOneTime())
	assert.True(t, (&Notification{IntervalDays: -1}).IsOneTime())
	assert.False(t, (&Notification{IntervalDays: 7}).IsOneTime())
}

func TestNotificationHasPlant(t *testing.T) {
	n := &Notification{
		Plants: []NotificationPlant{{PlantID: 3}, {PlantID: 5}},
	}
	assert.True(t, n.HasPlant(5))
	assert.False(t, n.HasPlant(4))
}
