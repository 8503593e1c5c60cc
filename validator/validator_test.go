package validator

import (
	"testing"
	"time"

	"garden/constants"
	"garden/errors"
	"garden/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validNotification() *models.Notification {
	return &models.Notification{
		GardenID:     1,
		Name:         "Tưới nước cho cây ớt",
		Type:         constants.NotificationTypeWater,
		IntervalDays: 7,
	}
}

func assertCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, code, appErr.Code)
}

func TestValidateNotification(t *testing.T) {
	assert.NoError(t, ValidateNotification(validNotification()))
}

func TestValidateNotificationRejectsEmptyName(t *testing.T) {
	n := validNotification()
	n.Name = ""
	assertCode(t, ValidateNotification(n), errors.ErrCodeRequiredField)
}

func TestValidateNotificationRejectsUnknownType(t *testing.T) {
	n := validNotification()
	n.Type = "sing_to_plant"
	assertCode(t, ValidateNotification(n), errors.ErrCodeInvalidType)
}

func TestSubtypeRequiredForOther(t *testing.T) {
	n := validNotification()
	n.Type = constants.NotificationTypeOther
	n.Subtype = ""
	assertCode(t, ValidateNotification(n), errors.ErrCodeInvalidSubtype)

	n.Subtype = constants.SubtypeHealthAlert
	assert.NoError(t, ValidateNotification(n))
}

func TestSubtypeForbiddenForNonOther(t *testing.T) {
	n := validNotification()
	n.Subtype = "something"
	assertCode(t, ValidateNotification(n), errors.ErrCodeInvalidSubtype)
}

func TestValidateNotificationRejectsNonPositiveInterval(t *testing.T) {
	for _, interval := range []int{0, -3} {
		n := validNotification()
		n.IntervalDays = interval
		assertCode(t, ValidateNotification(n), errors.ErrCodeInvalidInterval)
	}
}

func TestValidateGardenLog(t *testing.T) {
	log := &models.GardenLog{
		GardenID:    1,
		PlantID:     2,
		PlantedDate: time.Now().AddDate(0, 0, -10),
	}
	assert.NoError(t, ValidateGardenLog(log))

	log.HealthStatus = "zombie"
	assertCode(t, ValidateGardenLog(log), errors.ErrCodeInvalidHealth)

	log.HealthStatus = constants.HealthStatusGood
	log.PlantedDate = time.Now().AddDate(0, 0, 1)
	assertCode(t, ValidateGardenLog(log), errors.ErrCodeInvalidFormat)
}

func TestValidateCareType(t *testing.T) {
	assert.NoError(t, ValidateCareType(constants.NotificationTypeWater))
	assert.NoError(t, ValidateCareType(constants.NotificationTypePrune))
	assertCode(t, ValidateCareType(constants.NotificationTypeHarvest), errors.ErrCodeInvalidCare)
	assertCode(t, ValidateCareType("sunbathe"), errors.ErrCodeInvalidCare)
}
