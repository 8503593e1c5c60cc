package notification

import (
	"testing"
	"time"

	"garden/constants"

	"github.com/stretchr/testify/assert"
)

func TestCareVerb(t *testing.T) {
	assert.Equal(t, "tưới nước", CareVerb(constants.NotificationTypeWater))
	assert.Equal(t, "bón phân", CareVerb(constants.NotificationTypeFertilize))
	assert.Equal(t, "cắt tỉa", CareVerb(constants.NotificationTypePrune))
	assert.Equal(t, "thu hoạch", CareVerb(constants.NotificationTypeHarvest))
	assert.Equal(t, "chăm sóc", CareVerb(constants.NotificationTypeOther))
}

func TestMessageBuilder(t *testing.T) {
	nextDue := time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)
	message := NewMessageBuilder("Tưới nước cho cây ớt", constants.NotificationTypeWater, nextDue).Build()
	assert.Equal(t, "🔔 Tưới nước cho cây ớt: đến hạn tưới nước ngày 15/03/2025.", message)
}

func TestMelodyServiceNil(t *testing.T) {
	s := NewMelodyService(nil)
	assert.Error(t, s.SendMessage("hello"))
}
