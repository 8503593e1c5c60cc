package notification

import (
	"fmt"
	"time"

	"garden/constants"

	"github.com/olahol/melody"
)

type Service interface {
	SendMessage(message string) error
}

type MelodyService struct {
	m *melody.Melody
}

func NewMelodyService(m *melody.Melody) *MelodyService {
	return &MelodyService{m: m}
}

func (s *MelodyService) SendMessage(message string) error {
	if s.m == nil {
		return fmt.Errorf("melody instance is nil")
	}
	return s.m.Broadcast([]byte(message))
}

// CareVerb trả về động từ mô tả hành động chăm sóc theo loại thông báo
func CareVerb(notificationType string) string {
	switch notificationType {
	case constants.NotificationTypeWater:
		return "tưới nước"
	case constants.NotificationTypeFertilize:
		return "bón phân"
	case constants.NotificationTypePrune:
		return "cắt tỉa"
	case constants.NotificationTypeHarvest:
		return "thu hoạch"
	default:
		return "chăm sóc"
	}
}

type MessageBuilder struct {
	name             string
	notificationType string
	nextDue          time.Time
}

func NewMessageBuilder(name string, notificationType string, nextDue time.Time) *MessageBuilder {
	return &MessageBuilder{
		name:             name,
		notificationType: notificationType,
		nextDue:          nextDue,
	}
}

func (b *MessageBuilder) Build() string {
	return fmt.Sprintf("🔔 %s: đến hạn %s ngày %s.", b.name, CareVerb(b.notificationType), b.nextDue.Format("02/01/2006"))
}
