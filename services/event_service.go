package services

import (
	"context"
	"fmt"
	"time"

	"garden/constants"
	"garden/models"
	"garden/services/logger"
	"garden/services/notification"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// EventService là dispatcher tường minh cho các sự kiện chăm sóc vườn.
// Các subsystem vườn/cây gọi trực tiếp từng handler một cách đồng bộ;
// handler tự bắt và log lỗi của mình, không bao giờ ném ngược lại để
// làm hỏng mutation đã kích hoạt sự kiện.
type EventService struct {
	db        *gorm.DB
	logger    logger.Logger
	rdb       *redis.Client
	scheduler *ScheduleService
	notifier  notification.Service
}

type EventServiceOptions struct {
	DB        *gorm.DB
	Logger    logger.Logger
	Redis     *redis.Client
	Scheduler *ScheduleService
	Notifier  notification.Service
}

func NewEventService(opts EventServiceOptions) *EventService {
	return &EventService{
		db:        opts.DB,
		logger:    opts.Logger,
		rdb:       opts.Redis,
		scheduler: opts.Scheduler,
		notifier:  opts.Notifier,
	}
}

// invalidateCaches xóa bộ cache key cố định của một thông báo. Xóa cache
// là fire-and-forget: lỗi chỉ được log, không được leo thang.
func (s *EventService) invalidateCaches(ctx context.Context, n *models.Notification) {
	if s.rdb == nil {
		return
	}

	garden := n.Garden
	if garden == nil {
		garden = &models.Garden{}
		if err := s.db.WithContext(ctx).First(garden, n.GardenID).Error; err != nil {
			s.logger.Error("Lỗi tải vườn %d để xóa cache thông báo %d: %v", n.GardenID, n.ID, err)
			return
		}
	}

	keys := NotificationCacheKeys(n.ID, n.GardenID, garden.UserID)
	if err := DeleteFromRedis(ctx, s.rdb, keys...); err != nil {
		s.logger.Error("Lỗi xóa cache cho thông báo %d: %v", n.ID, err)
	}
}

func (s *EventService) broadcast(message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendMessage(message); err != nil {
		s.logger.Warn("Lỗi gửi thông báo realtime: %v", err)
	}
}

// OnNotificationCreated tạo lần nhắc đầu tiên cho một thông báo vừa được
// tạo. Với dữ liệu import hàng loạt (bulk = true) thì bỏ qua, tránh tạo
// ồ ạt lần nhắc khi migrate dữ liệu.
func (s *EventService) OnNotificationCreated(ctx context.Context, n *models.Notification, bulk bool) {
	if bulk {
		s.logger.Debug("Bỏ qua tạo lần nhắc đầu tiên cho thông báo %d (bulk import)", n.ID)
		return
	}

	instance, err := s.scheduler.CreateFirstInstance(ctx, n, time.Now())
	if err != nil {
		s.logger.Error("Lỗi tạo lần nhắc đầu tiên cho thông báo %d: %v", n.ID, err)
		return
	}

	s.broadcast(notification.NewMessageBuilder(n.Name, n.Type, instance.NextDue).Build())
	s.invalidateCaches(ctx, n)
}

// OnInstanceStatusChanged tạo lần nhắc kế tiếp khi một lần nhắc vừa
// chuyển sang completed hoặc skipped
func (s *EventService) OnInstanceStatusChanged(ctx context.Context, instance *models.NotificationInstance, previousStatus string) {
	if instance.Status == previousStatus {
		return
	}
	if instance.Status != constants.InstanceStatusCompleted && instance.Status != constants.InstanceStatusSkipped {
		return
	}

	next, err := s.scheduler.ScheduleNext(ctx, instance)
	if err != nil {
		s.logger.Error("Lỗi tạo lần nhắc kế tiếp cho lần nhắc %d (thông báo %d): %v",
			instance.ID, instance.NotificationID, err)
		return
	}

	if next != nil && instance.Notification != nil {
		s.broadcast(notification.NewMessageBuilder(instance.Notification.Name, instance.Notification.Type, next.NextDue).Build())
	}
	if instance.Notification != nil {
		s.invalidateCaches(ctx, instance.Notification)
	}
}

// OnCareLogged hoàn thành tự động các lần nhắc pending khớp với một hành
// động chăm sóc vừa được ghi nhận (tưới nước/bón phân/cắt tỉa). Đi qua
// đúng transition Complete như khi người dùng tự đánh dấu, nên vẫn tạo
// lần nhắc kế tiếp.
func (s *EventService) OnCareLogged(ctx context.Context, log *models.GardenLog, careType string) {
	var instances []models.NotificationInstance
	err := s.db.WithContext(ctx).
		Joins("JOIN notifications ON notifications.id = notification_instances.notification_id").
		Joins("JOIN notification_plants ON notification_plants.notification_id = notifications.id").
		Where("notification_instances.status = ?", constants.InstanceStatusPending).
		Where("notifications.garden_id = ? AND notifications.type = ? AND notification_plants.plant_id = ?",
			log.GardenID, careType, log.PlantID).
		Preload("Notification").
		Find(&instances).Error
	if err != nil {
		s.logger.Error("Lỗi tìm lần nhắc khớp với hành động %s (vườn %d, cây %d): %v",
			careType, log.GardenID, log.PlantID, err)
		return
	}

	now := time.Now()
	for i := range instances {
		instance := &instances[i]
		previousStatus := instance.Status

		intervalDays := 0
		if instance.Notification != nil {
			intervalDays = instance.Notification.IntervalDays
		}
		if err := instance.Complete(now, intervalDays); err != nil {
			s.logger.Error("Lỗi hoàn thành tự động lần nhắc %d: %v", instance.ID, err)
			continue
		}
		if err := s.db.WithContext(ctx).Save(instance).Error; err != nil {
			s.logger.Error("Lỗi lưu lần nhắc %d sau khi hoàn thành tự động: %v", instance.ID, err)
			continue
		}

		s.OnInstanceStatusChanged(ctx, instance, previousStatus)
	}
}

// healthDeclined kiểm tra tình trạng mới có phải là suy giảm đáng báo động
func healthDeclined(newStatus string) bool {
	return newStatus == constants.HealthStatusPoor || newStatus == constants.HealthStatusDying
}

// healthRecovered kiểm tra cây có hồi phục rõ rệt không. Cải thiện nhỏ
// (vd: good -> excellent) không đáng để thông báo.
func healthRecovered(oldStatus, newStatus string) bool {
	wasBad := oldStatus == constants.HealthStatusPoor || oldStatus == constants.HealthStatusDying
	nowGood := newStatus == constants.HealthStatusGood || newStatus == constants.HealthStatusExcellent
	return wasBad && nowGood
}

// OnPlantHealthChanged xử lý thay đổi tình trạng sức khỏe của một cây.
// Suy giảm xuống poor/dying: đảm bảo đúng một cảnh báo sức khỏe đang mở
// (idempotent). Hồi phục rõ rệt: tạo một thông báo một lần báo tin vui.
func (s *EventService) OnPlantHealthChanged(ctx context.Context, oldStatus, newStatus string, gardenID, plantID uint) {
	if oldStatus == newStatus {
		return
	}

	var plant models.Plant
	if err := s.db.WithContext(ctx).First(&plant, plantID).Error; err != nil {
		s.logger.Error("Lỗi tải cây %d khi xử lý thay đổi sức khỏe: %v", plantID, err)
		return
	}

	if healthDeclined(newStatus) {
		// Kiểm tra đã có cảnh báo đang mở cho cây này chưa
		var count int64
		err := s.db.WithContext(ctx).Model(&models.Notification{}).
			Joins("JOIN notification_plants ON notification_plants.notification_id = notifications.id").
			Joins("JOIN notification_instances ON notification_instances.notification_id = notifications.id").
			Where("notifications.garden_id = ? AND notifications.type = ? AND notifications.subtype = ?",
				gardenID, constants.NotificationTypeOther, constants.SubtypeHealthAlert).
			Where("notification_plants.plant_id = ? AND notification_instances.status = ?",
				plantID, constants.InstanceStatusPending).
			Count(&count).Error
		if err != nil {
			s.logger.Error("Lỗi kiểm tra cảnh báo sức khỏe của cây %d (vườn %d): %v", plantID, gardenID, err)
			return
		}
		if count > 0 {
			return
		}

		name := fmt.Sprintf("Cây %s đang yếu, cần kiểm tra", plant.CommonName)
		s.createInternalNotification(ctx, gardenID, plantID, name, constants.SubtypeHealthAlert)
		return
	}

	if healthRecovered(oldStatus, newStatus) {
		name := fmt.Sprintf("Cây %s đã hồi phục", plant.CommonName)
		s.createInternalNotification(ctx, gardenID, plantID, name, constants.SubtypeHealthRecovered)
	}
}

// createInternalNotification tạo một thông báo một lần loại other do hệ
// thống sinh ra (không qua API), kèm lần nhắc đầu tiên
func (s *EventService) createInternalNotification(ctx context.Context, gardenID, plantID uint, name, subtype string) {
	n := &models.Notification{
		GardenID:     gardenID,
		Name:         name,
		Type:         constants.NotificationTypeOther,
		Subtype:      subtype,
		IntervalDays: 0,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(n).Error; err != nil {
			return err
		}
		return tx.Create(&models.NotificationPlant{
			NotificationID: n.ID,
			PlantID:        plantID,
		}).Error
	})
	if err != nil {
		s.logger.Error("Lỗi tạo thông báo hệ thống %q cho vườn %d, cây %d: %v", name, gardenID, plantID, err)
		return
	}

	s.OnNotificationCreated(ctx, n, false)
}

// OnPlantAddedToGarden tạo các thông báo chăm sóc mặc định
// (tưới nước/bón phân/cắt tỉa) từ chu kỳ chăm sóc của cây khi cây được
// thêm vào vườn, bỏ qua chu kỳ trống hoặc bằng 0
func (s *EventService) OnPlantAddedToGarden(ctx context.Context, log *models.GardenLog) {
	plant := log.Plant
	if plant == nil {
		plant = &models.Plant{}
		if err := s.db.WithContext(ctx).First(plant, log.PlantID).Error; err != nil {
			s.logger.Error("Lỗi tải cây %d khi thêm vào vườn %d: %v", log.PlantID, log.GardenID, err)
			return
		}
	}

	careTypes := []string{
		constants.NotificationTypeWater,
		constants.NotificationTypeFertilize,
		constants.NotificationTypePrune,
	}
	for _, careType := range careTypes {
		interval := plant.CareInterval(careType)
		if interval <= 0 {
			continue
		}

		n := &models.Notification{
			GardenID:     log.GardenID,
			Name:         fmt.Sprintf("%s cho cây %s", capitalizedCareVerb(careType), plant.CommonName),
			Type:         careType,
			IntervalDays: interval,
		}
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(n).Error; err != nil {
				return err
			}
			return tx.Create(&models.NotificationPlant{
				NotificationID: n.ID,
				PlantID:        plant.ID,
			}).Error
		})
		if err != nil {
			s.logger.Error("Lỗi tạo thông báo %s mặc định cho cây %d trong vườn %d: %v",
				careType, plant.ID, log.GardenID, err)
			continue
		}

		s.OnNotificationCreated(ctx, n, false)
	}
}

// OnPlantRemovedFromGarden dọn dẹp thông báo của một cây vừa bị gỡ khỏi
// vườn. Thông báo mất liên kết cây cuối cùng sẽ bị xóa cùng toàn bộ lần
// nhắc của nó; thông báo còn cây khác thì giữ nguyên.
func (s *EventService) OnPlantRemovedFromGarden(ctx context.Context, gardenID, plantID uint) {
	// Cây vẫn còn log khác trong vườn này thì chưa dọn
	var logCount int64
	err := s.db.WithContext(ctx).Model(&models.GardenLog{}).
		Where("garden_id = ? AND plant_id = ?", gardenID, plantID).
		Count(&logCount).Error
	if err != nil {
		s.logger.Error("Lỗi đếm nhật ký của cây %d trong vườn %d: %v", plantID, gardenID, err)
		return
	}
	if logCount > 0 {
		return
	}

	var notifications []models.Notification
	err = s.db.WithContext(ctx).
		Joins("JOIN notification_plants ON notification_plants.notification_id = notifications.id").
		Where("notifications.garden_id = ? AND notification_plants.plant_id = ?", gardenID, plantID).
		Preload("Garden").
		Find(&notifications).Error
	if err != nil {
		s.logger.Error("Lỗi tìm thông báo của cây %d trong vườn %d: %v", plantID, gardenID, err)
		return
	}

	for i := range notifications {
		n := &notifications[i]
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("notification_id = ? AND plant_id = ?", n.ID, plantID).
				Delete(&models.NotificationPlant{}).Error; err != nil {
				return err
			}

			var remaining int64
			if err := tx.Model(&models.NotificationPlant{}).
				Where("notification_id = ?", n.ID).
				Count(&remaining).Error; err != nil {
				return err
			}
			if remaining > 0 {
				return nil
			}

			// Hết cây liên kết: xóa thông báo và toàn bộ lần nhắc
			if err := tx.Where("notification_id = ?", n.ID).
				Delete(&models.NotificationInstance{}).Error; err != nil {
				return err
			}
			return tx.Delete(n).Error
		})
		if err != nil {
			s.logger.Error("Lỗi dọn dẹp thông báo %d sau khi gỡ cây %d: %v", n.ID, plantID, err)
			continue
		}

		s.invalidateCaches(ctx, n)
	}
}

// OnNotificationMutated xóa cache sau một mutation bất kỳ trên thông báo
// (được các controller gọi sau complete/skip/xóa thủ công)
func (s *EventService) OnNotificationMutated(ctx context.Context, n *models.Notification) {
	s.invalidateCaches(ctx, n)
}

func capitalizedCareVerb(careType string) string {
	switch careType {
	case constants.NotificationTypeWater:
		return "Tưới nước"
	case constants.NotificationTypeFertilize:
		return "Bón phân"
	case constants.NotificationTypePrune:
		return "Cắt tỉa"
	default:
		return "Chăm sóc"
	}
}
