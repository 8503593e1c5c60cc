package services

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata"

	"garden/constants"
	"garden/models"
	"garden/services/logger"

	"gorm.io/gorm"
)

const (
	DefaultTimezone = "Asia/Ho_Chi_Minh"

	ErrCodeInvalidTimezone = "INVALID_TIMEZONE"
	ErrCodeQueryFailed     = "QUERY_FAILED"
)

// Các bucket trên dashboard nhắc việc
const (
	BucketOverdue  = "overdue"
	BucketToday    = "today"
	BucketTomorrow = "tomorrow"
	BucketThisWeek = "this_week"
	BucketLater    = "later"
)

// EligibilityService tính tập nhắc việc đang hiệu lực cho dashboard của
// một người dùng, bao gồm điều kiện thu hoạch cho thông báo loại harvest.
type EligibilityService struct {
	db     *gorm.DB
	logger logger.Logger
}

type EligibilityServiceOptions struct {
	DB     *gorm.DB
	Logger logger.Logger
}

func NewEligibilityService(opts EligibilityServiceOptions) *EligibilityService {
	return &EligibilityService{
		db:     opts.DB,
		logger: opts.Logger,
	}
}

// harvestReady kiểm tra điều kiện thu hoạch của một thông báo: với thông
// báo loại harvest, phải có ít nhất một cây liên kết đã trồng đủ số ngày
// daysToHarvest. Các loại khác luôn thỏa.
func harvestReady(n *models.Notification, logs []models.GardenLog, now time.Time) bool {
	if n.Type != constants.NotificationTypeHarvest {
		return true
	}
	for _, log := range logs {
		if log.GardenID != n.GardenID || !n.HasPlant(log.PlantID) {
			continue
		}
		if ready := log.HarvestReadyAt(); ready != nil && !ready.After(now) {
			return true
		}
	}
	return false
}

// bucketFor xếp một ngày đến hạn vào bucket dashboard theo giờ địa phương
func bucketFor(nextDue, now time.Time, loc *time.Location) string {
	if nextDue.Before(now) {
		return BucketOverdue
	}
	today := time.Date(now.In(loc).Year(), now.In(loc).Month(), now.In(loc).Day(), 0, 0, 0, 0, loc)
	due := nextDue.In(loc)
	switch days := int(time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, loc).Sub(today).Hours() / 24); {
	case days <= 0:
		return BucketToday
	case days == 1:
		return BucketTomorrow
	case days <= 7:
		return BucketThisWeek
	default:
		return BucketLater
	}
}

// ActiveInstances trả về các lần nhắc pending thuộc các vườn của user,
// đã lọc qua điều kiện thu hoạch, sắp xếp theo ngày đến hạn tăng dần.
// User chưa có vườn nào thì trả về danh sách rỗng, không phải lỗi.
func (s *EligibilityService) ActiveInstances(ctx context.Context, userID uint) ([]models.NotificationInstance, error) {
	var instances []models.NotificationInstance
	err := s.db.WithContext(ctx).
		Joins("JOIN notifications ON notifications.id = notification_instances.notification_id").
		Joins("JOIN gardens ON gardens.id = notifications.garden_id").
		Where("notification_instances.status = ? AND gardens.user_id = ?", constants.InstanceStatusPending, userID).
		Preload("Notification").
		Preload("Notification.Plants").
		Preload("Notification.Plants.Plant").
		Order("notification_instances.next_due ASC").
		Find(&instances).Error
	if err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeQueryFailed,
			Message: fmt.Sprintf("lỗi truy vấn nhắc việc của user %d", userID),
			Err:     err,
		}
	}
	if len(instances) == 0 {
		return instances, nil
	}

	var logs []models.GardenLog
	err = s.db.WithContext(ctx).
		Joins("JOIN gardens ON gardens.id = garden_logs.garden_id").
		Where("gardens.user_id = ?", userID).
		Preload("Plant").
		Find(&logs).Error
	if err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeQueryFailed,
			Message: fmt.Sprintf("lỗi truy vấn nhật ký vườn của user %d", userID),
			Err:     err,
		}
	}

	now := time.Now()
	return filterActive(instances, logs, now), nil
}

// filterActive lọc tập lần nhắc theo điều kiện thu hoạch
func filterActive(instances []models.NotificationInstance, logs []models.GardenLog, now time.Time) []models.NotificationInstance {
	active := make([]models.NotificationInstance, 0, len(instances))
	for _, instance := range instances {
		if instance.Notification == nil || harvestReady(instance.Notification, logs, now) {
			active = append(active, instance)
		}
	}
	return active
}

// Dashboard xếp các lần nhắc đang hiệu lực của user vào các bucket
// overdue / today / tomorrow / this_week / later
func (s *EligibilityService) Dashboard(ctx context.Context, userID uint) (map[string][]models.NotificationInstance, error) {
	instances, err := s.ActiveInstances(ctx, userID)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeInvalidTimezone,
			Message: "timezone không hợp lệ",
			Err:     err,
		}
	}

	return bucketInstances(instances, time.Now(), loc), nil
}

// bucketInstances chia một danh sách lần nhắc (đã sắp theo next_due) vào
// các bucket dashboard
func bucketInstances(instances []models.NotificationInstance, now time.Time, loc *time.Location) map[string][]models.NotificationInstance {
	buckets := map[string][]models.NotificationInstance{
		BucketOverdue:  {},
		BucketToday:    {},
		BucketTomorrow: {},
		BucketThisWeek: {},
		BucketLater:    {},
	}
	for _, instance := range instances {
		b := bucketFor(instance.NextDue, now, loc)
		buckets[b] = append(buckets[b], instance)
	}
	return buckets
}

// Upcoming trả về các lần nhắc đang hiệu lực đến hạn trong vòng days ngày tới
func (s *EligibilityService) Upcoming(ctx context.Context, userID uint, days int) ([]models.NotificationInstance, error) {
	instances, err := s.ActiveInstances(ctx, userID)
	if err != nil {
		return nil, err
	}

	limit := time.Now().AddDate(0, 0, days)
	upcoming := make([]models.NotificationInstance, 0, len(instances))
	for _, instance := range instances {
		if !instance.NextDue.After(limit) {
			upcoming = append(upcoming, instance)
		}
	}
	return upcoming, nil
}

// GardenNotifications nhóm thông báo theo vườn cho một user. Truyền
// gardenID để chỉ lấy một vườn.
type GardenNotifications struct {
	GardenID      uint                  `json:"gardenId"`
	GardenName    string                `json:"gardenName"`
	Notifications []models.Notification `json:"notifications"`
}

func (s *EligibilityService) ByGarden(ctx context.Context, userID uint, gardenID *uint) ([]GardenNotifications, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if gardenID != nil {
		query = query.Where("id = ?", *gardenID)
	}

	var gardens []models.Garden
	if err := query.
		Preload("Notifications").
		Preload("Notifications.Instances", "status = ?", constants.InstanceStatusPending).
		Find(&gardens).Error; err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeQueryFailed,
			Message: fmt.Sprintf("lỗi truy vấn vườn của user %d", userID),
			Err:     err,
		}
	}

	result := make([]GardenNotifications, 0, len(gardens))
	for _, g := range gardens {
		result = append(result, GardenNotifications{
			GardenID:      g.ID,
			GardenName:    g.Name,
			Notifications: g.Notifications,
		})
	}
	return result, nil
}
