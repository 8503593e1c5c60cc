package services

import (
	"context"
	"fmt"
	"time"

	"garden/constants"
	"garden/models"
	"garden/services/logger"

	"gorm.io/gorm"
)

const (
	ErrCodeScheduleFailed   = "SCHEDULE_FAILED"
	ErrCodeReconcileFailed  = "RECONCILE_FAILED"
	ErrCodePendingExists    = "PENDING_INSTANCE_EXISTS"
	ErrCodeInstanceNotFound = "INSTANCE_NOT_FOUND"
)

type ServiceError struct {
	Code    string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// ReconcileSummary là kết quả của một lần quét nhắc việc quá hạn.
// Affected liệt kê các thông báo có lần nhắc vừa bị đánh dấu missed,
// để caller xóa cache của chúng.
type ReconcileSummary struct {
	Processed     int                    `json:"processed"`
	ThresholdDays int                    `json:"thresholdDays"`
	Affected      []*models.Notification `json:"-"`
}

// ScheduleService chịu trách nhiệm tạo lần nhắc đầu tiên, tạo lần nhắc
// kế tiếp sau khi hoàn thành/bỏ qua, và quét các lần nhắc quá hạn.
type ScheduleService struct {
	db     *gorm.DB
	logger logger.Logger
}

type ScheduleServiceOptions struct {
	DB     *gorm.DB
	Logger logger.Logger
}

func NewScheduleService(opts ScheduleServiceOptions) *ScheduleService {
	return &ScheduleService{
		db:     opts.DB,
		logger: opts.Logger,
	}
}

// hasPendingInstance kiểm tra thông báo đã có lần nhắc pending chưa.
// Mỗi thông báo chỉ được phép có tối đa một lần nhắc pending.
func (s *ScheduleService) hasPendingInstance(ctx context.Context, tx *gorm.DB, notificationID uint) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&models.NotificationInstance{}).
		Where("notification_id = ? AND status = ?", notificationID, constants.InstanceStatusPending).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateFirstInstance tạo lần nhắc pending đầu tiên cho một thông báo mới,
// đến hạn sau IntervalDays ngày kể từ now. Được gọi đúng một lần, đồng bộ,
// ngay khi thông báo được tạo.
func (s *ScheduleService) CreateFirstInstance(ctx context.Context, n *models.Notification, now time.Time) (*models.NotificationInstance, error) {
	exists, err := s.hasPendingInstance(ctx, s.db, n.ID)
	if err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeScheduleFailed,
			Message: fmt.Sprintf("lỗi kiểm tra lần nhắc pending của thông báo %d", n.ID),
			Err:     err,
		}
	}
	if exists {
		return nil, &ServiceError{
			Code:    ErrCodePendingExists,
			Message: fmt.Sprintf("thông báo %d đã có lần nhắc pending", n.ID),
		}
	}

	instance := &models.NotificationInstance{
		NotificationID: n.ID,
		NextDue:        now.AddDate(0, 0, n.IntervalDays),
		Status:         constants.InstanceStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(instance).Error; err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeScheduleFailed,
			Message: fmt.Sprintf("lỗi tạo lần nhắc đầu tiên cho thông báo %d", n.ID),
			Err:     err,
		}
	}

	s.logger.Info("Đã tạo lần nhắc đầu tiên %d cho thông báo %d, đến hạn %s",
		instance.ID, n.ID, instance.NextDue.Format(time.RFC3339))
	return instance, nil
}

// ScheduleNext tạo lần nhắc pending kế tiếp sau khi một lần nhắc chuyển
// sang completed/skipped/missed. Ngày đến hạn lấy từ NextDue mà state
// machine vừa tính trên lần nhắc cũ. Thông báo một lần (IntervalDays <= 0)
// không tạo lần nhắc mới; đây là luồng bình thường, không phải lỗi.
func (s *ScheduleService) ScheduleNext(ctx context.Context, instance *models.NotificationInstance) (*models.NotificationInstance, error) {
	n := instance.Notification
	if n == nil {
		n = &models.Notification{}
		if err := s.db.WithContext(ctx).First(n, instance.NotificationID).Error; err != nil {
			return nil, &ServiceError{
				Code:    ErrCodeScheduleFailed,
				Message: fmt.Sprintf("lỗi tải thông báo %d", instance.NotificationID),
				Err:     err,
			}
		}
	}

	if n.IsOneTime() {
		s.logger.Debug("Thông báo %d là thông báo một lần, không tạo lần nhắc mới", n.ID)
		return nil, nil
	}

	exists, err := s.hasPendingInstance(ctx, s.db, n.ID)
	if err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeScheduleFailed,
			Message: fmt.Sprintf("lỗi kiểm tra lần nhắc pending của thông báo %d", n.ID),
			Err:     err,
		}
	}
	if exists {
		return nil, &ServiceError{
			Code:    ErrCodePendingExists,
			Message: fmt.Sprintf("thông báo %d đã có lần nhắc pending", n.ID),
		}
	}

	next := &models.NotificationInstance{
		NotificationID: n.ID,
		NextDue:        instance.NextDue,
		Status:         constants.InstanceStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(next).Error; err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeScheduleFailed,
			Message: fmt.Sprintf("lỗi tạo lần nhắc kế tiếp cho thông báo %d", n.ID),
			Err:     err,
		}
	}

	s.logger.Info("Đã tạo lần nhắc kế tiếp %d cho thông báo %d, đến hạn %s",
		next.ID, n.ID, next.NextDue.Format(time.RFC3339))
	return next, nil
}

// ReconcileStale quét các lần nhắc pending đã quá hạn hơn thresholdDays
// ngày, đánh dấu missed và tạo lần nhắc kế tiếp. Lỗi xử lý một lần nhắc
// chỉ được log rồi bỏ qua, các lần nhắc còn lại vẫn được xử lý tiếp.
func (s *ScheduleService) ReconcileStale(ctx context.Context, thresholdDays int) (ReconcileSummary, error) {
	if thresholdDays <= 0 {
		thresholdDays = constants.StaleThresholdDays
	}
	now := time.Now()
	cutoff := now.AddDate(0, 0, -thresholdDays)

	var stale []models.NotificationInstance
	err := s.db.WithContext(ctx).
		Preload("Notification").
		Where("status = ? AND next_due < ?", constants.InstanceStatusPending, cutoff).
		Find(&stale).Error
	if err != nil {
		return ReconcileSummary{ThresholdDays: thresholdDays}, &ServiceError{
			Code:    ErrCodeReconcileFailed,
			Message: "lỗi truy vấn các lần nhắc quá hạn",
			Err:     err,
		}
	}

	processed := 0
	affected := make(map[uint]*models.Notification)
	for i := range stale {
		if err := s.reconcileOne(ctx, &stale[i], now); err != nil {
			s.logger.Error("Lỗi xử lý lần nhắc quá hạn %d (thông báo %d): %v",
				stale[i].ID, stale[i].NotificationID, err)
			continue
		}
		processed++
		if n := stale[i].Notification; n != nil {
			affected[n.ID] = n
		}
	}

	summary := ReconcileSummary{Processed: processed, ThresholdDays: thresholdDays}
	for _, n := range affected {
		summary.Affected = append(summary.Affected, n)
	}

	s.logger.Info("Đã xử lý %d lần nhắc quá hạn (ngưỡng %d ngày)", processed, thresholdDays)
	return summary, nil
}

// reconcileOne đánh dấu một lần nhắc là missed và tạo lần nhắc kế tiếp
// trong cùng một transaction, để không bao giờ đọc được một lần nhắc
// missed mà chưa có lần nhắc kế tiếp.
func (s *ScheduleService) reconcileOne(ctx context.Context, instance *models.NotificationInstance, now time.Time) error {
	intervalDays := 0
	if instance.Notification != nil {
		intervalDays = instance.Notification.IntervalDays
	}

	if err := instance.MarkMissed(now, intervalDays); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Chặn lost-update với một request hoàn thành đồng thời: chỉ ghi đè
		// khi bản ghi trong DB vẫn còn pending.
		res := tx.Model(&models.NotificationInstance{}).
			Where("id = ? AND status = ?", instance.ID, constants.InstanceStatusPending).
			Updates(map[string]interface{}{
				"status":   instance.Status,
				"next_due": instance.NextDue,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &ServiceError{
				Code:    ErrCodeInstanceNotFound,
				Message: fmt.Sprintf("lần nhắc %d không còn ở trạng thái pending", instance.ID),
			}
		}

		if instance.Notification != nil && instance.Notification.IsOneTime() {
			return nil
		}

		next := &models.NotificationInstance{
			NotificationID: instance.NotificationID,
			NextDue:        instance.NextDue,
			Status:         constants.InstanceStatusPending,
		}
		return tx.Create(next).Error
	})
}

// ScheduleServiceAdapter cho phép package jobs gọi ReconcileStale mà không
// phụ thuộc trực tiếp vào ScheduleService. Sau khi quét xong, adapter báo
// cho dispatcher từng thông báo bị ảnh hưởng để xóa cache của chúng.
type ScheduleServiceAdapter struct {
	service *ScheduleService
	events  *EventService
}

func NewScheduleServiceAdapter(service *ScheduleService, events *EventService) *ScheduleServiceAdapter {
	return &ScheduleServiceAdapter{service: service, events: events}
}

func (a *ScheduleServiceAdapter) ReconcileStale(ctx context.Context, thresholdDays int) (int, error) {
	summary, err := a.service.ReconcileStale(ctx, thresholdDays)
	if a.events != nil {
		for _, n := range summary.Affected {
			a.events.OnNotificationMutated(ctx, n)
		}
	}
	return summary.Processed, err
}
