package models

import (
	"fmt"
	"time"

	"garden/constants"
	"garden/errors"
)

// NotificationInstance là một lần nhắc việc cụ thể của một Notification.
// Trạng thái pending là trạng thái đầu; completed/skipped/missed là trạng
// thái cuối, không chuyển tiếp nữa. Lần nhắc kế tiếp được tạo mới chứ
// không sửa lại bản ghi cũ.
type NotificationInstance struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	NotificationID uint       `json:"notificationId" gorm:"index"`
	NextDue        time.Time  `json:"nextDue" gorm:"index"`
	LastCompleted  *time.Time `json:"lastCompleted"`
	CompletedAt    *time.Time `json:"completedAt"`
	Status         string     `json:"status" gorm:"index;default:pending"`
	Message        string     `json:"message" gorm:"type:text"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`

	Notification *Notification `json:"notification,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignKey:NotificationID;references:ID"`
}

// IsPending kiểm tra lần nhắc còn đang chờ xử lý không
func (i *NotificationInstance) IsPending() bool {
	return i.Status == constants.InstanceStatusPending
}

// IsOverdue kiểm tra lần nhắc đã quá hạn so với thời điểm now chưa
func (i *NotificationInstance) IsOverdue(now time.Time) bool {
	return i.NextDue.Before(now)
}

func (i *NotificationInstance) requirePending(action string) error {
	if i.Status != constants.InstanceStatusPending {
		return errors.NewAppError(errors.ErrCodeInvalidTransition,
			fmt.Sprintf("không thể %s lần nhắc %d đang ở trạng thái %s", action, i.ID, i.Status), nil)
	}
	return nil
}

// Complete đánh dấu lần nhắc đã hoàn thành tại thời điểm now.
// NextDue được ghi lại theo quy tắc hoàn thành để tiện tra cứu; lần nhắc
// mới (do scheduler tạo) mới là bản mang ngày đến hạn thực sự.
func (i *NotificationInstance) Complete(now time.Time, intervalDays int) error {
	if err := i.requirePending("hoàn thành"); err != nil {
		return err
	}
	i.LastCompleted = &now
	i.CompletedAt = &now
	i.NextDue = NextDueAfterCompletion(now, intervalDays)
	i.Status = constants.InstanceStatusCompleted
	return nil
}

// Skip đánh dấu lần nhắc bị bỏ qua. Ngày đến hạn mới neo theo ngày đến
// hạn cũ chứ không phải thời điểm bỏ qua.
func (i *NotificationInstance) Skip(intervalDays int) error {
	if err := i.requirePending("bỏ qua"); err != nil {
		return err
	}
	i.NextDue = NextDueAfterSkip(i.NextDue, intervalDays)
	i.Status = constants.InstanceStatusSkipped
	return nil
}

// MarkMissed đánh dấu lần nhắc đã bị bỏ lỡ quá lâu (do sweep định kỳ)
func (i *NotificationInstance) MarkMissed(now time.Time, intervalDays int) error {
	if err := i.requirePending("đánh dấu bỏ lỡ"); err != nil {
		return err
	}
	i.NextDue = NextDueAfterMiss(now, intervalDays)
	i.Status = constants.InstanceStatusMissed
	return nil
}
