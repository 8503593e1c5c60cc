package dto

import "time"

// CreateNotificationRequest là payload tạo một thông báo chăm sóc mới
type CreateNotificationRequest struct {
	GardenID     uint   `json:"gardenId" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Type         string `json:"type" binding:"required"`
	Subtype      string `json:"subtype"`
	IntervalDays int    `json:"intervalDays" binding:"required"`
	PlantIDs     []uint `json:"plantIds" binding:"required,min=1"`

	// Bulk đánh dấu import hàng loạt: không tạo lần nhắc đầu tiên
	Bulk bool `json:"bulk"`
}

// InstanceActionRequest là payload hoàn thành hoặc bỏ qua một lần nhắc
type InstanceActionRequest struct {
	InstanceID uint `json:"instanceId" binding:"required"`
}

// BulkCompleteRequest là payload hoàn thành nhiều lần nhắc cùng lúc
type BulkCompleteRequest struct {
	InstanceIDs []uint `json:"instanceIds" binding:"required,min=1"`
}

// NotificationTask là view một lần nhắc trên dashboard
type NotificationTask struct {
	InstanceID     uint      `json:"instanceId"`
	NotificationID uint      `json:"notificationId"`
	GardenID       uint      `json:"gardenId"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	Subtype        string    `json:"subtype,omitempty"`
	NextDue        time.Time `json:"nextDue"`
	Status         string    `json:"status"`
	Message        string    `json:"message,omitempty"`
}

// DashboardResponse chia các lần nhắc đang hiệu lực theo bucket thời gian
type DashboardResponse struct {
	Overdue  []NotificationTask `json:"overdue"`
	Today    []NotificationTask `json:"today"`
	Tomorrow []NotificationTask `json:"tomorrow"`
	ThisWeek []NotificationTask `json:"this_week"`
	Later    []NotificationTask `json:"later"`
}

// BulkCompleteResponse là kết quả hoàn thành hàng loạt
type BulkCompleteResponse struct {
	Completed []uint `json:"completed"`
	Failed    []uint `json:"failed"`
}
