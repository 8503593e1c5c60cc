package models

import (
	"time"

	"garden/constants"
)

// Notification là định nghĩa một việc chăm sóc lặp lại
// (vd: "tưới nước cây này mỗi 7 ngày").
type Notification struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	GardenID uint   `json:"gardenId" gorm:"index"`
	Name     string `json:"name" gorm:"not null"`
	Type     string `json:"type" gorm:"not null"` // water/fertilize/prune/harvest/weather/other
	Subtype  string `json:"subtype"`              // chỉ dùng khi type = other

	// Chu kỳ lặp lại theo ngày. 0 nghĩa là thông báo một lần,
	// chỉ được tạo nội bộ (health alert), không qua API.
	IntervalDays int `json:"intervalDays"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Garden    *Garden                `json:"garden,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignKey:GardenID;references:ID"`
	Plants    []NotificationPlant    `json:"plants,omitempty" gorm:"foreignKey:NotificationID"`
	Instances []NotificationInstance `json:"instances,omitempty" gorm:"foreignKey:NotificationID"`
}

// NotificationPlant liên kết thông báo với một cây, kèm chu kỳ riêng nếu có
type NotificationPlant struct {
	NotificationID uint `json:"notificationId" gorm:"primaryKey"`
	PlantID        uint `json:"plantId" gorm:"primaryKey"`
	CustomInterval *int `json:"customInterval"` // ghi đè IntervalDays cho riêng cây này

	Notification *Notification `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignKey:NotificationID;references:ID"`
	Plant        *Plant        `json:"plant,omitempty" gorm:"foreignKey:PlantID;references:ID"`
}

// IsOneTime kiểm tra thông báo chỉ nhắc một lần, không lặp lại
func (n *Notification) IsOneTime() bool {
	return n.IntervalDays <= 0
}

// HasPlant kiểm tra thông báo có liên kết với cây này không
func (n *Notification) HasPlant(plantID uint) bool {
	for _, p := range n.Plants {
		if p.PlantID == plantID {
			return true
		}
	}
	return false
}

// ValidNotificationTypes liệt kê các loại thông báo hợp lệ
func ValidNotificationTypes() []string {
	return []string{
		constants.NotificationTypeWater,
		constants.NotificationTypeFertilize,
		constants.NotificationTypePrune,
		constants.NotificationTypeHarvest,
		constants.NotificationTypeWeather,
		constants.NotificationTypeOther,
	}
}
