package models

import (
	"time"

	"garden/constants"
)

type Plant struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	CommonName     string    `json:"commonName" gorm:"not null"` // Tên thường gọi của cây
	ScientificName string    `json:"scientificName"`             // Tên khoa học
	Image          string    `json:"image"`                      // Ảnh cây (URL cloudinary)
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	// Chu kỳ chăm sóc mặc định theo ngày, nil nếu cây không cần loại chăm sóc đó
	WaterInterval       *int `json:"waterInterval"`
	FertilizingInterval *int `json:"fertilizingInterval"`
	PruningInterval     *int `json:"pruningInterval"`

	// Số ngày từ lúc trồng đến lúc thu hoạch được, nil nếu cây không thu hoạch
	DaysToHarvest *float64 `json:"daysToHarvest"`
}

// CareInterval trả về chu kỳ chăm sóc mặc định của cây theo loại thông báo.
// Trả về 0 nếu cây không có chu kỳ cho loại đó.
func (p *Plant) CareInterval(notificationType string) int {
	var interval *int
	switch notificationType {
	case constants.NotificationTypeWater:
		interval = p.WaterInterval
	case constants.NotificationTypeFertilize:
		interval = p.FertilizingInterval
	case constants.NotificationTypePrune:
		interval = p.PruningInterval
	}
	if interval == nil {
		return 0
	}
	return *interval
}
