package models

import "time"

// GardenLog ghi lại một cây đang được trồng trong một khu vườn
type GardenLog struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	GardenID       uint       `json:"gardenId" gorm:"index"`
	PlantID        uint       `json:"plantId" gorm:"index"`
	PlantedDate    time.Time  `json:"plantedDate"`
	LastWatered    *time.Time `json:"lastWatered"`
	LastFertilized *time.Time `json:"lastFertilized"`
	LastPruned     *time.Time `json:"lastPruned"`
	HealthStatus   string     `json:"healthStatus"` // excellent/good/fair/poor/dying
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`

	Garden *Garden `json:"garden,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignKey:GardenID;references:ID"`
	Plant  *Plant  `json:"plant,omitempty" gorm:"foreignKey:PlantID;references:ID"`
}

// HarvestReadyAt trả về thời điểm cây trong log này có thể thu hoạch,
// nil nếu cây không có daysToHarvest.
func (l *GardenLog) HarvestReadyAt() *time.Time {
	if l.Plant == nil || l.Plant.DaysToHarvest == nil {
		return nil
	}
	ready := l.PlantedDate.Add(time.Duration(*l.Plant.DaysToHarvest * 24 * float64(time.Hour)))
	return &ready
}
