package dto

// CreateGardenRequest là payload tạo khu vườn mới
type CreateGardenRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// AddPlantRequest là payload thêm một cây vào vườn
type AddPlantRequest struct {
	PlantID     uint   `json:"plantId" binding:"required"`
	PlantedDate string `json:"plantedDate" binding:"required"` // dạng 2006-01-02
}

// LogCareRequest là payload ghi nhận một hành động chăm sóc
type LogCareRequest struct {
	PlantID  uint   `json:"plantId" binding:"required"`
	CareType string `json:"careType" binding:"required,care_type"` // water/fertilize/prune
}

// UpdateHealthRequest là payload cập nhật tình trạng sức khỏe của cây
type UpdateHealthRequest struct {
	PlantID      uint   `json:"plantId" binding:"required"`
	HealthStatus string `json:"healthStatus" binding:"required,health_status"`
}
