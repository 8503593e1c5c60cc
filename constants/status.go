package constants

// Loại thông báo chăm sóc
const (
	NotificationTypeWater     = "water"
	NotificationTypeFertilize = "fertilize"
	NotificationTypePrune     = "prune"
	NotificationTypeHarvest   = "harvest"
	NotificationTypeWeather   = "weather"
	NotificationTypeOther     = "other"
)

// Subtype cho thông báo loại other
const (
	SubtypeHealthAlert     = "health_alert"
	SubtypeHealthRecovered = "health_recovered"
)

// Trạng thái của một lần nhắc việc
const (
	InstanceStatusPending   = "pending"
	InstanceStatusCompleted = "completed"
	InstanceStatusSkipped   = "skipped"
	InstanceStatusMissed    = "missed"
)

// Tình trạng sức khỏe cây trồng
const (
	HealthStatusExcellent = "excellent"
	HealthStatusGood      = "good"
	HealthStatusFair      = "fair"
	HealthStatusPoor      = "poor"
	HealthStatusDying     = "dying"
)

// Số ngày quá hạn trước khi một nhắc việc pending bị đánh dấu missed
const StaleThresholdDays = 14

// User role
const (
	RoleAdmin = 1
	RoleUser  = 3
)
