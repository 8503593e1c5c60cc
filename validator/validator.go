package validator

import (
	"time"

	"garden/constants"
	"garden/errors"
	"garden/models"

	"github.com/gin-gonic/gin/binding"
	playground "github.com/go-playground/validator/v10"
)

// RegisterCustomValidations đăng ký các rule validate tùy chỉnh cho binding
// của gin. Gọi một lần lúc khởi động app.
func RegisterCustomValidations() {
	v, ok := binding.Validator.Engine().(*playground.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("care_type", func(fl playground.FieldLevel) bool {
		return ValidateCareType(fl.Field().String()) == nil
	})
	v.RegisterValidation("health_status", func(fl playground.FieldLevel) bool {
		return IsValidHealthStatus(fl.Field().String())
	})
}

// ValidateNotification validate định nghĩa thông báo chăm sóc do người dùng tạo
func ValidateNotification(n *models.Notification) error {
	if n.Name == "" {
		return errors.NewAppError(errors.ErrCodeRequiredField, "Tên thông báo không được để trống", nil)
	}

	if !isValidNotificationType(n.Type) {
		return errors.NewAppError(errors.ErrCodeInvalidType, "Loại thông báo không hợp lệ: "+n.Type, nil)
	}

	// Subtype chỉ dùng và bắt buộc khi type = other
	if n.Type == constants.NotificationTypeOther && n.Subtype == "" {
		return errors.NewAppError(errors.ErrCodeInvalidSubtype, "Thông báo loại other phải có subtype", nil)
	}
	if n.Type != constants.NotificationTypeOther && n.Subtype != "" {
		return errors.NewAppError(errors.ErrCodeInvalidSubtype, "Chỉ thông báo loại other mới có subtype", nil)
	}

	if n.IntervalDays <= 0 {
		return errors.NewAppError(errors.ErrCodeInvalidInterval, "Chu kỳ lặp lại phải lớn hơn 0 ngày", nil)
	}

	if n.GardenID == 0 {
		return errors.NewAppError(errors.ErrCodeRequiredField, "ID khu vườn không được để trống", nil)
	}

	return nil
}

// ValidateGarden validate thông tin khu vườn
func ValidateGarden(garden *models.Garden) error {
	if garden.Name == "" {
		return errors.NewAppError(errors.ErrCodeRequiredField, "Tên khu vườn không được để trống", nil)
	}
	return nil
}

// ValidateGardenLog validate một bản ghi trồng cây
func ValidateGardenLog(log *models.GardenLog) error {
	if log.GardenID == 0 {
		return errors.NewAppError(errors.ErrCodeRequiredField, "ID khu vườn không được để trống", nil)
	}
	if log.PlantID == 0 {
		return errors.NewAppError(errors.ErrCodeRequiredField, "ID cây không được để trống", nil)
	}
	if log.PlantedDate.IsZero() || log.PlantedDate.After(time.Now()) {
		return errors.NewAppError(errors.ErrCodeInvalidFormat, "Ngày trồng không hợp lệ", nil)
	}
	if log.HealthStatus != "" && !IsValidHealthStatus(log.HealthStatus) {
		return errors.NewAppError(errors.ErrCodeInvalidHealth, "Tình trạng sức khỏe không hợp lệ: "+log.HealthStatus, nil)
	}
	return nil
}

// ValidateCareType kiểm tra loại hành động chăm sóc ghi nhận được
func ValidateCareType(careType string) error {
	switch careType {
	case constants.NotificationTypeWater, constants.NotificationTypeFertilize, constants.NotificationTypePrune:
		return nil
	}
	return errors.NewAppError(errors.ErrCodeInvalidCare, "Loại chăm sóc không hợp lệ: "+careType, nil)
}

// IsValidHealthStatus kiểm tra tình trạng sức khỏe hợp lệ
func IsValidHealthStatus(status string) bool {
	switch status {
	case constants.HealthStatusExcellent, constants.HealthStatusGood, constants.HealthStatusFair,
		constants.HealthStatusPoor, constants.HealthStatusDying:
		return true
	}
	return false
}

func isValidNotificationType(notificationType string) bool {
	for _, t := range models.ValidNotificationTypes() {
		if t == notificationType {
			return true
		}
	}
	return false
}
