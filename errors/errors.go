package errors

import (
	"errors"
	"fmt"
)

// ErrorCode định nghĩa mã lỗi
type ErrorCode string

const (
	// Auth errors
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
	ErrCodeMissingToken ErrorCode = "MISSING_TOKEN"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"

	// Notification errors
	ErrCodeInvalidType       ErrorCode = "INVALID_TYPE"
	ErrCodeInvalidSubtype    ErrorCode = "INVALID_SUBTYPE"
	ErrCodeInvalidInterval   ErrorCode = "INVALID_INTERVAL"
	ErrCodeNotificationGone  ErrorCode = "NOTIFICATION_NOT_FOUND"
	ErrCodeInstanceNotFound  ErrorCode = "INSTANCE_NOT_FOUND"
	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	ErrCodePendingExists     ErrorCode = "PENDING_INSTANCE_EXISTS"

	// Garden errors
	ErrCodeGardenNotFound ErrorCode = "GARDEN_NOT_FOUND"
	ErrCodePlantNotFound  ErrorCode = "PLANT_NOT_FOUND"
	ErrCodeInvalidHealth  ErrorCode = "INVALID_HEALTH_STATUS"
	ErrCodeInvalidCare    ErrorCode = "INVALID_CARE_TYPE"

	// Database errors
	ErrCodeDBError     ErrorCode = "DB_ERROR"
	ErrCodeDBNotFound  ErrorCode = "DB_NOT_FOUND"
	ErrCodeDBDuplicate ErrorCode = "DB_DUPLICATE"

	// Validation errors
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeRequiredField ErrorCode = "REQUIRED_FIELD"
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
)

// AppError định nghĩa lỗi của ứng dụng
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewAppError tạo một AppError mới
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsAppError kiểm tra xem error có phải là AppError không
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError lấy AppError từ error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

var (
	// Notification errors
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInstanceNotFound     = errors.New("notification instance not found")
	ErrInvalidTransition    = errors.New("instance is not pending")
	ErrPendingExists        = errors.New("notification already has a pending instance")

	// Garden errors
	ErrGardenNotFound = errors.New("garden not found")
	ErrPlantNotFound  = errors.New("plant not found")

	// Validation errors
	ErrInvalidInput    = errors.New("invalid input")
	ErrMissingRequired = errors.New("missing required field")
	ErrInvalidFormat   = errors.New("invalid format")
)
