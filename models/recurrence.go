package models

import "time"

// Các hàm tính thời điểm đến hạn tiếp theo cho một thông báo lặp lại.
//
// Hoàn thành và missed neo theo thời điểm hiện tại, còn skip neo theo
// ngày đến hạn cũ: bỏ qua một lần không được làm lịch trôi muộn hơn
// chu kỳ đã đặt.

// NextDueAfterCompletion tính ngày đến hạn tiếp theo sau khi hoàn thành
func NextDueAfterCompletion(completedAt time.Time, intervalDays int) time.Time {
	return completedAt.AddDate(0, 0, intervalDays)
}

// NextDueAfterSkip tính ngày đến hạn tiếp theo sau khi bỏ qua
func NextDueAfterSkip(previousDue time.Time, intervalDays int) time.Time {
	return previousDue.AddDate(0, 0, intervalDays)
}

// NextDueAfterMiss tính ngày đến hạn tiếp theo khi một nhắc việc bị bỏ lỡ
func NextDueAfterMiss(now time.Time, intervalDays int) time.Time {
	return now.AddDate(0, 0, intervalDays)
}
