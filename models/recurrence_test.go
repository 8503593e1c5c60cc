package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextDueAfterCompletion(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	// Hoàn thành muộn 1 ngày: chu kỳ tính lại từ thời điểm hoàn thành
	completedAt := t0.AddDate(0, 0, 8)
	next := NextDueAfterCompletion(completedAt, 7)
	assert.Equal(t, t0.AddDate(0, 0, 15), next)
}

func TestNextDueAfterSkip(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	// Bỏ qua neo theo ngày đến hạn cũ, không phải thời điểm bỏ qua
	previousDue := t0.AddDate(0, 0, 7)
	next := NextDueAfterSkip(previousDue, 7)
	assert.Equal(t, t0.AddDate(0, 0, 14), next)
}

func TestNextDueAfterMiss(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	// Bỏ lỡ neo theo thời điểm quét
	now := t0.AddDate(0, 0, 25)
	next := NextDueAfterMiss(now, 7)
	assert.Equal(t, t0.AddDate(0, 0, 32), next)
}
