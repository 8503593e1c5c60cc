package services

import (
	"testing"
	"time"

	"garden/constants"
	"garden/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLocation(t *testing.T) *time.Location {
	loc, err := time.LoadLocation(DefaultTimezone)
	require.NoError(t, err)
	return loc
}

func TestBucketFor(t *testing.T) {
	loc := testLocation(t)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, loc)

	tests := []struct {
		name    string
		nextDue time.Time
		want    string
	}{
		{"quá hạn", now.Add(-time.Hour), BucketOverdue},
		{"trong hôm nay", now.Add(2 * time.Hour), BucketToday},
		{"ngày mai", now.AddDate(0, 0, 1), BucketTomorrow},
		{"trong tuần", now.AddDate(0, 0, 5), BucketThisWeek},
		{"đúng 7 ngày", now.AddDate(0, 0, 7), BucketThisWeek},
		{"sau một tuần", now.AddDate(0, 0, 8), BucketLater},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bucketFor(tt.nextDue, now, loc))
		})
	}
}

func TestBucketInstances(t *testing.T) {
	loc := testLocation(t)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, loc)

	instances := []models.NotificationInstance{
		{ID: 1, NextDue: now.Add(-time.Hour)},
		{ID: 2, NextDue: now.AddDate(0, 0, 1)},
		{ID: 3, NextDue: now.AddDate(0, 0, 30)},
	}

	buckets := bucketInstances(instances, now, loc)
	assert.Len(t, buckets[BucketOverdue], 1)
	assert.Len(t, buckets[BucketTomorrow], 1)
	assert.Len(t, buckets[BucketLater], 1)
	assert.Empty(t, buckets[BucketToday])
	assert.Empty(t, buckets[BucketThisWeek])
	assert.Equal(t, uint(1), buckets[BucketOverdue][0].ID)
}

func harvestFixture(daysToHarvest float64, plantedDaysAgo int, now time.Time) (*models.Notification, []models.GardenLog) {
	n := &models.Notification{
		ID:       1,
		GardenID: 1,
		Type:     constants.NotificationTypeHarvest,
		Plants:   []models.NotificationPlant{{NotificationID: 1, PlantID: 2}},
	}
	logs := []models.GardenLog{
		{
			GardenID:    1,
			PlantID:     2,
			PlantedDate: now.AddDate(0, 0, -plantedDaysAgo),
			Plant:       &models.Plant{ID: 2, DaysToHarvest: &daysToHarvest},
		},
	}
	return n, logs
}

func TestHarvestGate(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("chưa đủ ngày thu hoạch thì bị loại", func(t *testing.T) {
		n, logs := harvestFixture(60, 30, now)
		assert.False(t, harvestReady(n, logs, now))
	})

	t.Run("đủ ngày thu hoạch thì được tính", func(t *testing.T) {
		n, logs := harvestFixture(60, 61, now)
		assert.True(t, harvestReady(n, logs, now))
	})

	t.Run("cây không có daysToHarvest thì không mở cổng", func(t *testing.T) {
		n, logs := harvestFixture(60, 90, now)
		logs[0].Plant.DaysToHarvest = nil
		assert.False(t, harvestReady(n, logs, now))
	})

	t.Run("log của vườn khác không được tính", func(t *testing.T) {
		n, logs := harvestFixture(60, 90, now)
		logs[0].GardenID = 99
		assert.False(t, harvestReady(n, logs, now))
	})

	t.Run("loại khác harvest luôn thỏa", func(t *testing.T) {
		n, logs := harvestFixture(60, 0, now)
		n.Type = constants.NotificationTypeWater
		assert.True(t, harvestReady(n, logs, now))
	})
}

func TestFilterActive(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	harvestNotification, logs := harvestFixture(60, 30, now)
	waterNotification := &models.Notification{ID: 2, GardenID: 1, Type: constants.NotificationTypeWater}

	instances := []models.NotificationInstance{
		{ID: 1, NotificationID: 1, Notification: harvestNotification},
		{ID: 2, NotificationID: 2, Notification: waterNotification},
	}

	active := filterActive(instances, logs, now)
	require.Len(t, active, 1)
	assert.Equal(t, uint(2), active[0].ID)

	// Qua ngưỡng thu hoạch thì lần nhắc harvest được tính đúng một lần
	later := now.AddDate(0, 0, 31)
	active = filterActive(instances, logs, later)
	assert.Len(t, active, 2)
}
