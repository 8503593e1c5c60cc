package services

import (
	"context"
	"testing"
	"time"

	"garden/constants"
	"garden/models"
	"garden/services/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testEventService(db *gorm.DB) *EventService {
	return NewEventService(EventServiceOptions{
		DB:        db,
		Logger:    logger.NewDefaultLogger(logger.ErrorLevel),
		Scheduler: testScheduler(db),
	})
}

func createTestGarden(t *testing.T, db *gorm.DB) *models.Garden {
	t.Helper()
	user := &models.User{Name: "Test", Email: "events+" + time.Now().Format("150405.000000000") + "@test.local"}
	require.NoError(t, db.Create(user).Error)
	garden := &models.Garden{UserID: user.ID, Name: "Vườn test"}
	require.NoError(t, db.Create(garden).Error)
	return garden
}

func createTestPlant(t *testing.T, db *gorm.DB, name string) *models.Plant {
	t.Helper()
	plant := &models.Plant{CommonName: name}
	require.NoError(t, db.Create(plant).Error)
	return plant
}

// createLinkedNotification tạo thông báo trong một vườn, liên kết với các
// cây đã cho, kèm lần nhắc pending đầu tiên
func createLinkedNotification(t *testing.T, db *gorm.DB, gardenID uint, intervalDays int, plantIDs ...uint) *models.Notification {
	t.Helper()
	n := &models.Notification{
		GardenID:     gardenID,
		Name:         "Tưới nước cho cây ớt",
		Type:         constants.NotificationTypeWater,
		IntervalDays: intervalDays,
	}
	require.NoError(t, db.Create(n).Error)
	for _, plantID := range plantIDs {
		require.NoError(t, db.Create(&models.NotificationPlant{
			NotificationID: n.ID,
			PlantID:        plantID,
		}).Error)
	}

	_, err := testScheduler(db).CreateFirstInstance(context.Background(), n, time.Now())
	require.NoError(t, err)
	return n
}

func notificationExists(t *testing.T, db *gorm.DB, notificationID uint) bool {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("id = ?", notificationID).
		Count(&count).Error)
	return count > 0
}

func instanceCount(t *testing.T, db *gorm.DB, notificationID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.NotificationInstance{}).
		Where("notification_id = ?", notificationID).
		Count(&count).Error)
	return count
}

func TestPlantRemovalCleansUpOrphanedNotifications(t *testing.T) {
	db := testDB(t)
	events := testEventService(db)
	ctx := context.Background()

	garden := createTestGarden(t, db)
	plantA := createTestPlant(t, db, "ớt")
	plantB := createTestPlant(t, db, "cà chua")

	// orphaned chỉ liên kết với cây A; shared liên kết với cả hai cây
	orphaned := createLinkedNotification(t, db, garden.ID, 7, plantA.ID)
	shared := createLinkedNotification(t, db, garden.ID, 7, plantA.ID, plantB.ID)

	events.OnPlantRemovedFromGarden(ctx, garden.ID, plantA.ID)

	// Thông báo mất cây cuối cùng bị xóa cùng toàn bộ lần nhắc
	assert.False(t, notificationExists(t, db, orphaned.ID))
	assert.Zero(t, instanceCount(t, db, orphaned.ID))

	// Thông báo còn cây khác giữ nguyên, chỉ mất liên kết với cây A
	assert.True(t, notificationExists(t, db, shared.ID))
	assert.EqualValues(t, 1, instanceCount(t, db, shared.ID))
	var links []models.NotificationPlant
	require.NoError(t, db.Where("notification_id = ?", shared.ID).Find(&links).Error)
	require.Len(t, links, 1)
	assert.Equal(t, plantB.ID, links[0].PlantID)
}

func TestPlantRemovalSkipsWhenLogsRemain(t *testing.T) {
	db := testDB(t)
	events := testEventService(db)
	ctx := context.Background()

	garden := createTestGarden(t, db)
	plant := createTestPlant(t, db, "ớt")
	n := createLinkedNotification(t, db, garden.ID, 7, plant.ID)

	// Cây vẫn còn một log khác trong vườn: chưa được dọn
	require.NoError(t, db.Create(&models.GardenLog{
		GardenID:     garden.ID,
		PlantID:      plant.ID,
		PlantedDate:  time.Now().AddDate(0, 0, -30),
		HealthStatus: constants.HealthStatusGood,
	}).Error)

	events.OnPlantRemovedFromGarden(ctx, garden.ID, plant.ID)

	assert.True(t, notificationExists(t, db, n.ID))
}

func TestCareLoggedForceCompletesMatchingInstances(t *testing.T) {
	db := testDB(t)
	events := testEventService(db)
	ctx := context.Background()

	garden := createTestGarden(t, db)
	plant := createTestPlant(t, db, "ớt")
	n := createLinkedNotification(t, db, garden.ID, 7, plant.ID)

	log := &models.GardenLog{
		GardenID:     garden.ID,
		PlantID:      plant.ID,
		PlantedDate:  time.Now().AddDate(0, 0, -30),
		HealthStatus: constants.HealthStatusGood,
	}
	require.NoError(t, db.Create(log).Error)

	now := time.Now()
	events.OnCareLogged(ctx, log, constants.NotificationTypeWater)

	// Lần nhắc pending được hoàn thành qua đúng transition Complete
	var completed []models.NotificationInstance
	require.NoError(t, db.
		Where("notification_id = ? AND status = ?", n.ID, constants.InstanceStatusCompleted).
		Find(&completed).Error)
	require.Len(t, completed, 1)
	require.NotNil(t, completed[0].CompletedAt)
	assert.WithinDuration(t, now, *completed[0].CompletedAt, time.Minute)

	// Nên vẫn có lần nhắc kế tiếp, neo theo thời điểm hoàn thành
	siblings := pendingInstances(t, db, n.ID)
	require.Len(t, siblings, 1)
	assert.WithinDuration(t, now.AddDate(0, 0, 7), siblings[0].NextDue, time.Minute)
}

func healthNotificationCount(t *testing.T, db *gorm.DB, gardenID, plantID uint, subtype string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Joins("JOIN notification_plants ON notification_plants.notification_id = notifications.id").
		Where("notifications.garden_id = ? AND notifications.type = ? AND notifications.subtype = ?",
			gardenID, constants.NotificationTypeOther, subtype).
		Where("notification_plants.plant_id = ?", plantID).
		Count(&count).Error)
	return count
}

func TestHealthAlertIsIdempotent(t *testing.T) {
	db := testDB(t)
	events := testEventService(db)
	ctx := context.Background()

	garden := createTestGarden(t, db)
	plant := createTestPlant(t, db, "ớt")

	events.OnPlantHealthChanged(ctx, constants.HealthStatusGood, constants.HealthStatusPoor, garden.ID, plant.ID)
	require.EqualValues(t, 1, healthNotificationCount(t, db, garden.ID, plant.ID, constants.SubtypeHealthAlert))

	// Suy giảm tiếp trong khi cảnh báo cũ còn mở: không tạo cảnh báo mới
	events.OnPlantHealthChanged(ctx, constants.HealthStatusPoor, constants.HealthStatusDying, garden.ID, plant.ID)
	assert.EqualValues(t, 1, healthNotificationCount(t, db, garden.ID, plant.ID, constants.SubtypeHealthAlert))
}

func TestHealthRecoveryCreatesOneTimeNotification(t *testing.T) {
	db := testDB(t)
	events := testEventService(db)
	ctx := context.Background()

	garden := createTestGarden(t, db)
	plant := createTestPlant(t, db, "ớt")

	// Cải thiện nhỏ không đáng thông báo
	events.OnPlantHealthChanged(ctx, constants.HealthStatusGood, constants.HealthStatusExcellent, garden.ID, plant.ID)
	assert.Zero(t, healthNotificationCount(t, db, garden.ID, plant.ID, constants.SubtypeHealthRecovered))

	// Hồi phục rõ rệt tạo đúng một thông báo một lần
	events.OnPlantHealthChanged(ctx, constants.HealthStatusDying, constants.HealthStatusGood, garden.ID, plant.ID)
	require.EqualValues(t, 1, healthNotificationCount(t, db, garden.ID, plant.ID, constants.SubtypeHealthRecovered))

	var n models.Notification
	require.NoError(t, db.
		Where("garden_id = ? AND subtype = ?", garden.ID, constants.SubtypeHealthRecovered).
		First(&n).Error)
	assert.True(t, n.IsOneTime())
	assert.EqualValues(t, 1, instanceCount(t, db, n.ID))
}