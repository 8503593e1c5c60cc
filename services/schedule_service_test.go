package services

import (
	"context"
	"os"
	"testing"
	"time"

	"garden/constants"
	"garden/models"
	"garden/services/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// testDB mở kết nối đến database test. Test cần database bị bỏ qua khi
// TEST_DB_DSN chưa được thiết lập.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN chưa được thiết lập, bỏ qua test cần database")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Garden{},
		&models.Plant{},
		&models.GardenLog{},
		&models.Notification{},
		&models.NotificationPlant{},
		&models.NotificationInstance{},
	))
	return db
}

func testScheduler(db *gorm.DB) *ScheduleService {
	return NewScheduleService(ScheduleServiceOptions{
		DB:     db,
		Logger: logger.NewDefaultLogger(logger.ErrorLevel),
	})
}

func createTestNotification(t *testing.T, db *gorm.DB, intervalDays int) *models.Notification {
	t.Helper()
	user := &models.User{Name: "Test", Email: "scheduler+" + time.Now().Format("150405.000000000") + "@test.local"}
	require.NoError(t, db.Create(user).Error)
	garden := &models.Garden{UserID: user.ID, Name: "Vườn test"}
	require.NoError(t, db.Create(garden).Error)
	n := &models.Notification{
		GardenID:     garden.ID,
		Name:         "Tưới nước cho cây ớt",
		Type:         constants.NotificationTypeWater,
		IntervalDays: intervalDays,
	}
	require.NoError(t, db.Create(n).Error)
	return n
}

func pendingInstances(t *testing.T, db *gorm.DB, notificationID uint) []models.NotificationInstance {
	t.Helper()
	var instances []models.NotificationInstance
	require.NoError(t, db.
		Where("notification_id = ? AND status = ?", notificationID, constants.InstanceStatusPending).
		Find(&instances).Error)
	return instances
}

func TestCreateFirstInstance(t *testing.T) {
	db := testDB(t)
	s := testScheduler(db)
	ctx := context.Background()

	n := createTestNotification(t, db, 7)
	now := time.Now()

	instance, err := s.CreateFirstInstance(ctx, n, now)
	require.NoError(t, err)
	assert.Equal(t, constants.InstanceStatusPending, instance.Status)
	assert.WithinDuration(t, now.AddDate(0, 0, 7), instance.NextDue, time.Second)

	// Ngay sau khi tạo phải có đúng một lần nhắc pending
	assert.Len(t, pendingInstances(t, db, n.ID), 1)

	// Không được phép có lần nhắc pending thứ hai
	_, err = s.CreateFirstInstance(ctx, n, now)
	require.Error(t, err)
	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, ErrCodePendingExists, serviceErr.Code)
}

func TestScheduleNextAfterCompletion(t *testing.T) {
	db := testDB(t)
	s := testScheduler(db)
	ctx := context.Background()

	n := createTestNotification(t, db, 7)
	now := time.Now()

	instance, err := s.CreateFirstInstance(ctx, n, now)
	require.NoError(t, err)

	completedAt := now.AddDate(0, 0, 8)
	require.NoError(t, instance.Complete(completedAt, n.IntervalDays))
	require.NoError(t, db.Save(instance).Error)

	instance.Notification = n
	next, err := s.ScheduleNext(ctx, instance)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, constants.InstanceStatusPending, next.Status)
	assert.WithinDuration(t, completedAt.AddDate(0, 0, 7), next.NextDue, time.Second)
	assert.NotEqual(t, instance.ID, next.ID)

	assert.Len(t, pendingInstances(t, db, n.ID), 1)
}

func TestScheduleNextOneTimeNotification(t *testing.T) {
	db := testDB(t)
	s := testScheduler(db)
	ctx := context.Background()

	n := createTestNotification(t, db, 0)
	instance := &models.NotificationInstance{
		NotificationID: n.ID,
		NextDue:        time.Now(),
		Status:         constants.InstanceStatusPending,
	}
	require.NoError(t, db.Create(instance).Error)

	require.NoError(t, instance.Complete(time.Now(), n.IntervalDays))
	require.NoError(t, db.Save(instance).Error)

	instance.Notification = n
	next, err := s.ScheduleNext(ctx, instance)
	require.NoError(t, err)
	assert.Nil(t, next)

	// Thông báo một lần không bao giờ có lần nhắc thứ hai
	assert.Empty(t, pendingInstances(t, db, n.ID))
}

func TestReconcileStale(t *testing.T) {
	db := testDB(t)
	s := testScheduler(db)
	ctx := context.Background()

	n := createTestNotification(t, db, 7)
	overdue := &models.NotificationInstance{
		NotificationID: n.ID,
		NextDue:        time.Now().AddDate(0, 0, -20),
		Status:         constants.InstanceStatusPending,
	}
	require.NoError(t, db.Create(overdue).Error)

	summary, err := s.ReconcileStale(ctx, 14)
	require.NoError(t, err)
	assert.Equal(t, 14, summary.ThresholdDays)
	require.GreaterOrEqual(t, summary.Processed, 1)

	var reloaded models.NotificationInstance
	require.NoError(t, db.First(&reloaded, overdue.ID).Error)
	assert.Equal(t, constants.InstanceStatusMissed, reloaded.Status)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 7), reloaded.NextDue, time.Minute)

	// Lần nhắc kế tiếp đã tồn tại, đến hạn theo quy tắc miss
	siblings := pendingInstances(t, db, n.ID)
	require.Len(t, siblings, 1)
	assert.WithinDuration(t, reloaded.NextDue, siblings[0].NextDue, time.Second)

	// Thông báo bị ảnh hưởng được báo lại cho caller để xóa cache
	found := false
	for _, a := range summary.Affected {
		if a.ID == n.ID {
			found = true
		}
	}
	assert.True(t, found)

	// Chạy lại ngay thì không xử lý thêm gì: quét là idempotent
	again, err := s.ReconcileStale(ctx, 14)
	require.NoError(t, err)
	assert.Zero(t, again.Processed)
	assert.Empty(t, again.Affected)
}
