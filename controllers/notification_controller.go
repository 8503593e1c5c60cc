package controllers

import (
	"strconv"
	"time"

	"garden/dto"
	"garden/models"
	"garden/response"
	"garden/services"
	"garden/services/logger"
	"garden/utils"
	"garden/validator"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type NotificationController struct {
	db          *gorm.DB
	rdb         *redis.Client
	eligibility *services.EligibilityService
	events      *services.EventService
	logger      logger.Logger
}

type NotificationControllerOptions struct {
	DB          *gorm.DB
	Redis       *redis.Client
	Eligibility *services.EligibilityService
	Events      *services.EventService
	Logger      logger.Logger
}

func NewNotificationController(opts NotificationControllerOptions) *NotificationController {
	return &NotificationController{
		db:          opts.DB,
		rdb:         opts.Redis,
		eligibility: opts.Eligibility,
		events:      opts.Events,
		logger:      opts.Logger,
	}
}

// userIDFromContext lấy userID do AuthMiddleware gắn vào context
func userIDFromContext(c *gin.Context) (uint, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	userID, ok := v.(uint)
	return userID, ok
}

func taskFromInstance(instance models.NotificationInstance) dto.NotificationTask {
	task := dto.NotificationTask{
		InstanceID:     instance.ID,
		NotificationID: instance.NotificationID,
		NextDue:        instance.NextDue,
		Status:         instance.Status,
		Message:        instance.Message,
	}
	if instance.Notification != nil {
		task.GardenID = instance.Notification.GardenID
		task.Name = instance.Notification.Name
		task.Type = instance.Notification.Type
		task.Subtype = instance.Notification.Subtype
	}
	return task
}

func tasksFromInstances(instances []models.NotificationInstance) []dto.NotificationTask {
	tasks := make([]dto.NotificationTask, 0, len(instances))
	for _, instance := range instances {
		tasks = append(tasks, taskFromInstance(instance))
	}
	return tasks
}

// CreateNotification tạo một thông báo chăm sóc mới kèm lần nhắc đầu tiên
func (ctrl *NotificationController) CreateNotification(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}

	n := &models.Notification{
		GardenID:     req.GardenID,
		Name:         req.Name,
		Type:         req.Type,
		Subtype:      req.Subtype,
		IntervalDays: req.IntervalDays,
	}
	if err := validator.ValidateNotification(n); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	var garden models.Garden
	if err := ctrl.db.First(&garden, req.GardenID).Error; err != nil {
		response.NotFound(c)
		return
	}
	if garden.UserID != userID {
		response.Forbidden(c)
		return
	}

	var plantCount int64
	if err := ctrl.db.Model(&models.Plant{}).Where("id IN ?", req.PlantIDs).Count(&plantCount).Error; err != nil {
		response.ServerError(c)
		return
	}
	if int(plantCount) != len(req.PlantIDs) {
		response.BadRequest(c, "Danh sách cây có ID không tồn tại")
		return
	}

	err := ctrl.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(n).Error; err != nil {
			return err
		}
		for _, plantID := range req.PlantIDs {
			if err := tx.Create(&models.NotificationPlant{
				NotificationID: n.ID,
				PlantID:        plantID,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.LogError("Lỗi tạo thông báo cho vườn %d: %v", req.GardenID, err)
		response.ServerError(c)
		return
	}

	// Hook chạy sau khi mutation đã thành công; lỗi hook không làm hỏng request
	ctrl.events.OnNotificationCreated(c.Request.Context(), n, req.Bulk)

	response.Success(c, n)
}

// GetDashboard trả về các lần nhắc đang hiệu lực chia theo bucket thời gian
func (ctrl *NotificationController) GetDashboard(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	ctx := c.Request.Context()
	cacheKey := "user:" + strconv.FormatUint(uint64(userID), 10) + ":notification_dashboard"

	var cached *dto.DashboardResponse
	if err := services.GetFromRedis(ctx, ctrl.rdb, cacheKey, &cached); err != nil {
		ctrl.logger.Warn("Lỗi đọc cache dashboard của user %d: %v", userID, err)
	}
	if cached != nil {
		response.Success(c, cached)
		return
	}

	buckets, err := ctrl.eligibility.Dashboard(ctx, userID)
	if err != nil {
		utils.LogError("Lỗi tính dashboard cho user %d: %v", userID, err)
		response.ServerError(c)
		return
	}

	result := dto.DashboardResponse{
		Overdue:  tasksFromInstances(buckets[services.BucketOverdue]),
		Today:    tasksFromInstances(buckets[services.BucketToday]),
		Tomorrow: tasksFromInstances(buckets[services.BucketTomorrow]),
		ThisWeek: tasksFromInstances(buckets[services.BucketThisWeek]),
		Later:    tasksFromInstances(buckets[services.BucketLater]),
	}

	if err := services.SetToRedis(ctx, ctrl.rdb, cacheKey, result, services.DashboardCacheTTL); err != nil {
		ctrl.logger.Warn("Lỗi ghi cache dashboard của user %d: %v", userID, err)
	}

	response.Success(c, result)
}

// GetUpcoming trả về các lần nhắc đến hạn trong vòng days ngày tới
func (ctrl *NotificationController) GetUpcoming(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	days := 7
	if daysStr := c.Query("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed <= 0 {
			response.BadRequest(c, "Số ngày không hợp lệ")
			return
		}
		days = parsed
	}

	ctx := c.Request.Context()
	cacheKey := "user:" + strconv.FormatUint(uint64(userID), 10) + ":upcoming_notifications"

	if days == 7 {
		var cached []dto.NotificationTask
		if err := services.GetFromRedis(ctx, ctrl.rdb, cacheKey, &cached); err != nil {
			ctrl.logger.Warn("Lỗi đọc cache upcoming của user %d: %v", userID, err)
		}
		if cached != nil {
			response.Success(c, cached)
			return
		}
	}

	instances, err := ctrl.eligibility.Upcoming(ctx, userID, days)
	if err != nil {
		utils.LogError("Lỗi truy vấn nhắc việc sắp tới của user %d: %v", userID, err)
		response.ServerError(c)
		return
	}

	tasks := tasksFromInstances(instances)
	if days == 7 {
		if err := services.SetToRedis(ctx, ctrl.rdb, cacheKey, tasks, services.DashboardCacheTTL); err != nil {
			ctrl.logger.Warn("Lỗi ghi cache upcoming của user %d: %v", userID, err)
		}
	}

	response.Success(c, tasks)
}

// GetByGarden nhóm thông báo theo vườn
func (ctrl *NotificationController) GetByGarden(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var gardenID *uint
	if idStr := c.Query("gardenId"); idStr != "" {
		parsed, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			response.BadRequest(c, "ID khu vườn không hợp lệ")
			return
		}
		id := uint(parsed)
		gardenID = &id
	}

	result, err := ctrl.eligibility.ByGarden(c.Request.Context(), userID, gardenID)
	if err != nil {
		utils.LogError("Lỗi truy vấn thông báo theo vườn của user %d: %v", userID, err)
		response.ServerError(c)
		return
	}

	response.Success(c, result)
}

// loadOwnedInstance tải một lần nhắc kèm thông báo và vườn, kiểm tra quyền
// sở hữu của user
func (ctrl *NotificationController) loadOwnedInstance(c *gin.Context, instanceID, userID uint) (*models.NotificationInstance, bool) {
	var instance models.NotificationInstance
	err := ctrl.db.Preload("Notification").Preload("Notification.Garden").First(&instance, instanceID).Error
	if err != nil {
		response.NotFound(c)
		return nil, false
	}
	if instance.Notification == nil || instance.Notification.Garden == nil ||
		instance.Notification.Garden.UserID != userID {
		response.Forbidden(c)
		return nil, false
	}
	return &instance, true
}

// CompleteInstance đánh dấu một lần nhắc đã hoàn thành và tạo lần nhắc kế tiếp
func (ctrl *NotificationController) CompleteInstance(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req dto.InstanceActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "ID lần nhắc là bắt buộc")
		return
	}

	instance, ok := ctrl.loadOwnedInstance(c, req.InstanceID, userID)
	if !ok {
		return
	}

	previousStatus := instance.Status
	if err := instance.Complete(time.Now(), instance.Notification.IntervalDays); err != nil {
		response.ValidationError(c, err.Error())
		return
	}
	if err := ctrl.db.Save(instance).Error; err != nil {
		utils.LogError("Lỗi lưu lần nhắc %d sau khi hoàn thành: %v", instance.ID, err)
		response.ServerError(c)
		return
	}

	ctrl.events.OnInstanceStatusChanged(c.Request.Context(), instance, previousStatus)

	response.Success(c, instance)
}

// SkipInstance bỏ qua một lần nhắc; lần nhắc kế tiếp neo theo ngày đến hạn cũ
func (ctrl *NotificationController) SkipInstance(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req dto.InstanceActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "ID lần nhắc là bắt buộc")
		return
	}

	instance, ok := ctrl.loadOwnedInstance(c, req.InstanceID, userID)
	if !ok {
		return
	}

	previousStatus := instance.Status
	if err := instance.Skip(instance.Notification.IntervalDays); err != nil {
		response.ValidationError(c, err.Error())
		return
	}
	if err := ctrl.db.Save(instance).Error; err != nil {
		utils.LogError("Lỗi lưu lần nhắc %d sau khi bỏ qua: %v", instance.ID, err)
		response.ServerError(c)
		return
	}

	ctrl.events.OnInstanceStatusChanged(c.Request.Context(), instance, previousStatus)

	response.Success(c, instance)
}

// BulkComplete hoàn thành nhiều lần nhắc cùng lúc. Lỗi của một lần nhắc
// không làm dừng các lần còn lại.
func (ctrl *NotificationController) BulkComplete(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req dto.BulkCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Danh sách ID lần nhắc là bắt buộc")
		return
	}

	now := time.Now()
	result := dto.BulkCompleteResponse{
		Completed: []uint{},
		Failed:    []uint{},
	}
	for _, instanceID := range req.InstanceIDs {
		var instance models.NotificationInstance
		err := ctrl.db.Preload("Notification").Preload("Notification.Garden").First(&instance, instanceID).Error
		if err != nil || instance.Notification == nil || instance.Notification.Garden == nil ||
			instance.Notification.Garden.UserID != userID {
			result.Failed = append(result.Failed, instanceID)
			continue
		}

		previousStatus := instance.Status
		if err := instance.Complete(now, instance.Notification.IntervalDays); err != nil {
			result.Failed = append(result.Failed, instanceID)
			continue
		}
		if err := ctrl.db.Save(&instance).Error; err != nil {
			utils.LogError("Lỗi lưu lần nhắc %d khi hoàn thành hàng loạt: %v", instanceID, err)
			result.Failed = append(result.Failed, instanceID)
			continue
		}

		ctrl.events.OnInstanceStatusChanged(c.Request.Context(), &instance, previousStatus)
		result.Completed = append(result.Completed, instanceID)
	}

	response.Success(c, result)
}

// GetGardenNotifications liệt kê thông báo của một vườn, có phân trang
func (ctrl *NotificationController) GetGardenNotifications(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	gardenID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID khu vườn không hợp lệ")
		return
	}

	var garden models.Garden
	if err := ctrl.db.First(&garden, gardenID).Error; err != nil {
		response.NotFound(c)
		return
	}
	if garden.UserID != userID {
		response.Forbidden(c)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := ctrl.db.Model(&models.Notification{}).Where("garden_id = ?", gardenID).Count(&total).Error; err != nil {
		response.ServerError(c)
		return
	}

	var notifications []models.Notification
	err = ctrl.db.Where("garden_id = ?", gardenID).
		Preload("Plants").
		Preload("Plants.Plant").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		response.ServerError(c)
		return
	}

	response.SuccessWithPagination(c, notifications, page, limit, int(total))
}

// DeleteNotification xóa một thông báo cùng toàn bộ lần nhắc của nó
func (ctrl *NotificationController) DeleteNotification(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	notificationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID thông báo không hợp lệ")
		return
	}

	var n models.Notification
	if err := ctrl.db.Preload("Garden").First(&n, notificationID).Error; err != nil {
		response.NotFound(c)
		return
	}
	if n.Garden == nil || n.Garden.UserID != userID {
		response.Forbidden(c)
		return
	}

	err = ctrl.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("notification_id = ?", n.ID).Delete(&models.NotificationInstance{}).Error; err != nil {
			return err
		}
		if err := tx.Where("notification_id = ?", n.ID).Delete(&models.NotificationPlant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&n).Error
	})
	if err != nil {
		utils.LogError("Lỗi xóa thông báo %d: %v", n.ID, err)
		response.ServerError(c)
		return
	}

	ctrl.events.OnNotificationMutated(c.Request.Context(), &n)

	response.Success(c, gin.H{"deleted": n.ID})
}
