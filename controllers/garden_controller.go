package controllers

import (
	"strconv"
	"time"

	"garden/constants"
	"garden/dto"
	"garden/models"
	"garden/response"
	"garden/services"
	"garden/services/logger"
	"garden/utils"
	"garden/validator"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type GardenController struct {
	db     *gorm.DB
	events *services.EventService
	logger logger.Logger
}

type GardenControllerOptions struct {
	DB     *gorm.DB
	Events *services.EventService
	Logger logger.Logger
}

func NewGardenController(opts GardenControllerOptions) *GardenController {
	return &GardenController{
		db:     opts.DB,
		events: opts.Events,
		logger: opts.Logger,
	}
}

// loadOwnedGarden tải khu vườn và kiểm tra quyền sở hữu của user
func (ctrl *GardenController) loadOwnedGarden(c *gin.Context, gardenID, userID uint) (*models.Garden, bool) {
	var garden models.Garden
	if err := ctrl.db.First(&garden, gardenID).Error; err != nil {
		response.NotFound(c)
		return nil, false
	}
	if garden.UserID != userID {
		response.Forbidden(c)
		return nil, false
	}
	return &garden, true
}

// CreateGarden tạo một khu vườn mới cho user
func (ctrl *GardenController) CreateGarden(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req dto.CreateGardenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Tên khu vườn là bắt buộc")
		return
	}

	garden := &models.Garden{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := validator.ValidateGarden(garden); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	if err := ctrl.db.Create(garden).Error; err != nil {
		utils.LogError("Lỗi tạo khu vườn cho user %d: %v", userID, err)
		response.ServerError(c)
		return
	}

	response.Success(c, garden)
}

// GetGardens liệt kê các khu vườn của user
func (ctrl *GardenController) GetGardens(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var gardens []models.Garden
	err := ctrl.db.Where("user_id = ?", userID).
		Preload("Logs").
		Preload("Logs.Plant").
		Order("created_at DESC").
		Find(&gardens).Error
	if err != nil {
		response.ServerError(c)
		return
	}

	response.Success(c, gardens)
}

// AddPlantToGarden thêm một cây vào vườn và tạo các thông báo chăm sóc
// mặc định từ chu kỳ của cây
func (ctrl *GardenController) AddPlantToGarden(c *gin.Context) {
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

	var req dto.AddPlantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}

	if _, ok := ctrl.loadOwnedGarden(c, uint(gardenID), userID); !ok {
		return
	}

	var plant models.Plant
	if err := ctrl.db.First(&plant, req.PlantID).Error; err != nil {
		response.BadRequest(c, "Cây không tồn tại")
		return
	}

	plantedDate, err := time.Parse("2006-01-02", req.PlantedDate)
	if err != nil {
		response.BadRequest(c, "Ngày trồng không hợp lệ")
		return
	}

	log := &models.GardenLog{
		GardenID:     uint(gardenID),
		PlantID:      req.PlantID,
		PlantedDate:  plantedDate,
		HealthStatus: constants.HealthStatusGood,
		Plant:        &plant,
	}
	if err := validator.ValidateGardenLog(log); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	if err := ctrl.db.Create(log).Error; err != nil {
		utils.LogError("Lỗi thêm cây %d vào vườn %d: %v", req.PlantID, gardenID, err)
		response.ServerError(c)
		return
	}

	// Hook chạy sau khi log đã được ghi; lỗi hook không làm hỏng request
	ctrl.events.OnPlantAddedToGarden(c.Request.Context(), log)

	response.Success(c, log)
}

// RemovePlantFromGarden gỡ một cây khỏi vườn và dọn dẹp thông báo của nó
func (ctrl *GardenController) RemovePlantFromGarden(c *gin.Context) {
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
	plantID, err := strconv.ParseUint(c.Param("plantId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID cây không hợp lệ")
		return
	}

	if _, ok := ctrl.loadOwnedGarden(c, uint(gardenID), userID); !ok {
		return
	}

	res := ctrl.db.Where("garden_id = ? AND plant_id = ?", gardenID, plantID).Delete(&models.GardenLog{})
	if res.Error != nil {
		utils.LogError("Lỗi gỡ cây %d khỏi vườn %d: %v", plantID, gardenID, res.Error)
		response.ServerError(c)
		return
	}
	if res.RowsAffected == 0 {
		response.NotFound(c)
		return
	}

	ctrl.events.OnPlantRemovedFromGarden(c.Request.Context(), uint(gardenID), uint(plantID))

	response.Success(c, gin.H{"removed": plantID})
}

// LogCare ghi nhận một hành động chăm sóc (tưới nước/bón phân/cắt tỉa)
// và tự động hoàn thành các lần nhắc khớp
func (ctrl *GardenController) LogCare(c *gin.Context) {
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

	var req dto.LogCareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}
	if err := validator.ValidateCareType(req.CareType); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	if _, ok := ctrl.loadOwnedGarden(c, uint(gardenID), userID); !ok {
		return
	}

	var log models.GardenLog
	err = ctrl.db.Where("garden_id = ? AND plant_id = ?", gardenID, req.PlantID).First(&log).Error
	if err != nil {
		response.NotFound(c)
		return
	}

	now := time.Now()
	switch req.CareType {
	case constants.NotificationTypeWater:
		log.LastWatered = &now
	case constants.NotificationTypeFertilize:
		log.LastFertilized = &now
	case constants.NotificationTypePrune:
		log.LastPruned = &now
	}

	if err := ctrl.db.Save(&log).Error; err != nil {
		utils.LogError("Lỗi cập nhật nhật ký chăm sóc (vườn %d, cây %d): %v", gardenID, req.PlantID, err)
		response.ServerError(c)
		return
	}

	ctrl.events.OnCareLogged(c.Request.Context(), &log, req.CareType)

	response.Success(c, log)
}

// UpdatePlantHealth cập nhật tình trạng sức khỏe của một cây trong vườn.
// Hook nhận cặp (trạng thái cũ, trạng thái mới) tường minh.
func (ctrl *GardenController) UpdatePlantHealth(c *gin.Context) {
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

	var req dto.UpdateHealthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}
	if !validator.IsValidHealthStatus(req.HealthStatus) {
		response.ValidationError(c, "Tình trạng sức khỏe không hợp lệ: "+req.HealthStatus)
		return
	}

	if _, ok := ctrl.loadOwnedGarden(c, uint(gardenID), userID); !ok {
		return
	}

	var log models.GardenLog
	err = ctrl.db.Where("garden_id = ? AND plant_id = ?", gardenID, req.PlantID).First(&log).Error
	if err != nil {
		response.NotFound(c)
		return
	}

	oldStatus := log.HealthStatus
	log.HealthStatus = req.HealthStatus
	if err := ctrl.db.Save(&log).Error; err != nil {
		utils.LogError("Lỗi cập nhật sức khỏe cây %d trong vườn %d: %v", req.PlantID, gardenID, err)
		response.ServerError(c)
		return
	}

	ctrl.events.OnPlantHealthChanged(c.Request.Context(), oldStatus, req.HealthStatus, uint(gardenID), req.PlantID)

	response.Success(c, log)
}
