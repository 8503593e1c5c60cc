package controllers

import (
	"strconv"

	"garden/constants"
	"garden/models"
	"garden/response"
	"garden/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PlantController struct {
	db *gorm.DB
}

func NewPlantController(db *gorm.DB) *PlantController {
	return &PlantController{db: db}
}

// CreatePlant tạo một giống cây mới trong danh mục (chỉ admin)
func (ctrl *PlantController) CreatePlant(c *gin.Context) {
	role, exists := c.Get("userRole")
	if !exists || role.(int) != constants.RoleAdmin {
		response.Forbidden(c)
		return
	}

	var plant models.Plant
	if err := c.ShouldBindJSON(&plant); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}
	if plant.CommonName == "" {
		response.ValidationError(c, "Tên cây không được để trống")
		return
	}

	if err := ctrl.db.Create(&plant).Error; err != nil {
		utils.LogError("Lỗi tạo cây %q: %v", plant.CommonName, err)
		response.ServerError(c)
		return
	}

	response.Success(c, plant)
}

// GetPlants liệt kê danh mục cây
func (ctrl *PlantController) GetPlants(c *gin.Context) {
	var plants []models.Plant
	if err := ctrl.db.Order("common_name ASC").Find(&plants).Error; err != nil {
		response.ServerError(c)
		return
	}
	response.Success(c, plants)
}

// GetPlantDetail trả về chi tiết một cây
func (ctrl *PlantController) GetPlantDetail(c *gin.Context) {
	plantID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID cây không hợp lệ")
		return
	}

	var plant models.Plant
	if err := ctrl.db.First(&plant, plantID).Error; err != nil {
		response.NotFound(c)
		return
	}
	response.Success(c, plant)
}
