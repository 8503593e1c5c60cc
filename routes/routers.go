package routes

import (
	"context"
	"net/http"

	"garden/constants"
	"garden/controllers"
	middlewares "garden/middleware"
	"garden/services"
	"garden/services/logger"
	"garden/services/notification"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"

	"github.com/redis/go-redis/v9"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"gorm.io/gorm"
)

func SetupRoutes(router *gin.Engine, db *gorm.DB, redisCli *redis.Client, cld *cloudinary.Cloudinary, m *melody.Melody) *services.ScheduleServiceAdapter {
	appLogger := logger.NewDefaultLogger(logger.InfoLevel)

	scheduleService := services.NewScheduleService(services.ScheduleServiceOptions{
		DB:     db,
		Logger: appLogger,
	})
	eligibilityService := services.NewEligibilityService(services.EligibilityServiceOptions{
		DB:     db,
		Logger: appLogger,
	})
	eventService := services.NewEventService(services.EventServiceOptions{
		DB:        db,
		Logger:    appLogger,
		Redis:     redisCli,
		Scheduler: scheduleService,
		Notifier:  notification.NewMelodyService(m),
	})

	notificationController := controllers.NewNotificationController(controllers.NotificationControllerOptions{
		DB:          db,
		Redis:       redisCli,
		Eligibility: eligibilityService,
		Events:      eventService,
		Logger:      appLogger,
	})
	gardenController := controllers.NewGardenController(controllers.GardenControllerOptions{
		DB:     db,
		Events: eventService,
		Logger: appLogger,
	})
	plantController := controllers.NewPlantController(db)

	v1 := router.Group("/api/v1")
	v1.Use(middlewares.SessionMiddleware())

	v1.GET("/plants", plantController.GetPlants)
	v1.GET("/plants/:id", plantController.GetPlantDetail)
	v1.POST("/plants", middlewares.AuthMiddleware(constants.RoleAdmin), plantController.CreatePlant)

	v1.GET("/gardens", middlewares.AuthMiddleware(), gardenController.GetGardens)
	v1.POST("/gardens", middlewares.AuthMiddleware(), gardenController.CreateGarden)
	v1.POST("/gardens/:id/plants", middlewares.AuthMiddleware(), gardenController.AddPlantToGarden)
	v1.DELETE("/gardens/:id/plants/:plantId", middlewares.AuthMiddleware(), gardenController.RemovePlantFromGarden)
	v1.POST("/gardens/:id/care", middlewares.AuthMiddleware(), gardenController.LogCare)
	v1.PUT("/gardens/:id/health", middlewares.AuthMiddleware(), gardenController.UpdatePlantHealth)
	v1.GET("/gardens/:id/notifications", middlewares.AuthMiddleware(), notificationController.GetGardenNotifications)

	v1.POST("/notifications", middlewares.AuthMiddleware(), notificationController.CreateNotification)
	v1.DELETE("/notifications/:id", middlewares.AuthMiddleware(), notificationController.DeleteNotification)
	v1.GET("/notifications/dashboard", middlewares.AuthMiddleware(), notificationController.GetDashboard)
	v1.GET("/notifications/byGarden", middlewares.AuthMiddleware(), notificationController.GetByGarden)
	v1.GET("/notifications/upcoming", middlewares.AuthMiddleware(), notificationController.GetUpcoming)
	v1.PUT("/notifications/complete", middlewares.AuthMiddleware(), notificationController.CompleteInstance)
	v1.PUT("/notifications/skip", middlewares.AuthMiddleware(), notificationController.SkipInstance)
	v1.PUT("/notifications/bulkComplete", middlewares.AuthMiddleware(), notificationController.BulkComplete)

	v1.POST("/img/upload", func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Không có file"})
			return
		}

		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Lỗi khi mở file"})
			return
		}
		defer src.Close()

		ctx := context.Background()
		resp, err := cld.Upload.Upload(ctx, src, uploader.UploadParams{Folder: "plants"})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload thất bại"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Upload ảnh cây thành công",
			"url":     resp.SecureURL,
		})
	})

	return services.NewScheduleServiceAdapter(scheduleService, eventService)
}
