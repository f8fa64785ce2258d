package routes

import (
	"staycal/controllers"
	middlewares "staycal/middleware"
	"staycal/services"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func SetupRoutes(router *gin.Engine, db *gorm.DB, redisCli *redis.Client, ledger *services.LedgerService, sync *services.SyncService, m *melody.Melody) {

	availabilityController := controllers.NewAvailabilityController(ledger, redisCli)
	calendarController := controllers.NewCalendarController(db, ledger, sync, redisCli)
	bookingController := controllers.NewBookingController(db, ledger, redisCli)
	propertyController := controllers.NewPropertyController(db)

	v1 := router.Group("/api/v1")
	v1.Use(middlewares.SessionMiddleware())

	v1.GET("/availability", availabilityController.GetAvailability)
	v1.PUT("/availability", middlewares.AuthMiddleware(1, 2), availabilityController.UpdateHostBlocks)

	v1.GET("/calendarSources", middlewares.AuthMiddleware(1, 2), calendarController.GetCalendarSources)
	v1.POST("/calendarSources", middlewares.AuthMiddleware(1, 2), calendarController.CreateCalendarSource)
	v1.DELETE("/calendarSources/:id", middlewares.AuthMiddleware(1, 2), calendarController.DeleteCalendarSource)
	v1.POST("/calendarSync", middlewares.AuthMiddleware(1, 2), calendarController.TriggerPropertySync)

	// Feed export dùng token bí mật thay cho đăng nhập
	v1.GET("/export/:propertyId/:token", calendarController.ExportCalendar)

	v1.POST("/booking", bookingController.CreateBooking)
	v1.PUT("/bookingStatus", middlewares.AuthMiddleware(0, 1, 2), bookingController.ChangeBookingStatus)
	v1.GET("/booking/:id", bookingController.GetBookingDetail)
	v1.GET("/bookingHistory", middlewares.AuthMiddleware(0, 1, 2), bookingController.GetBookingHistory)

	v1.GET("/property", propertyController.GetProperties)
	v1.POST("/property", middlewares.AuthMiddleware(1, 2), propertyController.CreateProperty)
	v1.GET("/property/:id", propertyController.GetPropertyDetail)
}
