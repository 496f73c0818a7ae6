package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/umshah583/quickway_backend/controllers"
	"github.com/umshah583/quickway_backend/middleware"
	"github.com/umshah583/quickway_backend/models"
	"github.com/umshah583/quickway_backend/services"
	"github.com/umshah583/quickway_backend/websocket"
)

// RegisterDriverRoutes sets up the driver-app routes
func RegisterDriverRoutes(e *echo.Echo, db *mongo.Database, hub *websocket.Hub, metrics *middleware.Metrics) {
	settings := services.NewMongoSettings(db)
	dayController := controllers.NewDriverDayController(db, services.NewDriverDayService(db, settings), hub, metrics)
	taskController := controllers.NewTaskController(db, services.NewTaskService(db), hub, metrics)
	driverController := controllers.NewDriverController(db)

	driver := e.Group("/api/driver")
	driver.Use(middleware.JWTMiddleware())
	driver.Use(middleware.RequireUserType(models.UserTypeDriver))

	// Shift lifecycle
	driver.GET("/day", dayController.GetDay)
	driver.POST("/day", dayController.PostDay)

	// Task progress
	driver.GET("/tasks", taskController.ListMyTasks)
	driver.POST("/tasks/:id/start", taskController.StartTask)
	driver.POST("/tasks/:id/cash", taskController.SubmitCashDetails)
	driver.POST("/tasks/:id/complete", taskController.CompleteTask)
	driver.POST("/tasks/:id/media", taskController.UploadTaskMedia)

	driver.GET("/profile", driverController.GetMyProfile)
}
