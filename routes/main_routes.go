package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/umshah583/quickway_backend/controllers"
	"github.com/umshah583/quickway_backend/middleware"
	"github.com/umshah583/quickway_backend/websocket"
)

// RegisterMainRoutes sets up authentication, websocket and shared routes
func RegisterMainRoutes(e *echo.Echo, db *mongo.Database, hub *websocket.Hub) {
	authController := controllers.NewAuthController(db)
	notificationController := controllers.NewNotificationController(db)

	api := e.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	auth.POST("/login", authController.Login)
	auth.POST("/remember-me", authController.RememberMeLogin)
	auth.POST("/forgot-password", authController.ForgotPassword)
	auth.POST("/verify-otp-reset", authController.VerifyOTPAndResetPassword)

	// Protected shared routes
	protected := api.Group("")
	protected.Use(middleware.JWTMiddleware())
	protected.POST("/auth/logout", authController.Logout)
	protected.GET("/auth/me", authController.GetCurrentUser)
	protected.PUT("/auth/fcm-token", authController.UpdateFCMToken)
	protected.GET("/notifications", notificationController.ListMyNotifications)
	protected.PUT("/notifications/:id/read", notificationController.MarkNotificationRead)
	protected.PUT("/notifications/read-all", notificationController.MarkAllNotificationsRead)

	// Live dispatch feed
	protected.GET("/ws", func(c echo.Context) error {
		userID, err := middleware.ExtractUserID(c)
		if err != nil {
			return echo.NewHTTPError(401, "Unauthorized")
		}
		oid, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return echo.NewHTTPError(401, "Unauthorized")
		}
		return websocket.HandleWebSocket(c, hub, oid)
	})
}
