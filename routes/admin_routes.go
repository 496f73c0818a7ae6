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

// RegisterAdminRoutes sets up the admin dashboard routes
func RegisterAdminRoutes(e *echo.Echo, db *mongo.Database, hub *websocket.Hub) {
	settings := services.NewMongoSettings(db)
	adminController := controllers.NewAdminController(db)
	bookingController := controllers.NewBookingController(db, hub)
	driverController := controllers.NewDriverController(db)
	partnerController := controllers.NewPartnerController(db, services.NewFinanceService(db, settings))
	couponController := controllers.NewCouponController(db)
	serviceTypeController := controllers.NewServiceTypeController(db)
	subscriptionController := controllers.NewSubscriptionController(db)

	admin := e.Group("/api/admin")
	admin.Use(middleware.JWTMiddleware())
	admin.Use(middleware.RequireUserType(models.UserTypeSuperAdmin, models.UserTypeAdmin))

	// Account and permission management stays with super admins; a regular
	// admin must not be able to widen its own module grants.
	superOnly := middleware.RequireUserType(models.UserTypeSuperAdmin)
	admin.POST("/register", adminController.CreateAdmin, superOnly)
	admin.PUT("/permissions", adminController.UpsertModulePermission, superOnly)

	admin.GET("/logs", adminController.ListAdminLogs)

	// Global settings
	admin.GET("/settings", adminController.ListSettings)
	admin.PUT("/settings", adminController.UpsertSetting)
	admin.GET("/permissions", adminController.ListModulePermissions)

	// Bookings
	bookings := admin.Group("/bookings", middleware.RequireModuleAccess(db, "bookings"))
	bookings.POST("", bookingController.CreateBooking)
	bookings.GET("", bookingController.ListBookings)
	bookings.GET("/:id", bookingController.GetBooking)
	bookings.PUT("/:id", bookingController.UpdateBooking)
	bookings.PUT("/:id/status", bookingController.UpdateBookingStatus)
	bookings.DELETE("/:id", bookingController.DeleteBooking)

	// Drivers
	drivers := admin.Group("/drivers", middleware.RequireModuleAccess(db, "drivers"))
	drivers.POST("", driverController.CreateDriver)
	drivers.GET("", driverController.ListDrivers)
	drivers.GET("/:id", driverController.GetDriver)
	drivers.PUT("/:id", driverController.UpdateDriver)
	drivers.DELETE("/:id", driverController.DeleteDriver)
	drivers.GET("/:id/duty-settings", driverController.GetDutySettings)
	drivers.PUT("/:id/duty-settings", driverController.PutDutySettings)
	drivers.POST("/:id/settle-cash", driverController.SettleDriverCash)

	// Partners and payouts
	partners := admin.Group("/partners", middleware.RequireModuleAccess(db, "partners"))
	partners.POST("", partnerController.CreatePartner)
	partners.GET("", partnerController.ListPartners)
	partners.GET("/:id", partnerController.GetPartner)
	partners.PUT("/:id", partnerController.UpdatePartner)
	partners.DELETE("/:id", partnerController.DeletePartner)
	partners.GET("/:id/financials", partnerController.GetPartnerFinancials)
	partners.POST("/:id/payouts", partnerController.CreatePartnerPayout)
	partners.GET("/:id/payouts", partnerController.ListPartnerPayouts)

	// Coupons
	coupons := admin.Group("/coupons", middleware.RequireModuleAccess(db, "coupons"))
	coupons.POST("", couponController.CreateCoupon)
	coupons.GET("", couponController.ListCoupons)
	coupons.PUT("/:id", couponController.UpdateCoupon)
	coupons.DELETE("/:id", couponController.DeactivateCoupon)
	coupons.GET("/validate", couponController.ValidateCoupon)
	coupons.GET("/:id/qr", couponController.GetCouponQR)

	// Service catalogue
	serviceTypes := admin.Group("/service-types", middleware.RequireModuleAccess(db, "serviceTypes"))
	serviceTypes.POST("", serviceTypeController.CreateServiceType)
	serviceTypes.GET("", serviceTypeController.ListServiceTypes)
	serviceTypes.PUT("/:id", serviceTypeController.UpdateServiceType)
	serviceTypes.DELETE("/:id", serviceTypeController.DeleteServiceType)

	// Subscriptions
	subscriptions := admin.Group("/subscriptions", middleware.RequireModuleAccess(db, "subscriptions"))
	subscriptions.POST("/plans", subscriptionController.CreatePlan)
	subscriptions.GET("/plans", subscriptionController.ListPlans)
	subscriptions.PUT("/plans/:id", subscriptionController.UpdatePlan)
	subscriptions.POST("", subscriptionController.CreateSubscription)
	subscriptions.GET("", subscriptionController.ListSubscriptions)
	subscriptions.POST("/visits", subscriptionController.ScheduleVisit)
	subscriptions.DELETE("/:id", subscriptionController.CancelSubscription)
}
