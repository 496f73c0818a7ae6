package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/umshah583/quickway_backend/controllers"
	"github.com/umshah583/quickway_backend/middleware"
	"github.com/umshah583/quickway_backend/models"
	"github.com/umshah583/quickway_backend/services"
)

// RegisterPartnerRoutes sets up the partner portal routes
func RegisterPartnerRoutes(e *echo.Echo, db *mongo.Database) {
	settings := services.NewMongoSettings(db)
	partnerController := controllers.NewPartnerController(db, services.NewFinanceService(db, settings))

	partner := e.Group("/api/partner")
	partner.Use(middleware.JWTMiddleware())
	partner.Use(middleware.RequireUserType(models.UserTypePartner))

	partner.GET("/financials", partnerController.GetMyFinancials)
}
