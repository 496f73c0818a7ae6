package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/umshah583/quickway_backend/models"
	"github.com/umshah583/quickway_backend/utils"
)

// ServiceTypeController handles the bookable service catalogue
type ServiceTypeController struct {
	db *mongo.Database
}

// NewServiceTypeController creates a new service type controller
func NewServiceTypeController(db *mongo.Database) *ServiceTypeController {
	return &ServiceTypeController{db: db}
}

func (c *ServiceTypeController) serviceTypes() *mongo.Collection {
	return c.db.Collection("serviceTypes")
}

// CreateServiceType adds a service to the catalogue
func (c *ServiceTypeController) CreateServiceType(ctx echo.Context) error {
	var req models.ServiceTypeRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request")
	}
	if err := ctx.Validate(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Name, duration and price are required")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	now := time.Now()
	svc := models.ServiceType{
		ID:              primitive.NewObjectID(),
		Name:            utils.SanitizeInput(req.Name),
		Category:        utils.SanitizeInput(req.Category),
		DurationMinutes: req.DurationMinutes,
		PriceCents:      req.PriceCents,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := c.serviceTypes().InsertOne(reqCtx, svc); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to create service type")
	}

	return ctx.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Service type created",
		Data:    svc,
	})
}

// ListServiceTypes returns the catalogue, filterable by ?category= and ?active=true
func (c *ServiceTypeController) ListServiceTypes(ctx echo.Context) error {
	filter := bson.M{}
	if cat := ctx.QueryParam("category"); cat != "" {
		filter["category"] = cat
	}
	if ctx.QueryParam("active") == "true" {
		filter["isActive"] = true
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := c.serviceTypes().Find(reqCtx, filter, opts)
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch service types")
	}
	types := []models.ServiceType{}
	if err := cursor.All(reqCtx, &types); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch service types")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Service types retrieved",
		Data:    types,
	})
}

// UpdateServiceType edits a catalogue entry
func (c *ServiceTypeController) UpdateServiceType(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid service type ID")
	}

	var req models.ServiceTypeRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request")
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Name != "" {
		set["name"] = utils.SanitizeInput(req.Name)
	}
	if req.Category != "" {
		set["category"] = utils.SanitizeInput(req.Category)
	}
	if req.DurationMinutes > 0 {
		set["durationMinutes"] = req.DurationMinutes
	}
	if req.PriceCents >= 0 {
		set["priceCents"] = req.PriceCents
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	res, err := c.serviceTypes().UpdateOne(reqCtx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to update service type")
	}
	if res.MatchedCount == 0 {
		return respondError(ctx, http.StatusNotFound, "Service type not found")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Service type updated",
	})
}

// DeleteServiceType retires a catalogue entry. Bookings keep their link for
// historical pricing.
func (c *ServiceTypeController) DeleteServiceType(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid service type ID")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	res, err := c.serviceTypes().UpdateOne(reqCtx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}})
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to delete service type")
	}
	if res.MatchedCount == 0 {
		return respondError(ctx, http.StatusNotFound, "Service type not found")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Service type retired",
	})
}
