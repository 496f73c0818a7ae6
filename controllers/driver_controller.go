package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/umshah583/quickway_backend/middleware"
	"github.com/umshah583/quickway_backend/models"
	"github.com/umshah583/quickway_backend/utils"
)

// DriverController handles admin-side driver management and duty settings
type DriverController struct {
	db *mongo.Database
}

// NewDriverController creates a new driver controller
func NewDriverController(db *mongo.Database) *DriverController {
	return &DriverController{db: db}
}

func (c *DriverController) drivers() *mongo.Collection {
	return c.db.Collection("drivers")
}

// CreateDriver creates a driver, optionally provisioning the app login
func (c *DriverController) CreateDriver(ctx echo.Context) error {
	var req models.DriverRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request")
	}
	if err := ctx.Validate(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Full name and phone are required")
	}
	if req.Password != "" && (req.Email == "" || len(req.Password) < 8) {
		return respondError(ctx, http.StatusBadRequest, "Login requires an email and a password of at least 8 characters")
	}

	var partnerID *primitive.ObjectID
	if req.PartnerID != "" {
		parsed, err := primitive.ObjectIDFromHex(req.PartnerID)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, "Invalid partner ID")
		}
		partnerID = &parsed
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	now := time.Now()
	driver := models.Driver{
		ID:          primitive.NewObjectID(),
		PartnerID:   partnerID,
		FullName:    utils.SanitizeInput(req.FullName),
		Phone:       utils.SanitizeInput(req.Phone),
		Email:       req.Email,
		VehicleInfo: utils.SanitizeInput(req.VehicleInfo),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if req.Password != "" {
		email, err := utils.SanitizeEmail(req.Email)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, "Invalid email address")
		}
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, "Failed to create login")
		}
		user := models.User{
			ID:        primitive.NewObjectID(),
			FullName:  driver.FullName,
			Email:     email,
			Phone:     driver.Phone,
			Password:  hash,
			UserType:  models.UserTypeDriver,
			DriverID:  &driver.ID,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := c.db.Collection("users").InsertOne(reqCtx, user); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return respondError(ctx, http.StatusConflict, "Email is already in use")
			}
			return respondError(ctx, http.StatusInternalServerError, "Failed to create login")
		}
		driver.UserID = &user.ID
	}

	if _, err := c.drivers().InsertOne(reqCtx, driver); err != nil {
		ctx.Logger().Errorf("failed to create driver: %v", err)
		return respondError(ctx, http.StatusInternalServerError, "Failed to create driver")
	}

	return ctx.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Driver created",
		Data:    driver,
	})
}

// ListDrivers returns drivers, filterable by ?partnerId= and ?active=true
func (c *DriverController) ListDrivers(ctx echo.Context) error {
	filter := bson.M{}
	if raw := ctx.QueryParam("partnerId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, "Invalid partner ID")
		}
		filter["partnerId"] = id
	}
	if ctx.QueryParam("active") == "true" {
		filter["isActive"] = true
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "fullName", Value: 1}})
	cursor, err := c.drivers().Find(reqCtx, filter, opts)
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch drivers")
	}
	drivers := []models.Driver{}
	if err := cursor.All(reqCtx, &drivers); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch drivers")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Drivers retrieved",
		Data:    drivers,
	})
}

// GetDriver returns a single driver
func (c *DriverController) GetDriver(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid driver ID")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	var driver models.Driver
	if err := c.drivers().FindOne(reqCtx, bson.M{"_id": id}).Decode(&driver); err != nil {
		return respondError(ctx, http.StatusNotFound, "Driver not found")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Driver retrieved",
		Data:    driver,
	})
}

// UpdateDriver edits a driver's profile
func (c *DriverController) UpdateDriver(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid driver ID")
	}

	var req models.DriverRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request")
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.FullName != "" {
		set["fullName"] = utils.SanitizeInput(req.FullName)
	}
	if req.Phone != "" {
		set["phone"] = utils.SanitizeInput(req.Phone)
	}
	if req.Email != "" {
		set["email"] = req.Email
	}
	if req.VehicleInfo != "" {
		set["vehicleInfo"] = utils.SanitizeInput(req.VehicleInfo)
	}
	if req.PartnerID != "" {
		parsed, err := primitive.ObjectIDFromHex(req.PartnerID)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, "Invalid partner ID")
		}
		set["partnerId"] = parsed
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	res, err := c.drivers().UpdateOne(reqCtx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to update driver")
	}
	if res.MatchedCount == 0 {
		return respondError(ctx, http.StatusNotFound, "Driver not found")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Driver updated",
	})
}

// DeleteDriver deactivates a driver and its login. Records are kept for
// financial history.
func (c *DriverController) DeleteDriver(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid driver ID")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	var driver models.Driver
	if err := c.drivers().FindOne(reqCtx, bson.M{"_id": id}).Decode(&driver); err != nil {
		return respondError(ctx, http.StatusNotFound, "Driver not found")
	}

	now := time.Now()
	c.drivers().UpdateOne(reqCtx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": now}})
	if driver.UserID != nil {
		c.db.Collection("users").UpdateOne(reqCtx, bson.M{"_id": *driver.UserID},
			bson.M{"$set": bson.M{"isActive": false, "updatedAt": now}})
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Driver deactivated",
	})
}

// GetDutySettings returns the driver's duty window configuration, or the
// platform default when none is set
func (c *DriverController) GetDutySettings(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid driver ID")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	var settings models.DutySettings
	err = c.db.Collection("dutySettings").FindOne(reqCtx, bson.M{"driverId": id}).Decode(&settings)
	if err == mongo.ErrNoDocuments {
		return ctx.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "No duty settings configured, platform default applies",
		})
	}
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch duty settings")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Duty settings retrieved",
		Data:    settings,
	})
}

// PutDutySettings replaces the driver's duty window configuration
func (c *DriverController) PutDutySettings(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid driver ID")
	}

	var req models.DutySettingsRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request")
	}
	if len(req.Shifts) == 0 && (req.Start == "" || req.End == "") {
		return respondError(ctx, http.StatusBadRequest, "Provide shifts or a start/end pair")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	update := bson.M{"$set": bson.M{
		"driverId":  id,
		"shifts":    req.Shifts,
		"start":     req.Start,
		"end":       req.End,
		"updatedAt": time.Now(),
	}}
	opts := options.Update().SetUpsert(true)
	if _, err := c.db.Collection("dutySettings").UpdateOne(reqCtx, bson.M{"driverId": id}, update, opts); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to save duty settings")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Duty settings saved",
	})
}

// SettleDriverCash marks all of the driver's unsettled cash collections as
// settled and returns the settled total
func (c *DriverController) SettleDriverCash(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid driver ID")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	filter := bson.M{"driverId": id, "cashCollected": true, "cashSettled": false}
	cursor, err := c.db.Collection("bookings").Find(reqCtx, filter)
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch collections")
	}
	var bookings []models.Booking
	if err := cursor.All(reqCtx, &bookings); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch collections")
	}

	var total int64
	for _, b := range bookings {
		total += b.CashAmountCents
	}

	res, err := c.db.Collection("bookings").UpdateMany(reqCtx, filter,
		bson.M{"$set": bson.M{"cashSettled": true, "updatedAt": time.Now()}})
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to settle collections")
	}

	if claims := middleware.GetUserFromToken(ctx); claims != nil {
		if actorID, err := primitive.ObjectIDFromHex(claims.UserID); err == nil {
			go utils.LogAdminAction(c.db, actorID, claims.UserType, "cash_settled", nil, id.Hex())
		}
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Cash collections settled",
		Data: map[string]interface{}{
			"settledCount": res.ModifiedCount,
			"settledCents": total,
		},
	})
}

// GetMyProfile returns the authenticated driver's own record
func (c *DriverController) GetMyProfile(ctx echo.Context) error {
	driver, err := currentDriver(ctx, c.db)
	if err != nil {
		return respondError(ctx, http.StatusUnauthorized, "Driver account required")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile retrieved",
		Data:    driver,
	})
}
