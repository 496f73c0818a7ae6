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
	"github.com/umshah583/quickway_backend/services"
	"github.com/umshah583/quickway_backend/utils"
)

// SubscriptionController handles wash plans and customer subscriptions
type SubscriptionController struct {
	db *mongo.Database
}

// NewSubscriptionController creates a new subscription controller
func NewSubscriptionController(db *mongo.Database) *SubscriptionController {
	return &SubscriptionController{db: db}
}

// CreatePlan adds a subscription plan
func (c *SubscriptionController) CreatePlan(ctx echo.Context) error {
	var req models.SubscriptionPlanRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request")
	}
	if err := ctx.Validate(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Name, price, washes and duration are required")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	now := time.Now()
	plan := models.SubscriptionPlan{
		ID:             primitive.NewObjectID(),
		Name:           utils.SanitizeInput(req.Name),
		Description:    req.Description,
		PriceCents:     req.PriceCents,
		WashesPerMonth: req.WashesPerMonth,
		DurationMonths: req.DurationMonths,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := c.db.Collection("subscriptionPlans").InsertOne(reqCtx, plan); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to create plan")
	}

	return ctx.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Plan created",
		Data:    plan,
	})
}

// ListPlans returns subscription plans, ?active=true filters retired ones
func (c *SubscriptionController) ListPlans(ctx echo.Context) error {
	filter := bson.M{}
	if ctx.QueryParam("active") == "true" {
		filter["isActive"] = true
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	cursor, err := c.db.Collection("subscriptionPlans").Find(reqCtx, filter)
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch plans")
	}
	plans := []models.SubscriptionPlan{}
	if err := cursor.All(reqCtx, &plans); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch plans")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Plans retrieved",
		Data:    plans,
	})
}

// UpdatePlan edits a plan
func (c *SubscriptionController) UpdatePlan(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid plan ID")
	}

	var req models.SubscriptionPlanRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request")
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Name != "" {
		set["name"] = utils.SanitizeInput(req.Name)
	}
	if req.Description != "" {
		set["description"] = req.Description
	}
	if req.PriceCents > 0 {
		set["priceCents"] = req.PriceCents
	}
	if req.WashesPerMonth > 0 {
		set["washesPerMonth"] = req.WashesPerMonth
	}
	if req.DurationMonths > 0 {
		set["durationMonths"] = req.DurationMonths
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	res, err := c.db.Collection("subscriptionPlans").UpdateOne(reqCtx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to update plan")
	}
	if res.MatchedCount == 0 {
		return respondError(ctx, http.StatusNotFound, "Plan not found")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Plan updated",
	})
}

// CreateSubscription enrols a customer on a plan. The end date is derived
// from the plan's duration.
func (c *SubscriptionController) CreateSubscription(ctx echo.Context) error {
	var req models.SubscriptionRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request")
	}
	if err := ctx.Validate(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Plan, customer name and start date are required")
	}

	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid plan ID")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	var plan models.SubscriptionPlan
	if err := c.db.Collection("subscriptionPlans").FindOne(reqCtx, bson.M{"_id": planID}).Decode(&plan); err != nil {
		return respondError(ctx, http.StatusNotFound, "Plan not found")
	}
	if !plan.IsActive {
		return respondError(ctx, http.StatusBadRequest, "Plan is no longer offered")
	}

	now := time.Now()
	sub := models.Subscription{
		ID:            primitive.NewObjectID(),
		PlanID:        planID,
		CustomerName:  utils.SanitizeInput(req.CustomerName),
		CustomerPhone: utils.SanitizeInput(req.CustomerPhone),
		VehicleInfo:   utils.SanitizeInput(req.VehicleInfo),
		Address:       utils.SanitizeInput(req.Address),
		StartDate:     req.StartDate,
		EndDate:       req.StartDate.AddDate(0, plan.DurationMonths, 0),
		Status:        models.SubscriptionActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := c.db.Collection("subscriptions").InsertOne(reqCtx, sub); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to create subscription")
	}

	return ctx.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Subscription created",
		Data:    sub,
	})
}

// ListSubscriptions returns subscriptions, sweeping past-end ACTIVE records
// to EXPIRED first
func (c *SubscriptionController) ListSubscriptions(ctx echo.Context) error {
	reqCtx, cancel := requestContext()
	defer cancel()

	now := time.Now()
	c.db.Collection("subscriptions").UpdateMany(reqCtx,
		bson.M{"status": models.SubscriptionActive, "endDate": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"status": models.SubscriptionExpired, "updatedAt": now}})

	filter := bson.M{}
	if s := ctx.QueryParam("status"); s != "" {
		filter["status"] = s
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := c.db.Collection("subscriptions").Find(reqCtx, filter, opts)
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch subscriptions")
	}
	subs := []models.Subscription{}
	if err := cursor.All(reqCtx, &subs); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch subscriptions")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Subscriptions retrieved",
		Data:    subs,
	})
}

// ScheduleVisit books a wash visit against a subscription. Blocked outside
// the subscription's active window.
func (c *SubscriptionController) ScheduleVisit(ctx echo.Context) error {
	var req models.SubscriptionVisitRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request")
	}
	if err := ctx.Validate(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Subscription and start time are required")
	}

	subID, err := primitive.ObjectIDFromHex(req.SubscriptionID)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid subscription ID")
	}
	driverID, err := optionalID(req.DriverID)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid driver ID")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	var sub models.Subscription
	if err := c.db.Collection("subscriptions").FindOne(reqCtx, bson.M{"_id": subID}).Decode(&sub); err != nil {
		return respondError(ctx, http.StatusNotFound, "Subscription not found")
	}
	if !sub.WithinWindow(req.StartAt) {
		blocked := services.Blocked(services.ActionOutsideWindow, "Visit falls outside the subscription's active window")
		blocked.Data = map[string]interface{}{"startDate": sub.StartDate, "endDate": sub.EndDate}
		return respondBlocked(ctx, blocked)
	}

	now := time.Now()
	status := models.BookingPending
	if driverID != nil {
		status = models.BookingAssigned
	}
	booking := models.Booking{
		ID:            primitive.NewObjectID(),
		CustomerName:  sub.CustomerName,
		CustomerPhone: sub.CustomerPhone,
		Address:       sub.Address,
		DriverID:      driverID,
		Status:        status,
		TaskStatus:    models.TaskAssigned,
		StartAt:       req.StartAt,
		Notes:         "Subscription visit " + sub.ID.Hex(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := c.db.Collection("bookings").InsertOne(reqCtx, booking); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to schedule visit")
	}
	c.db.Collection("subscriptions").UpdateOne(reqCtx, bson.M{"_id": subID},
		bson.M{"$inc": bson.M{"washesUsed": 1}, "$set": bson.M{"updatedAt": now}})

	return ctx.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Visit scheduled",
		Data:    booking,
	})
}

// CancelSubscription marks a subscription cancelled
func (c *SubscriptionController) CancelSubscription(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid subscription ID")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	res, err := c.db.Collection("subscriptions").UpdateOne(reqCtx,
		bson.M{"_id": id, "status": models.SubscriptionActive},
		bson.M{"$set": bson.M{"status": models.SubscriptionCancelled, "updatedAt": time.Now()}})
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to cancel subscription")
	}
	if res.MatchedCount == 0 {
		return respondError(ctx, http.StatusNotFound, "Active subscription not found")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Subscription cancelled",
	})
}
