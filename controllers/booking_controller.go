package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/umshah583/quickway_backend/middleware"
	"github.com/umshah583/quickway_backend/models"
	"github.com/umshah583/quickway_backend/utils"
	"github.com/umshah583/quickway_backend/websocket"
)

// BookingController handles admin-side booking management
type BookingController struct {
	db  *mongo.Database
	hub *websocket.Hub
}

// NewBookingController creates a new booking controller
func NewBookingController(db *mongo.Database, hub *websocket.Hub) *BookingController {
	return &BookingController{db: db, hub: hub}
}

func (c *BookingController) bookings() *mongo.Collection {
	return c.db.Collection("bookings")
}

// optionalID parses a hex ID field that may be empty
func optionalID(raw string) (*primitive.ObjectID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// endAtFor derives the booking end from the linked service's duration
func (c *BookingController) endAtFor(serviceTypeID *primitive.ObjectID, startAt time.Time) *time.Time {
	if serviceTypeID == nil {
		return nil
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	var svc models.ServiceType
	if err := c.db.Collection("serviceTypes").FindOne(reqCtx, bson.M{"_id": *serviceTypeID}).Decode(&svc); err != nil {
		return nil
	}
	if svc.DurationMinutes <= 0 {
		return nil
	}
	end := startAt.Add(time.Duration(svc.DurationMinutes) * time.Minute)
	return &end
}

// CreateBooking creates a booking, optionally applying an active coupon and
// deriving endAt from the service duration
func (c *BookingController) CreateBooking(ctx echo.Context) error {
	var req models.BookingRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request")
	}
	if err := ctx.Validate(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Customer name and start time are required")
	}

	serviceTypeID, err := optionalID(req.ServiceTypeID)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid service type ID")
	}
	driverID, err := optionalID(req.DriverID)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid driver ID")
	}
	partnerID, err := optionalID(req.PartnerID)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid partner ID")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	now := time.Now()
	booking := models.Booking{
		ID:            primitive.NewObjectID(),
		CustomerName:  utils.SanitizeInput(req.CustomerName),
		CustomerPhone: utils.SanitizeInput(req.CustomerPhone),
		CustomerEmail: req.CustomerEmail,
		Address:       utils.SanitizeInput(req.Address),
		ServiceTypeID: serviceTypeID,
		DriverID:      driverID,
		PartnerID:     partnerID,
		Status:        models.BookingPending,
		TaskStatus:    models.TaskAssigned,
		StartAt:       req.StartAt,
		EndAt:         c.endAtFor(serviceTypeID, req.StartAt),
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if driverID != nil {
		booking.Status = models.BookingAssigned
	}

	if code := strings.TrimSpace(req.CouponCode); code != "" {
		var coupon models.Coupon
		err := c.db.Collection("coupons").FindOne(reqCtx, bson.M{"code": strings.ToUpper(code)}).Decode(&coupon)
		if err != nil || !coupon.Usable(now) {
			return respondError(ctx, http.StatusBadRequest, "Coupon is invalid or expired")
		}
		booking.CouponID = &coupon.ID
		c.db.Collection("coupons").UpdateOne(reqCtx, bson.M{"_id": coupon.ID}, bson.M{"$inc": bson.M{"usedCount": 1}})
	}

	if _, err := c.bookings().InsertOne(reqCtx, booking); err != nil {
		ctx.Logger().Errorf("failed to create booking: %v", err)
		return respondError(ctx, http.StatusInternalServerError, "Failed to create booking")
	}

	if c.hub != nil && driverID != nil {
		c.hub.Broadcast(websocket.Event{
			Type:    websocket.EventBookingAssigned,
			Message: "New booking assigned",
			Data:    booking,
		})
	}
	c.notifyDriver(driverID, "New booking", "You have been assigned a booking for "+booking.CustomerName, booking.ID)
	c.logAction(ctx, "booking_created", &booking.ID, booking.CustomerName)

	return ctx.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Booking created",
		Data:    booking,
	})
}

// ListBookings returns bookings, filterable by ?status=, ?taskStatus=,
// ?driverId=, ?partnerId=, ?from=, ?to= (RFC3339)
func (c *BookingController) ListBookings(ctx echo.Context) error {
	filter := bson.M{}
	if s := ctx.QueryParam("status"); s != "" {
		filter["status"] = s
	}
	if s := ctx.QueryParam("taskStatus"); s != "" {
		filter["taskStatus"] = s
	}
	if raw := ctx.QueryParam("driverId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, "Invalid driver ID")
		}
		filter["driverId"] = id
	}
	if raw := ctx.QueryParam("partnerId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, "Invalid partner ID")
		}
		filter["partnerId"] = id
	}
	timeRange := bson.M{}
	if raw := ctx.QueryParam("from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			timeRange["$gte"] = t
		}
	}
	if raw := ctx.QueryParam("to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			timeRange["$lte"] = t
		}
	}
	if len(timeRange) > 0 {
		filter["startAt"] = timeRange
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "startAt", Value: -1}})
	cursor, err := c.bookings().Find(reqCtx, filter, opts)
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch bookings")
	}
	bookings := []models.Booking{}
	if err := cursor.All(reqCtx, &bookings); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch bookings")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Bookings retrieved",
		Data:    bookings,
	})
}

// GetBooking returns a single booking
func (c *BookingController) GetBooking(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid booking ID")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	var booking models.Booking
	if err := c.bookings().FindOne(reqCtx, bson.M{"_id": id}).Decode(&booking); err != nil {
		return respondError(ctx, http.StatusNotFound, "Booking not found")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Booking retrieved",
		Data:    booking,
	})
}

// UpdateBooking is the admin full edit. Changing the service or start time
// recomputes endAt.
func (c *BookingController) UpdateBooking(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid booking ID")
	}

	var req models.BookingUpdateRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	var booking models.Booking
	if err := c.bookings().FindOne(reqCtx, bson.M{"_id": id}).Decode(&booking); err != nil {
		return respondError(ctx, http.StatusNotFound, "Booking not found")
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.CustomerName != "" {
		set["customerName"] = utils.SanitizeInput(req.CustomerName)
	}
	if req.CustomerPhone != "" {
		set["customerPhone"] = utils.SanitizeInput(req.CustomerPhone)
	}
	if req.Address != "" {
		set["address"] = utils.SanitizeInput(req.Address)
	}
	if req.Notes != "" {
		set["notes"] = req.Notes
	}
	if req.CashCollected != nil {
		set["cashCollected"] = *req.CashCollected
	}
	if req.CashAmount != nil {
		set["cashAmountCents"] = *req.CashAmount
	}

	serviceTypeID := booking.ServiceTypeID
	if req.ServiceTypeID != "" {
		parsed, err := optionalID(req.ServiceTypeID)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, "Invalid service type ID")
		}
		serviceTypeID = parsed
		set["serviceTypeId"] = parsed
	}
	if req.DriverID != "" {
		parsed, err := optionalID(req.DriverID)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, "Invalid driver ID")
		}
		set["driverId"] = parsed
		if booking.Status == models.BookingPending {
			set["status"] = models.BookingAssigned
		}
	}
	if req.PartnerID != "" {
		parsed, err := optionalID(req.PartnerID)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, "Invalid partner ID")
		}
		set["partnerId"] = parsed
	}

	startAt := booking.StartAt
	if req.StartAt != nil {
		startAt = *req.StartAt
		set["startAt"] = startAt
	}
	if req.StartAt != nil || req.ServiceTypeID != "" {
		set["endAt"] = c.endAtFor(serviceTypeID, startAt)
	}

	if _, err := c.bookings().UpdateOne(reqCtx, bson.M{"_id": id}, bson.M{"$set": set}); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to update booking")
	}

	var updated models.Booking
	if err := c.bookings().FindOne(reqCtx, bson.M{"_id": id}).Decode(&updated); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to reload booking")
	}

	if c.hub != nil {
		c.hub.Broadcast(websocket.Event{
			Type:    websocket.EventBookingUpdated,
			Message: "Booking updated",
			Data:    updated,
		})
	}
	c.logAction(ctx, "booking_updated", &id, updated.CustomerName)

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Booking updated",
		Data:    updated,
	})
}

// UpdateBookingStatus is the admin status override
func (c *BookingController) UpdateBookingStatus(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid booking ID")
	}

	var req models.BookingStatusUpdateRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request")
	}
	switch req.Status {
	case models.BookingPending, models.BookingAssigned, models.BookingPaid, models.BookingCancelled:
	default:
		return respondError(ctx, http.StatusBadRequest, "Unknown status")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	res, err := c.bookings().UpdateOne(reqCtx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": req.Status, "updatedAt": time.Now()}})
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to update booking")
	}
	if res.MatchedCount == 0 {
		return respondError(ctx, http.StatusNotFound, "Booking not found")
	}

	c.logAction(ctx, "booking_status_"+strings.ToLower(req.Status), &id, "")

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Booking status updated",
	})
}

// DeleteBooking removes a booking
func (c *BookingController) DeleteBooking(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid booking ID")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	res, err := c.bookings().DeleteOne(reqCtx, bson.M{"_id": id})
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to delete booking")
	}
	if res.DeletedCount == 0 {
		return respondError(ctx, http.StatusNotFound, "Booking not found")
	}

	if c.hub != nil {
		c.hub.Broadcast(websocket.Event{
			Type:    websocket.EventBookingDeleted,
			Message: "Booking deleted",
			Data:    map[string]interface{}{"bookingId": id.Hex()},
		})
	}
	c.logAction(ctx, "booking_deleted", &id, "")

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Booking deleted",
	})
}

// notifyDriver sends an in-app + push notification to the driver's linked login
func (c *BookingController) notifyDriver(driverID *primitive.ObjectID, title, message string, bookingID primitive.ObjectID) {
	if driverID == nil {
		return
	}
	go func() {
		reqCtx, cancel := requestContext()
		defer cancel()

		var driver models.Driver
		if err := c.db.Collection("drivers").FindOne(reqCtx, bson.M{"_id": *driverID}).Decode(&driver); err != nil {
			return
		}
		if driver.UserID == nil {
			return
		}
		utils.NotifyUser(c.db, *driver.UserID, title, message, "booking",
			map[string]interface{}{"bookingId": bookingID.Hex()})
	}()
}

func (c *BookingController) logAction(ctx echo.Context, action string, bookingID *primitive.ObjectID, detail string) {
	claims := middleware.GetUserFromToken(ctx)
	if claims == nil {
		return
	}
	actorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return
	}
	go utils.LogAdminAction(c.db, actorID, claims.UserType, action, bookingID, detail)
}
