package controllers

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/umshah583/quickway_backend/middleware"
	"github.com/umshah583/quickway_backend/models"
	"github.com/umshah583/quickway_backend/services"
	"github.com/umshah583/quickway_backend/utils"
	"github.com/umshah583/quickway_backend/websocket"
)

// TaskController handles driver-side task progress on bookings
type TaskController struct {
	db      *mongo.Database
	tasks   *services.TaskService
	hub     *websocket.Hub
	metrics *middleware.Metrics
}

// NewTaskController creates a new task controller
func NewTaskController(db *mongo.Database, tasks *services.TaskService, hub *websocket.Hub, metrics *middleware.Metrics) *TaskController {
	return &TaskController{db: db, tasks: tasks, hub: hub, metrics: metrics}
}

// ListMyTasks returns the driver's bookings, newest first. ?taskStatus=
// filters on progress state.
func (c *TaskController) ListMyTasks(ctx echo.Context) error {
	driver, err := currentDriver(ctx, c.db)
	if err != nil {
		return respondError(ctx, http.StatusUnauthorized, "Driver account required")
	}

	filter := bson.M{"driverId": driver.ID}
	if ts := ctx.QueryParam("taskStatus"); ts != "" {
		filter["taskStatus"] = ts
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "startAt", Value: -1}})
	cursor, err := c.db.Collection("bookings").Find(reqCtx, filter, opts)
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch tasks")
	}

	bookings := []models.Booking{}
	if err := cursor.All(reqCtx, &bookings); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch tasks")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Tasks retrieved",
		Data:    bookings,
	})
}

// StartTask moves an assigned booking to IN_PROGRESS
func (c *TaskController) StartTask(ctx echo.Context) error {
	driver, err := currentDriver(ctx, c.db)
	if err != nil {
		return respondError(ctx, http.StatusUnauthorized, "Driver account required")
	}
	bookingID, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid booking ID")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	booking, err := c.tasks.StartTask(reqCtx, bookingID, driver.ID)
	if err != nil {
		return respondBlocked(ctx, err)
	}

	c.logAction(ctx, "task_started", bookingID)
	if c.hub != nil {
		c.hub.Broadcast(websocket.Event{
			Type:    websocket.EventTaskStarted,
			Message: driver.FullName + " started a task",
			Data:    booking,
		})
	}
	go c.notifyPartner(booking, "Service started",
		driver.FullName+" started working on the booking for "+booking.CustomerName,
		"booking_started")
	go c.notifyCustomer(booking, false)

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Task started",
		Data:    booking,
	})
}

// SubmitCashDetails records whether cash was collected and how much
func (c *TaskController) SubmitCashDetails(ctx echo.Context) error {
	driver, err := currentDriver(ctx, c.db)
	if err != nil {
		return respondError(ctx, http.StatusUnauthorized, "Driver account required")
	}
	bookingID, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid booking ID")
	}

	var req models.CashDetailsRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	booking, err := c.tasks.SubmitCashDetails(reqCtx, bookingID, driver.ID, &req)
	if err != nil {
		return respondBlocked(ctx, err)
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Cash details recorded",
		Data:    booking,
	})
}

// CompleteTask finishes an in-progress booking. Cash bookings must have their
// cash details submitted first.
func (c *TaskController) CompleteTask(ctx echo.Context) error {
	driver, err := currentDriver(ctx, c.db)
	if err != nil {
		return respondError(ctx, http.StatusUnauthorized, "Driver account required")
	}
	bookingID, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid booking ID")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	booking, err := c.tasks.CompleteTask(reqCtx, bookingID, driver.ID)
	if err != nil {
		return respondBlocked(ctx, err)
	}

	c.logAction(ctx, "task_completed", bookingID)
	if c.metrics != nil {
		c.metrics.TasksCompleted.Inc()
	}
	if c.hub != nil {
		c.hub.Broadcast(websocket.Event{
			Type:    websocket.EventTaskCompleted,
			Message: driver.FullName + " completed a task",
			Data:    booking,
		})
	}
	go c.notifyPartner(booking, "Booking completed",
		driver.FullName+" completed the booking for "+booking.CustomerName,
		"booking_completed")
	go c.notifyCustomer(booking, true)

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Task completed",
		Data:    booking,
	})
}

func (c *TaskController) logAction(ctx echo.Context, action string, bookingID primitive.ObjectID) {
	claims := middleware.GetUserFromToken(ctx)
	if claims == nil {
		return
	}
	actorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return
	}
	go utils.LogAdminAction(c.db, actorID, claims.UserType, action, &bookingID, "")
}

// customerNotice builds the email sent to the booking's customer when the
// driver starts or completes the job. ok is false when the booking carries
// no customer email.
func customerNotice(booking *models.Booking, completed bool) (subject, body string, ok bool) {
	if booking == nil || booking.CustomerEmail == "" {
		return "", "", false
	}
	if completed {
		subject = "Your wash is done"
		body = "Hi " + booking.CustomerName + ",\n\nYour vehicle service has been completed. Thank you for choosing us!"
	} else {
		subject = "Your wash has started"
		body = "Hi " + booking.CustomerName + ",\n\nOur driver has started working on your vehicle."
	}
	return subject, body, true
}

func (c *TaskController) notifyCustomer(booking *models.Booking, completed bool) {
	subject, body, ok := customerNotice(booking, completed)
	if !ok {
		return
	}
	if err := utils.SendEmail(booking.CustomerEmail, subject, body); err != nil {
		utils.Logger.Warnw("customer email failed", "bookingId", booking.ID.Hex(), "error", err)
	}
}

// notifyPartner sends an in-app + push notification to the partner whose
// booking was completed, when the partner has a login.
func (c *TaskController) notifyPartner(booking *models.Booking, title, body, notifType string) {
	if booking.PartnerID == nil {
		return
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	var partner models.Partner
	if err := c.db.Collection("partners").FindOne(reqCtx, bson.M{"_id": *booking.PartnerID}).Decode(&partner); err != nil {
		return
	}
	if partner.UserID == nil {
		return
	}
	utils.NotifyUser(c.db, *partner.UserID, title, body, notifType,
		map[string]interface{}{"bookingId": booking.ID.Hex()})
}

// UploadTaskMedia attaches before/after photos or clips to a booking the
// driver owns. Multipart field name: "file".
func (c *TaskController) UploadTaskMedia(ctx echo.Context) error {
	driver, err := currentDriver(ctx, c.db)
	if err != nil {
		return respondError(ctx, http.StatusUnauthorized, "Driver account required")
	}
	bookingID, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid booking ID")
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "File is required")
	}
	if fileHeader.Size > 50*1024*1024 {
		return respondError(ctx, http.StatusBadRequest, "File exceeds the 50MB limit")
	}

	ext := utils.MediaExt(fileHeader.Filename)
	if ext == "" {
		return respondError(ctx, http.StatusBadRequest, "Unsupported file type")
	}
	mediaType := "image"
	switch ext {
	case ".mp4", ".mov", ".webm":
		mediaType = "video"
	}

	src, err := fileHeader.Open()
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to read file")
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to read file")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	// Ownership check before writing anything to disk.
	var booking models.Booking
	if err := c.db.Collection("bookings").FindOne(reqCtx, bson.M{"_id": bookingID}).Decode(&booking); err != nil {
		return respondError(ctx, http.StatusNotFound, "Booking not found")
	}
	if booking.DriverID == nil || *booking.DriverID != driver.ID {
		return respondError(ctx, http.StatusUnauthorized, "Booking is not assigned to you")
	}

	mediaURL, thumbURL, err := utils.SaveBookingMedia(data, bookingID.Hex(), ext, mediaType)
	if err != nil {
		ctx.Logger().Errorf("failed to save booking media: %v", err)
		return respondError(ctx, http.StatusInternalServerError, "Failed to save file")
	}

	update := bson.M{"$push": bson.M{"mediaUrls": mediaURL}}
	if thumbURL != "" {
		update["$push"].(bson.M)["thumbnailUrls"] = thumbURL
	}
	if _, err := c.db.Collection("bookings").UpdateOne(reqCtx, bson.M{"_id": bookingID}, update); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to save file")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Media uploaded",
		Data: map[string]interface{}{
			"mediaUrl":     mediaURL,
			"thumbnailUrl": thumbURL,
		},
	})
}
