package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/umshah583/quickway_backend/models"
)

// NotificationController serves a user's in-app notifications
type NotificationController struct {
	db *mongo.Database
}

// NewNotificationController creates a new notification controller
func NewNotificationController(db *mongo.Database) *NotificationController {
	return &NotificationController{db: db}
}

// ListMyNotifications returns the user's notifications, newest first.
// ?unread=true filters to unread ones.
func (c *NotificationController) ListMyNotifications(ctx echo.Context) error {
	user, err := currentUser(ctx, c.db)
	if err != nil {
		return respondError(ctx, http.StatusUnauthorized, "Unauthorized")
	}

	filter := bson.M{"userId": user.ID}
	if ctx.QueryParam("unread") == "true" {
		filter["isRead"] = false
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(100)
	cursor, err := c.db.Collection("notifications").Find(reqCtx, filter, opts)
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch notifications")
	}
	notifications := []models.Notification{}
	if err := cursor.All(reqCtx, &notifications); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch notifications")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notifications retrieved",
		Data:    notifications,
	})
}

// MarkNotificationRead marks a single notification as read
func (c *NotificationController) MarkNotificationRead(ctx echo.Context) error {
	user, err := currentUser(ctx, c.db)
	if err != nil {
		return respondError(ctx, http.StatusUnauthorized, "Unauthorized")
	}
	id, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid notification ID")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	res, err := c.db.Collection("notifications").UpdateOne(reqCtx,
		bson.M{"_id": id, "userId": user.ID},
		bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to update notification")
	}
	if res.MatchedCount == 0 {
		return respondError(ctx, http.StatusNotFound, "Notification not found")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notification marked read",
	})
}

// MarkAllNotificationsRead marks every unread notification as read
func (c *NotificationController) MarkAllNotificationsRead(ctx echo.Context) error {
	user, err := currentUser(ctx, c.db)
	if err != nil {
		return respondError(ctx, http.StatusUnauthorized, "Unauthorized")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	res, err := c.db.Collection("notifications").UpdateMany(reqCtx,
		bson.M{"userId": user.ID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to update notifications")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notifications marked read",
		Data:    map[string]interface{}{"updated": res.ModifiedCount},
	})
}
