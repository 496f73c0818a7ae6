package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/umshah583/quickway_backend/middleware"
	"github.com/umshah583/quickway_backend/models"
	"github.com/umshah583/quickway_backend/services"
)

// requestContext bounds handler database work to a single request budget
func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func respondError(ctx echo.Context, status int, message string) error {
	return ctx.JSON(status, models.Response{
		Status:  status,
		Message: message,
	})
}

// respondBlocked maps service errors onto the documented error envelope:
// precondition failures carry their requiresAction tag, everything else is a
// generic 500 with details only in server logs.
func respondBlocked(ctx echo.Context, err error) error {
	var blocked *services.BlockedError
	if errors.As(err, &blocked) {
		status := http.StatusBadRequest
		if blocked.Action == services.ActionDayAlreadyClosed {
			status = http.StatusConflict
		}
		payload := models.ActionError{
			Status:         status,
			Error:          blocked.Message,
			RequiresAction: blocked.Action,
			Data:           blocked.Data,
		}
		return ctx.JSON(status, payload)
	}

	switch {
	case errors.Is(err, services.ErrBookingNotFound):
		return respondError(ctx, http.StatusNotFound, "Booking not found")
	case errors.Is(err, services.ErrNotBookingOwner):
		return respondError(ctx, http.StatusUnauthorized, "Booking is not assigned to you")
	case errors.Is(err, services.ErrNoBaseAmount):
		return respondError(ctx, http.StatusBadRequest, "No base amount available: set an override or link a service")
	case errors.Is(err, services.ErrNoOpenDay):
		return respondError(ctx, http.StatusBadRequest, "No open shift found")
	}

	ctx.Logger().Errorf("unexpected error: %v", err)
	return respondError(ctx, http.StatusInternalServerError, "Something went wrong")
}

// currentUser loads the authenticated user's record
func currentUser(ctx echo.Context, db *mongo.Database) (*models.User, error) {
	claims := middleware.GetUserFromToken(ctx)
	if claims == nil {
		return nil, errors.New("unauthorized")
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, err
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	var user models.User
	if err := db.Collection("users").FindOne(reqCtx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// currentDriver resolves the authenticated driver-app user to its driver record
func currentDriver(ctx echo.Context, db *mongo.Database) (*models.Driver, error) {
	user, err := currentUser(ctx, db)
	if err != nil {
		return nil, err
	}
	if user.UserType != models.UserTypeDriver || user.DriverID == nil {
		return nil, errors.New("not a driver account")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	var driver models.Driver
	if err := db.Collection("drivers").FindOne(reqCtx, bson.M{"_id": *user.DriverID}).Decode(&driver); err != nil {
		return nil, err
	}
	return &driver, nil
}

// pathID parses the :id path parameter
func pathID(ctx echo.Context) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(ctx.Param("id"))
}
