package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/umshah583/quickway_backend/middleware"
	"github.com/umshah583/quickway_backend/models"
	"github.com/umshah583/quickway_backend/services"
	"github.com/umshah583/quickway_backend/websocket"
)

// DriverDayController handles the driver shift lifecycle endpoint
type DriverDayController struct {
	db      *mongo.Database
	days    *services.DriverDayService
	hub     *websocket.Hub
	metrics *middleware.Metrics
}

// NewDriverDayController creates a new driver day controller
func NewDriverDayController(db *mongo.Database, days *services.DriverDayService, hub *websocket.Hub, metrics *middleware.Metrics) *DriverDayController {
	return &DriverDayController{db: db, days: days, hub: hub, metrics: metrics}
}

// GetDay returns the driver's day status for today or for ?date=YYYY-MM-DD.
// ?test=true answers with a connectivity echo and ?status=true with the raw
// record, both without side effects beyond the stale-day sweep.
func (c *DriverDayController) GetDay(ctx echo.Context) error {
	if ctx.QueryParam("test") == "true" {
		return ctx.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "Driver day endpoint reachable",
			Data:    map[string]interface{}{"time": time.Now()},
		})
	}

	driver, err := currentDriver(ctx, c.db)
	if err != nil {
		return respondError(ctx, http.StatusUnauthorized, "Driver account required")
	}

	target := time.Now()
	if raw := ctx.QueryParam("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		}
		target = parsed
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	status, err := c.days.Query(reqCtx, driver.ID, target)
	if err != nil {
		return respondBlocked(ctx, err)
	}

	if ctx.QueryParam("status") == "true" {
		return ctx.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "Driver day record",
			Data:    status.DriverDay,
		})
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Driver day status",
		Data:    status,
	})
}

// PostDay starts or ends the driver's shift
func (c *DriverDayController) PostDay(ctx echo.Context) error {
	driver, err := currentDriver(ctx, c.db)
	if err != nil {
		return respondError(ctx, http.StatusUnauthorized, "Driver account required")
	}

	var req models.DriverDayActionRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request")
	}
	if err := ctx.Validate(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Action is required")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	switch req.Action {
	case "start":
		day, err := c.days.Start(reqCtx, driver.ID, req.Notes, req.Confirm)
		if err != nil {
			return respondBlocked(ctx, err)
		}
		if c.metrics != nil {
			c.metrics.DayStarts.Inc()
		}
		if c.hub != nil {
			c.hub.Broadcast(websocket.Event{
				Type:    websocket.EventDayStarted,
				Message: driver.FullName + " started their shift",
				Data:    day,
			})
		}
		return ctx.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "Shift started",
			Data:    day,
		})

	case "end":
		day, err := c.days.End(reqCtx, driver.ID, req.Notes)
		if err != nil {
			return respondBlocked(ctx, err)
		}
		if c.metrics != nil {
			c.metrics.DayEnds.Inc()
		}
		if c.hub != nil {
			c.hub.Broadcast(websocket.Event{
				Type:    websocket.EventDayEnded,
				Message: driver.FullName + " ended their shift",
				Data:    day,
			})
		}
		return ctx.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "Shift ended",
			Data:    day,
		})

	default:
		return respondError(ctx, http.StatusBadRequest, "Unknown action, expected start or end")
	}
}
