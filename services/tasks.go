// services/tasks.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/umshah583/quickway_backend/models"
)

var (
	// ErrBookingNotFound is returned when the referenced booking does not exist.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrNotBookingOwner is returned when a driver acts on a booking assigned
	// to someone else.
	ErrNotBookingOwner = errors.New("booking is not assigned to this driver")
	// ErrNoBaseAmount is returned when no cash amount can be determined: the
	// booking has no override and no linked service price.
	ErrNoBaseAmount = errors.New("no base amount available for this booking")
)

// CanStartTask checks the start-task precondition: forward-only transitions
// allow starting only from ASSIGNED.
func CanStartTask(b *models.Booking) error {
	if b.TaskStatus != models.TaskAssigned {
		return Blocked("", fmt.Sprintf("task cannot be started from status %s", b.TaskStatus))
	}
	return nil
}

// CanCompleteTask checks the complete-task precondition: the booking must be
// paid online or have its cash collected.
func CanCompleteTask(b *models.Booking) error {
	if b.TaskStatus == models.TaskCompleted {
		return Blocked("", "task is already completed")
	}
	if b.PaidOnline() || b.CashCollected {
		return nil
	}
	return Blocked(ActionCollectCash, "cannot complete until cash is collected")
}

// ResolveCashAmount determines the cash amount for a booking: the submitted
// amount, else the stored override, else the service list price.
func ResolveCashAmount(b *models.Booking, svc *models.ServiceType, req *models.CashDetailsRequest) (int64, error) {
	if req.AmountCents != nil && *req.AmountCents > 0 {
		return *req.AmountCents, nil
	}
	if b.OverrideAmountCents != nil && *b.OverrideAmountCents > 0 {
		return *b.OverrideAmountCents, nil
	}
	if svc != nil && svc.PriceCents > 0 {
		return svc.PriceCents, nil
	}
	return 0, ErrNoBaseAmount
}

// TaskService advances bookings through the driver task lifecycle:
// ASSIGNED -> IN_PROGRESS -> COMPLETED. Every operation requires the acting
// driver to own the booking.
type TaskService struct {
	DB  *mongo.Database
	Now func() time.Time
}

// NewTaskService creates a task service using the wall clock
func NewTaskService(db *mongo.Database) *TaskService {
	return &TaskService{DB: db, Now: time.Now}
}

func (s *TaskService) bookings() *mongo.Collection {
	return s.DB.Collection("bookings")
}

// ownedBooking loads the booking and enforces driver ownership.
func (s *TaskService) ownedBooking(ctx context.Context, bookingID, driverID primitive.ObjectID) (*models.Booking, error) {
	var booking models.Booking
	err := s.bookings().FindOne(ctx, bson.M{"_id": bookingID}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	if booking.DriverID == nil || *booking.DriverID != driverID {
		return nil, ErrNotBookingOwner
	}
	return &booking, nil
}

// StartTask moves an assigned booking to IN_PROGRESS and stamps the start time.
func (s *TaskService) StartTask(ctx context.Context, bookingID, driverID primitive.ObjectID) (*models.Booking, error) {
	booking, err := s.ownedBooking(ctx, bookingID, driverID)
	if err != nil {
		return nil, err
	}
	if err := CanStartTask(booking); err != nil {
		return nil, err
	}

	now := s.Now()
	update := bson.M{"$set": bson.M{
		"taskStatus":    models.TaskInProgress,
		"status":        models.BookingAssigned,
		"taskStartedAt": now,
		"updatedAt":     now,
	}}
	if _, err := s.bookings().UpdateOne(ctx, bson.M{"_id": booking.ID}, update); err != nil {
		return nil, err
	}
	return s.reload(ctx, booking.ID)
}

// SubmitCashDetails records whether cash was collected and for how much,
// clearing the settled flag. Collected cash advances the booking to PAID.
func (s *TaskService) SubmitCashDetails(ctx context.Context, bookingID, driverID primitive.ObjectID, req *models.CashDetailsRequest) (*models.Booking, error) {
	booking, err := s.ownedBooking(ctx, bookingID, driverID)
	if err != nil {
		return nil, err
	}

	var svc *models.ServiceType
	if booking.ServiceTypeID != nil {
		var st models.ServiceType
		err := s.DB.Collection("serviceTypes").FindOne(ctx, bson.M{"_id": *booking.ServiceTypeID}).Decode(&st)
		if err == nil {
			svc = &st
		}
	}

	amount, err := ResolveCashAmount(booking, svc, req)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	set := bson.M{
		"cashCollected":   req.Collected,
		"cashAmountCents": amount,
		"cashSettled":     false,
		"updatedAt":       now,
	}
	if req.Collected {
		set["status"] = models.BookingPaid
	}
	if _, err := s.bookings().UpdateOne(ctx, bson.M{"_id": booking.ID}, bson.M{"$set": set}); err != nil {
		return nil, err
	}
	return s.reload(ctx, booking.ID)
}

// CompleteTask finishes the job. Requires an online payment or collected cash.
func (s *TaskService) CompleteTask(ctx context.Context, bookingID, driverID primitive.ObjectID) (*models.Booking, error) {
	booking, err := s.ownedBooking(ctx, bookingID, driverID)
	if err != nil {
		return nil, err
	}
	if err := CanCompleteTask(booking); err != nil {
		return nil, err
	}

	now := s.Now()
	update := bson.M{"$set": bson.M{
		"taskStatus":      models.TaskCompleted,
		"status":          models.BookingPaid,
		"taskCompletedAt": now,
		"updatedAt":       now,
	}}
	if _, err := s.bookings().UpdateOne(ctx, bson.M{"_id": booking.ID}, update); err != nil {
		return nil, err
	}
	return s.reload(ctx, booking.ID)
}

func (s *TaskService) reload(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	var booking models.Booking
	if err := s.bookings().FindOne(ctx, bson.M{"_id": id}).Decode(&booking); err != nil {
		return nil, err
	}
	return &booking, nil
}
