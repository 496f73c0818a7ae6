// services/driverday.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/umshah583/quickway_backend/models"
)

// ErrNoOpenDay is returned by End when the driver has no open shift anywhere.
var ErrNoOpenDay = errors.New("no open shift found")

// Midnight normalizes a time to the start of its calendar date.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CashCollectedSince sums cashAmountCents over bookings with collected cash
// completed at or after the shift start.
func CashCollectedSince(bookings []models.Booking, since time.Time) int64 {
	var total int64
	for i := range bookings {
		b := &bookings[i]
		if !b.CashCollected || b.TaskCompletedAt == nil {
			continue
		}
		if b.TaskCompletedAt.Before(since) {
			continue
		}
		total += b.CashAmountCents
	}
	return total
}

// DayStore is the persistence surface the day lifecycle runs against.
// Lookups return nil without error when no record matches.
type DayStore interface {
	OpenDay(ctx context.Context, driverID primitive.ObjectID) (*models.DriverDay, error)
	DayByDate(ctx context.Context, driverID primitive.ObjectID, date time.Time) (*models.DriverDay, error)
	DayByID(ctx context.Context, id primitive.ObjectID) (*models.DriverDay, error)
	InsertDay(ctx context.Context, day *models.DriverDay) error
	CloseDay(ctx context.Context, id primitive.ObjectID, endedAt time.Time, cashCents int64, endNotes string) error
	ReopenDay(ctx context.Context, id primitive.ObjectID, startedAt time.Time, startNotes string) error
	ShiftCashCents(ctx context.Context, driverID primitive.ObjectID, since time.Time) (int64, error)
	UnsettledCashCents(ctx context.Context, driverID primitive.ObjectID) (int64, error)
}

// DriverDayService runs the per-driver day lifecycle: NONE -> OPEN -> CLOSED.
// The one-OPEN-day invariant is backed by the unique (driverId, date) index
// plus sequential read-then-write in each operation.
type DriverDayService struct {
	Store    DayStore
	Settings SettingsProvider
	Now      func() time.Time
}

// NewDriverDayService creates a driver day service using the wall clock
func NewDriverDayService(db *mongo.Database, settings SettingsProvider) *DriverDayService {
	return &DriverDayService{Store: &mongoDayStore{db: db}, Settings: settings, Now: time.Now}
}

// stale reports whether an OPEN day should auto-close: its duty windows,
// recomputed for the record's own date, have a last end already in the past.
// A driver with no windows is never considered stale.
func (s *DriverDayService) stale(ctx context.Context, day *models.DriverDay, now time.Time) bool {
	windows := ComputeDutyWindows(s.Settings.DutySettings(ctx, day.DriverID), day.Date)
	lastEnd := LastWindowEnd(windows)
	return !lastEnd.IsZero() && lastEnd.Before(now)
}

// autoClose closes a stale OPEN day with the auto-end note and the cash
// collected during the shift.
func (s *DriverDayService) autoClose(ctx context.Context, day *models.DriverDay, now time.Time) error {
	cash, err := s.Store.ShiftCashCents(ctx, day.DriverID, day.StartedAt)
	if err != nil {
		return err
	}
	return s.Store.CloseDay(ctx, day.ID, now, cash, models.AutoEndNote)
}

// Query reads the driver's day for the target date, auto-closing stale OPEN
// records first. An unclosed prior-date record that is not yet stale is
// reported with the END_PREVIOUS_DAY tag whether or not the target date has
// a record of its own.
func (s *DriverDayService) Query(ctx context.Context, driverID primitive.ObjectID, target time.Time) (*models.DriverDayStatus, error) {
	now := s.Now()
	target = Midnight(target)

	// Sweep stale OPEN records first, whatever their date.
	if open, err := s.Store.OpenDay(ctx, driverID); err != nil {
		return nil, err
	} else if open != nil && s.stale(ctx, open, now) {
		if err := s.autoClose(ctx, open, now); err != nil {
			return nil, err
		}
	}

	status := &models.DriverDayStatus{}

	day, err := s.Store.DayByDate(ctx, driverID, target)
	if err != nil {
		return nil, err
	}
	status.DriverDay = day

	// A surviving OPEN record from an earlier date blocks starting a new
	// day, so surface it even when the target date already has a record.
	open, err := s.Store.OpenDay(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if open != nil && open.Date.Before(target) {
		status.PreviousDayOpen = open
		status.RequiresAction = ActionEndPreviousDay
	}

	windows := ComputeDutyWindows(s.Settings.DutySettings(ctx, driverID), target)
	status.DutyWindows = windows
	status.OnDuty = IsWithinDutyWindow(now, windows)

	unsettled, err := s.Store.UnsettledCashCents(ctx, driverID)
	if err != nil {
		return nil, err
	}
	status.UnsettledCents = unsettled

	return status, nil
}

// Start opens today's shift. Blocked when an earlier-date OPEN record remains,
// when today was already closed (unless confirmed, which re-opens the record)
// or when the current time is outside every duty window.
func (s *DriverDayService) Start(ctx context.Context, driverID primitive.ObjectID, notes string, confirm bool) (*models.DriverDay, error) {
	now := s.Now()
	today := Midnight(now)

	open, err := s.Store.OpenDay(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if open != nil && open.Date.Before(today) {
		if s.stale(ctx, open, now) {
			if err := s.autoClose(ctx, open, now); err != nil {
				return nil, err
			}
		} else {
			blocked := Blocked(ActionEndPreviousDay, "A previous shift is still open and must be ended first")
			blocked.Data = map[string]interface{}{"previousDay": open}
			return nil, blocked
		}
	}

	windows := ComputeDutyWindows(s.Settings.DutySettings(ctx, driverID), today)
	if !IsWithinDutyWindow(now, windows) {
		blocked := Blocked(ActionWaitForDutyWindow, "Current time is outside your duty schedule")
		if next := NextWindowStart(now, windows); !next.IsZero() {
			blocked.Data = map[string]interface{}{"nextDutyWindowStart": next}
		}
		return nil, blocked
	}

	existing, err := s.Store.DayByDate(ctx, driverID, today)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Status == models.DriverDayOpen {
			return nil, Blocked("", "A shift is already open for today")
		}
		if !confirm {
			blocked := Blocked(ActionDayAlreadyClosed, "Today's shift was already ended; confirm to start again")
			blocked.Data = map[string]interface{}{"driverDay": existing}
			return nil, blocked
		}
		// Re-open the closed record. The unique (driverId, date) index allows
		// only one record per date, so a confirmed restart continues it.
		if err := s.Store.ReopenDay(ctx, existing.ID, now, notes); err != nil {
			return nil, err
		}
		return s.Store.DayByID(ctx, existing.ID)
	}

	day := models.DriverDay{
		ID:         primitive.NewObjectID(),
		DriverID:   driverID,
		Date:       today,
		Status:     models.DriverDayOpen,
		StartedAt:  now,
		StartNotes: notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Store.InsertDay(ctx, &day); err != nil {
		return nil, fmt.Errorf("failed to create driver day: %w", err)
	}
	return &day, nil
}

// End closes the driver's most recent OPEN record regardless of its date,
// recording the cash collected during the shift.
func (s *DriverDayService) End(ctx context.Context, driverID primitive.ObjectID, notes string) (*models.DriverDay, error) {
	now := s.Now()

	open, err := s.Store.OpenDay(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, ErrNoOpenDay
	}

	cash, err := s.Store.ShiftCashCents(ctx, driverID, open.StartedAt)
	if err != nil {
		return nil, err
	}

	if err := s.Store.CloseDay(ctx, open.ID, now, cash, notes); err != nil {
		return nil, err
	}
	return s.Store.DayByID(ctx, open.ID)
}

// mongoDayStore is the production DayStore over the driverDays and bookings
// collections.
type mongoDayStore struct {
	db *mongo.Database
}

func (m *mongoDayStore) days() *mongo.Collection {
	return m.db.Collection("driverDays")
}

// OpenDay finds the driver's most recent OPEN record regardless of date.
func (m *mongoDayStore) OpenDay(ctx context.Context, driverID primitive.ObjectID) (*models.DriverDay, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}})
	var day models.DriverDay
	err := m.days().FindOne(ctx, bson.M{
		"driverId": driverID,
		"status":   models.DriverDayOpen,
	}, opts).Decode(&day)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &day, nil
}

func (m *mongoDayStore) DayByDate(ctx context.Context, driverID primitive.ObjectID, date time.Time) (*models.DriverDay, error) {
	var day models.DriverDay
	err := m.days().FindOne(ctx, bson.M{"driverId": driverID, "date": date}).Decode(&day)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &day, nil
}

func (m *mongoDayStore) DayByID(ctx context.Context, id primitive.ObjectID) (*models.DriverDay, error) {
	var day models.DriverDay
	if err := m.days().FindOne(ctx, bson.M{"_id": id}).Decode(&day); err != nil {
		return nil, err
	}
	return &day, nil
}

func (m *mongoDayStore) InsertDay(ctx context.Context, day *models.DriverDay) error {
	_, err := m.days().InsertOne(ctx, day)
	return err
}

// CloseDay marks an OPEN record CLOSED. The status filter keeps a concurrent
// close from overwriting an already-ended shift.
func (m *mongoDayStore) CloseDay(ctx context.Context, id primitive.ObjectID, endedAt time.Time, cashCents int64, endNotes string) error {
	set := bson.M{
		"status":             models.DriverDayClosed,
		"endedAt":            endedAt,
		"cashCollectedCents": cashCents,
		"updatedAt":          endedAt,
	}
	if endNotes != "" {
		set["endNotes"] = endNotes
	}
	_, err := m.days().UpdateOne(ctx,
		bson.M{"_id": id, "status": models.DriverDayOpen},
		bson.M{"$set": set})
	return err
}

func (m *mongoDayStore) ReopenDay(ctx context.Context, id primitive.ObjectID, startedAt time.Time, startNotes string) error {
	set := bson.M{
		"status":    models.DriverDayOpen,
		"startedAt": startedAt,
		"endedAt":   nil,
		"endNotes":  "",
		"updatedAt": startedAt,
	}
	if startNotes != "" {
		set["startNotes"] = startNotes
	}
	_, err := m.days().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

// ShiftCashCents computes the cash collected during a shift started at the
// given time.
func (m *mongoDayStore) ShiftCashCents(ctx context.Context, driverID primitive.ObjectID, since time.Time) (int64, error) {
	cursor, err := m.db.Collection("bookings").Find(ctx, bson.M{
		"driverId":        driverID,
		"cashCollected":   true,
		"taskCompletedAt": bson.M{"$gte": since},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to load shift bookings: %w", err)
	}
	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return 0, err
	}
	return CashCollectedSince(bookings, since), nil
}

// UnsettledCashCents computes cash the driver has collected but not yet
// settled, across all bookings.
func (m *mongoDayStore) UnsettledCashCents(ctx context.Context, driverID primitive.ObjectID) (int64, error) {
	cursor, err := m.db.Collection("bookings").Find(ctx, bson.M{
		"driverId":      driverID,
		"cashCollected": true,
		"cashSettled":   false,
	})
	if err != nil {
		return 0, err
	}
	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return 0, err
	}
	var total int64
	for _, b := range bookings {
		total += b.CashAmountCents
	}
	return total, nil
}
