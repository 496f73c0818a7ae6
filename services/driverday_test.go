package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/umshah583/quickway_backend/models"
)

// fakeDayStore keeps driver day records in memory for lifecycle tests.
type fakeDayStore struct {
	days      []*models.DriverDay
	cashCents int64
	unsettled int64
}

func (f *fakeDayStore) OpenDay(ctx context.Context, driverID primitive.ObjectID) (*models.DriverDay, error) {
	var best *models.DriverDay
	for _, d := range f.days {
		if d.DriverID != driverID || d.Status != models.DriverDayOpen {
			continue
		}
		if best == nil || d.Date.After(best.Date) {
			best = d
		}
	}
	return best, nil
}

func (f *fakeDayStore) DayByDate(ctx context.Context, driverID primitive.ObjectID, date time.Time) (*models.DriverDay, error) {
	for _, d := range f.days {
		if d.DriverID == driverID && d.Date.Equal(date) {
			return d, nil
		}
	}
	return nil, nil
}

func (f *fakeDayStore) DayByID(ctx context.Context, id primitive.ObjectID) (*models.DriverDay, error) {
	for _, d := range f.days {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeDayStore) InsertDay(ctx context.Context, day *models.DriverDay) error {
	f.days = append(f.days, day)
	return nil
}

func (f *fakeDayStore) CloseDay(ctx context.Context, id primitive.ObjectID, endedAt time.Time, cashCents int64, endNotes string) error {
	for _, d := range f.days {
		if d.ID != id || d.Status != models.DriverDayOpen {
			continue
		}
		ended := endedAt
		d.Status = models.DriverDayClosed
		d.EndedAt = &ended
		d.CashCollectedCents = cashCents
		d.UpdatedAt = endedAt
		if endNotes != "" {
			d.EndNotes = endNotes
		}
	}
	return nil
}

func (f *fakeDayStore) ReopenDay(ctx context.Context, id primitive.ObjectID, startedAt time.Time, startNotes string) error {
	for _, d := range f.days {
		if d.ID != id {
			continue
		}
		d.Status = models.DriverDayOpen
		d.StartedAt = startedAt
		d.EndedAt = nil
		d.EndNotes = ""
		d.UpdatedAt = startedAt
		if startNotes != "" {
			d.StartNotes = startNotes
		}
	}
	return nil
}

func (f *fakeDayStore) ShiftCashCents(ctx context.Context, driverID primitive.ObjectID, since time.Time) (int64, error) {
	return f.cashCents, nil
}

func (f *fakeDayStore) UnsettledCashCents(ctx context.Context, driverID primitive.ObjectID) (int64, error) {
	return f.unsettled, nil
}

var dayTestDriver = primitive.NewObjectID()

func dayServiceAt(store *fakeDayStore, duty *models.DutySettings, now time.Time) *DriverDayService {
	return &DriverDayService{
		Store:    store,
		Settings: StaticSettings{Duty: duty},
		Now:      func() time.Time { return now },
	}
}

func openDayOn(date time.Time) *models.DriverDay {
	return &models.DriverDay{
		ID:        primitive.NewObjectID(),
		DriverID:  dayTestDriver,
		Date:      date,
		Status:    models.DriverDayOpen,
		StartedAt: date.Add(9 * time.Hour),
	}
}

func TestStartBlockedByPreviousOpenDay(t *testing.T) {
	yesterday := testDate.AddDate(0, 0, -1)
	store := &fakeDayStore{days: []*models.DriverDay{openDayOn(yesterday)}}
	// No duty windows: the open day never goes stale on its own.
	svc := dayServiceAt(store, nil, at(10, 0))

	_, err := svc.Start(context.Background(), dayTestDriver, "", false)

	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("Start returned %v, want BlockedError", err)
	}
	if blocked.Action != ActionEndPreviousDay {
		t.Errorf("action = %q, want %q", blocked.Action, ActionEndPreviousDay)
	}
	if blocked.Data["previousDay"] == nil {
		t.Error("blocked error carries no previousDay payload")
	}
	if store.days[0].Status != models.DriverDayOpen {
		t.Error("previous day must stay open until ended explicitly")
	}
}

func TestStartOutsideDutyWindow(t *testing.T) {
	store := &fakeDayStore{}
	duty := &models.DutySettings{Start: "08:00", End: "18:00"}
	svc := dayServiceAt(store, duty, at(6, 0))

	_, err := svc.Start(context.Background(), dayTestDriver, "", false)

	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("Start returned %v, want BlockedError", err)
	}
	if blocked.Action != ActionWaitForDutyWindow {
		t.Errorf("action = %q, want %q", blocked.Action, ActionWaitForDutyWindow)
	}
	next, ok := blocked.Data["nextDutyWindowStart"].(time.Time)
	if !ok || !next.Equal(at(8, 0)) {
		t.Errorf("nextDutyWindowStart = %v, want %v", blocked.Data["nextDutyWindowStart"], at(8, 0))
	}
	if len(store.days) != 0 {
		t.Error("no day record may be created while off duty")
	}
}

func TestStartAutoClosesStalePreviousDay(t *testing.T) {
	yesterday := testDate.AddDate(0, 0, -1)
	prev := openDayOn(yesterday)
	store := &fakeDayStore{days: []*models.DriverDay{prev}, cashCents: 4500}
	// Yesterday's window ended 18:00 yesterday, long before now.
	duty := &models.DutySettings{Start: "08:00", End: "18:00"}
	svc := dayServiceAt(store, duty, at(10, 0))

	day, err := svc.Start(context.Background(), dayTestDriver, "opening up", false)
	if err != nil {
		t.Fatalf("Start returned %v", err)
	}

	if prev.Status != models.DriverDayClosed {
		t.Error("stale previous day was not auto-closed")
	}
	if prev.EndNotes != models.AutoEndNote {
		t.Errorf("auto-closed end notes = %q, want %q", prev.EndNotes, models.AutoEndNote)
	}
	if prev.CashCollectedCents != 4500 {
		t.Errorf("auto-closed cash = %d, want 4500", prev.CashCollectedCents)
	}
	if !day.Date.Equal(testDate) || day.Status != models.DriverDayOpen {
		t.Errorf("new day = %v/%s, want today OPEN", day.Date, day.Status)
	}
	if day.StartNotes != "opening up" {
		t.Errorf("start notes = %q", day.StartNotes)
	}
}

func TestStartTodayAlreadyOpen(t *testing.T) {
	store := &fakeDayStore{days: []*models.DriverDay{openDayOn(testDate)}}
	svc := dayServiceAt(store, nil, at(10, 0))

	_, err := svc.Start(context.Background(), dayTestDriver, "", false)

	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("Start returned %v, want BlockedError", err)
	}
	if blocked.Action != "" {
		t.Errorf("unexpected action tag %q", blocked.Action)
	}
}

func TestStartAfterTodayClosed(t *testing.T) {
	endedAt := at(12, 0)
	closed := &models.DriverDay{
		ID:        primitive.NewObjectID(),
		DriverID:  dayTestDriver,
		Date:      testDate,
		Status:    models.DriverDayClosed,
		StartedAt: at(9, 0),
		EndedAt:   &endedAt,
		EndNotes:  "lunch",
	}
	store := &fakeDayStore{days: []*models.DriverDay{closed}}
	svc := dayServiceAt(store, nil, at(14, 0))

	// Without confirmation the restart is refused with the closed record.
	_, err := svc.Start(context.Background(), dayTestDriver, "", false)
	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("Start returned %v, want BlockedError", err)
	}
	if blocked.Action != ActionDayAlreadyClosed {
		t.Errorf("action = %q, want %q", blocked.Action, ActionDayAlreadyClosed)
	}
	if blocked.Data["driverDay"] == nil {
		t.Error("blocked error carries no driverDay payload")
	}

	// Confirming re-opens the same record rather than creating a second one.
	day, err := svc.Start(context.Background(), dayTestDriver, "back on", true)
	if err != nil {
		t.Fatalf("confirmed Start returned %v", err)
	}
	if day.ID != closed.ID {
		t.Error("confirmed restart must reuse the existing record")
	}
	if day.Status != models.DriverDayOpen || day.EndedAt != nil || day.EndNotes != "" {
		t.Errorf("reopened day = %s/%v/%q, want OPEN with cleared end fields",
			day.Status, day.EndedAt, day.EndNotes)
	}
	if !day.StartedAt.Equal(at(14, 0)) {
		t.Errorf("reopened startedAt = %v, want %v", day.StartedAt, at(14, 0))
	}
	if len(store.days) != 1 {
		t.Errorf("store holds %d records for today, want 1", len(store.days))
	}
}

func TestEndClosesMostRecentOpenDay(t *testing.T) {
	older := openDayOn(testDate.AddDate(0, 0, -2))
	newer := openDayOn(testDate.AddDate(0, 0, -1))
	store := &fakeDayStore{days: []*models.DriverDay{older, newer}, cashCents: 1200}
	svc := dayServiceAt(store, nil, at(10, 0))

	day, err := svc.End(context.Background(), dayTestDriver, "done")
	if err != nil {
		t.Fatalf("End returned %v", err)
	}

	if day.ID != newer.ID {
		t.Error("End must target the most recent open record")
	}
	if newer.Status != models.DriverDayClosed || newer.EndNotes != "done" {
		t.Errorf("closed day = %s/%q", newer.Status, newer.EndNotes)
	}
	if newer.CashCollectedCents != 1200 {
		t.Errorf("cash collected = %d, want 1200", newer.CashCollectedCents)
	}
	if older.Status != models.DriverDayOpen {
		t.Error("older open record must be untouched")
	}
}

func TestEndWithoutOpenDay(t *testing.T) {
	svc := dayServiceAt(&fakeDayStore{}, nil, at(10, 0))

	_, err := svc.End(context.Background(), dayTestDriver, "")
	if !errors.Is(err, ErrNoOpenDay) {
		t.Errorf("End returned %v, want ErrNoOpenDay", err)
	}
}

func TestQueryReportsPreviousOpenDay(t *testing.T) {
	yesterday := testDate.AddDate(0, 0, -1)
	prev := openDayOn(yesterday)

	t.Run("no record for today", func(t *testing.T) {
		store := &fakeDayStore{days: []*models.DriverDay{prev}, unsettled: 900}
		svc := dayServiceAt(store, nil, at(10, 0))

		status, err := svc.Query(context.Background(), dayTestDriver, at(10, 0))
		if err != nil {
			t.Fatalf("Query returned %v", err)
		}
		if status.DriverDay != nil {
			t.Error("no record exists for today")
		}
		if status.PreviousDayOpen == nil || status.PreviousDayOpen.ID != prev.ID {
			t.Fatal("previous open day not reported")
		}
		if status.RequiresAction != ActionEndPreviousDay {
			t.Errorf("requiresAction = %q, want %q", status.RequiresAction, ActionEndPreviousDay)
		}
		if status.UnsettledCents != 900 {
			t.Errorf("unsettledCents = %d, want 900", status.UnsettledCents)
		}
	})

	t.Run("today already closed", func(t *testing.T) {
		endedAt := at(12, 0)
		closed := &models.DriverDay{
			ID:        primitive.NewObjectID(),
			DriverID:  dayTestDriver,
			Date:      testDate,
			Status:    models.DriverDayClosed,
			StartedAt: at(9, 0),
			EndedAt:   &endedAt,
		}
		store := &fakeDayStore{days: []*models.DriverDay{prev, closed}}
		svc := dayServiceAt(store, nil, at(14, 0))

		status, err := svc.Query(context.Background(), dayTestDriver, at(14, 0))
		if err != nil {
			t.Fatalf("Query returned %v", err)
		}
		if status.DriverDay == nil || status.DriverDay.ID != closed.ID {
			t.Fatal("today's record not returned")
		}
		if status.PreviousDayOpen == nil || status.PreviousDayOpen.ID != prev.ID {
			t.Error("lingering previous open day must be reported alongside today's record")
		}
		if status.RequiresAction != ActionEndPreviousDay {
			t.Errorf("requiresAction = %q, want %q", status.RequiresAction, ActionEndPreviousDay)
		}
	})
}

func TestQueryAutoClosesStaleDay(t *testing.T) {
	yesterday := testDate.AddDate(0, 0, -1)
	prev := openDayOn(yesterday)
	store := &fakeDayStore{days: []*models.DriverDay{prev}, cashCents: 2500}
	duty := &models.DutySettings{Start: "08:00", End: "18:00"}
	svc := dayServiceAt(store, duty, at(10, 0))

	status, err := svc.Query(context.Background(), dayTestDriver, at(10, 0))
	if err != nil {
		t.Fatalf("Query returned %v", err)
	}

	if prev.Status != models.DriverDayClosed {
		t.Error("stale open day was not auto-closed by Query")
	}
	if prev.EndNotes != models.AutoEndNote {
		t.Errorf("end notes = %q, want %q", prev.EndNotes, models.AutoEndNote)
	}
	if prev.CashCollectedCents != 2500 {
		t.Errorf("cash collected = %d, want 2500", prev.CashCollectedCents)
	}
	if status.PreviousDayOpen != nil || status.RequiresAction != "" {
		t.Error("auto-closed day must not be reported as requiring action")
	}
	if !status.OnDuty {
		t.Error("10:00 falls inside the 08:00-18:00 window")
	}
}
