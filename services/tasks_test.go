package services

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/umshah583/quickway_backend/models"
)

func cents(v int64) *int64 { return &v }

func TestCanStartTask(t *testing.T) {
	tests := []struct {
		status  string
		wantErr bool
	}{
		{models.TaskAssigned, false},
		{models.TaskInProgress, true},
		{models.TaskCompleted, true},
	}
	for _, tt := range tests {
		b := &models.Booking{TaskStatus: tt.status}
		err := CanStartTask(b)
		if (err != nil) != tt.wantErr {
			t.Errorf("CanStartTask(%s) err = %v, wantErr %v", tt.status, err, tt.wantErr)
		}
	}
}

func TestCanCompleteTask(t *testing.T) {
	now := time.Now()

	t.Run("no payment and no cash is blocked with COLLECT_CASH", func(t *testing.T) {
		b := &models.Booking{TaskStatus: models.TaskInProgress}
		err := CanCompleteTask(b)
		if err == nil {
			t.Fatal("expected error")
		}
		var blocked *BlockedError
		if !errors.As(err, &blocked) {
			t.Fatalf("expected BlockedError, got %T", err)
		}
		if blocked.Action != ActionCollectCash {
			t.Errorf("Action = %q, want %q", blocked.Action, ActionCollectCash)
		}
	})

	t.Run("cash collected allows completion", func(t *testing.T) {
		b := &models.Booking{TaskStatus: models.TaskInProgress, CashCollected: true}
		if err := CanCompleteTask(b); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("online payment allows completion", func(t *testing.T) {
		b := &models.Booking{
			TaskStatus: models.TaskInProgress,
			Payment:    &models.OnlinePayment{Status: models.PaymentPaid, AmountCents: 5000, PaidAt: &now},
		}
		if err := CanCompleteTask(b); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("already completed is blocked", func(t *testing.T) {
		b := &models.Booking{TaskStatus: models.TaskCompleted, CashCollected: true}
		if err := CanCompleteTask(b); err == nil {
			t.Error("expected error")
		}
	})
}

func TestResolveCashAmount(t *testing.T) {
	svc := &models.ServiceType{PriceCents: 4500}

	tests := []struct {
		name    string
		booking models.Booking
		svc     *models.ServiceType
		req     models.CashDetailsRequest
		want    int64
		wantErr error
	}{
		{
			name:    "submitted amount wins",
			booking: models.Booking{OverrideAmountCents: cents(3000)},
			svc:     svc,
			req:     models.CashDetailsRequest{Collected: true, AmountCents: cents(2500)},
			want:    2500,
		},
		{
			name:    "override beats service price",
			booking: models.Booking{OverrideAmountCents: cents(3000)},
			svc:     svc,
			req:     models.CashDetailsRequest{Collected: true},
			want:    3000,
		},
		{
			name:    "service list price as fallback",
			booking: models.Booking{},
			svc:     svc,
			req:     models.CashDetailsRequest{Collected: true},
			want:    4500,
		},
		{
			name:    "no base amount anywhere",
			booking: models.Booking{},
			svc:     nil,
			req:     models.CashDetailsRequest{Collected: true},
			wantErr: ErrNoBaseAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveCashAmount(&tt.booking, tt.svc, &tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("amount = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCashCollectedSince(t *testing.T) {
	shiftStart := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	before := shiftStart.Add(-time.Hour)
	during := shiftStart.Add(time.Hour)

	bookings := []models.Booking{
		{ID: primitive.NewObjectID(), CashCollected: true, CashAmountCents: 5000, TaskCompletedAt: &during},
		{ID: primitive.NewObjectID(), CashCollected: true, CashAmountCents: 3000, TaskCompletedAt: &before},   // before shift
		{ID: primitive.NewObjectID(), CashCollected: false, CashAmountCents: 9000, TaskCompletedAt: &during},  // not collected
		{ID: primitive.NewObjectID(), CashCollected: true, CashAmountCents: 2000, TaskCompletedAt: &shiftStart}, // boundary counts
		{ID: primitive.NewObjectID(), CashCollected: true, CashAmountCents: 1000},                             // never completed
	}

	if got := CashCollectedSince(bookings, shiftStart); got != 7000 {
		t.Errorf("CashCollectedSince = %d, want 7000", got)
	}
}

func TestMidnight(t *testing.T) {
	in := time.Date(2026, 3, 10, 17, 42, 9, 123, time.UTC)
	want := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if got := Midnight(in); !got.Equal(want) {
		t.Errorf("Midnight = %v, want %v", got, want)
	}
}
