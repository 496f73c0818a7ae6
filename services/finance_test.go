package services

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/umshah583/quickway_backend/models"
)

func pct(v float64) *float64 { return &v }

func cashBooking(amountCents int64, settled bool) models.Booking {
	return models.Booking{
		ID:              primitive.NewObjectID(),
		CashCollected:   true,
		CashAmountCents: amountCents,
		CashSettled:     settled,
	}
}

func onlineBooking(amountCents int64, status string) models.Booking {
	now := time.Now()
	return models.Booking{
		ID: primitive.NewObjectID(),
		Payment: &models.OnlinePayment{
			Status:      status,
			AmountCents: amountCents,
			PaidAt:      &now,
		},
	}
}

func TestRoundHalfAway(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{0, 0},
		{1.4, 1},
		{1.5, 2},
		{2.5, 3},
		{-1.5, -2},
		{-1.4, -1},
		{99.999, 100},
	}
	for _, tt := range tests {
		if got := RoundHalfAway(tt.in); got != tt.want {
			t.Errorf("RoundHalfAway(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEffectiveCommission(t *testing.T) {
	tests := []struct {
		name       string
		override   *float64
		defaultPct float64
		want       float64
	}{
		{"nil override falls back to default", nil, 30, 30},
		{"zero override falls back to default", pct(0), 30, 30},
		{"negative override falls back to default", pct(-5), 30, 30},
		{"positive override wins", pct(45), 30, 45},
		{"override clamped to 100", pct(150), 30, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &models.Partner{CommissionPercentage: tt.override}
			if got := EffectiveCommission(p, tt.defaultPct); got != tt.want {
				t.Errorf("EffectiveCommission = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNetBase(t *testing.T) {
	fin := FinanceSettings{TaxPercent: 10, GatewayFeePercent: 2, GatewayFixedFeeCents: 50}

	t.Run("cash reverses only tax", func(t *testing.T) {
		b := cashBooking(11000, true)
		got := NetBase(&b, fin)
		want := 11000.0 / 1.10
		if diff := got - want; diff > 0.001 || diff < -0.001 {
			t.Errorf("NetBase = %v, want %v", got, want)
		}
	})

	t.Run("online reverses tax and gateway with fixed fee before division", func(t *testing.T) {
		b := onlineBooking(11250, models.PaymentPaid)
		got := NetBase(&b, fin)
		want := (11250.0 - 50) / 1.12
		if diff := got - want; diff > 0.001 || diff < -0.001 {
			t.Errorf("NetBase = %v, want %v", got, want)
		}
	})

	t.Run("uncollected booking contributes zero", func(t *testing.T) {
		b := models.Booking{ID: primitive.NewObjectID()}
		if got := NetBase(&b, fin); got != 0 {
			t.Errorf("NetBase = %v, want 0", got)
		}
	})
}

func TestComputeSnapshot_CommissionOnGross(t *testing.T) {
	// With zero tax/fee configuration the net contribution is exactly
	// round(G * C / 100).
	partner := &models.Partner{ID: primitive.NewObjectID(), CommissionPercentage: pct(35)}
	bookings := []models.Booking{cashBooking(5001, true)}

	snap := ComputeSnapshot(partner, bookings, 0, 20, FinanceSettings{})
	want := RoundHalfAway(5001 * 35.0 / 100)
	if snap.TotalNetEarningsCents != want {
		t.Errorf("TotalNetEarningsCents = %d, want %d", snap.TotalNetEarningsCents, want)
	}
}

func TestComputeSnapshot_ZeroCommissionUsesDefault(t *testing.T) {
	// A stored commission of exactly 0 means "unset": the platform default
	// applies, not zero.
	partner := &models.Partner{ID: primitive.NewObjectID(), CommissionPercentage: pct(0)}
	bookings := []models.Booking{cashBooking(10000, true)}

	snap := ComputeSnapshot(partner, bookings, 0, 25, FinanceSettings{})
	if snap.TotalNetEarningsCents != 2500 {
		t.Errorf("TotalNetEarningsCents = %d, want 2500 (default commission)", snap.TotalNetEarningsCents)
	}
	if snap.CommissionPercentage != 25 {
		t.Errorf("CommissionPercentage = %v, want 25", snap.CommissionPercentage)
	}
}

func TestComputeSnapshot_Buckets(t *testing.T) {
	partner := &models.Partner{ID: primitive.NewObjectID(), CommissionPercentage: pct(50)}
	bookings := []models.Booking{
		cashBooking(3000, false),                    // pending, not settled -> no earnings
		cashBooking(2000, true),                     // settled cash
		onlineBooking(4000, models.PaymentPaid),     // paid invoice
		onlineBooking(1500, models.PaymentPending),  // pending invoice
	}

	snap := ComputeSnapshot(partner, bookings, 0, 0, FinanceSettings{})

	if snap.CashPendingCents != 3000 {
		t.Errorf("CashPendingCents = %d, want 3000", snap.CashPendingCents)
	}
	if snap.CashSettledCents != 2000 {
		t.Errorf("CashSettledCents = %d, want 2000", snap.CashSettledCents)
	}
	if snap.InvoicesPaidCents != 4000 {
		t.Errorf("InvoicesPaidCents = %d, want 4000", snap.InvoicesPaidCents)
	}
	if snap.InvoicesPendingCents != 1500 {
		t.Errorf("InvoicesPendingCents = %d, want 1500", snap.InvoicesPendingCents)
	}
	// Only the settled cash and the paid invoice earn: 50% of 2000+4000.
	if snap.TotalNetEarningsCents != 3000 {
		t.Errorf("TotalNetEarningsCents = %d, want 3000", snap.TotalNetEarningsCents)
	}
	if snap.BookingCount != 4 {
		t.Errorf("BookingCount = %d, want 4", snap.BookingCount)
	}
}

func TestComputeSnapshot_Outstanding(t *testing.T) {
	partner := &models.Partner{ID: primitive.NewObjectID(), CommissionPercentage: pct(50)}
	bookings := []models.Booking{cashBooking(10000, true)} // earns 5000

	tests := []struct {
		name    string
		payouts int64
		want    int64
	}{
		{"partial payout", 2000, 3000},
		{"exact payout", 5000, 0},
		{"over-payout never negative", 9000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := ComputeSnapshot(partner, bookings, tt.payouts, 0, FinanceSettings{})
			if snap.OutstandingCents != tt.want {
				t.Errorf("OutstandingCents = %d, want %d", snap.OutstandingCents, tt.want)
			}
		})
	}
}

func TestComputeSnapshot_DeduplicatesByID(t *testing.T) {
	partner := &models.Partner{ID: primitive.NewObjectID(), CommissionPercentage: pct(50)}
	b := cashBooking(10000, true)
	// Same booking reached directly and through a driver.
	snap := ComputeSnapshot(partner, []models.Booking{b, b}, 0, 0, FinanceSettings{})

	if snap.BookingCount != 1 {
		t.Errorf("BookingCount = %d, want 1", snap.BookingCount)
	}
	if snap.TotalNetEarningsCents != 5000 {
		t.Errorf("TotalNetEarningsCents = %d, want 5000", snap.TotalNetEarningsCents)
	}
}
