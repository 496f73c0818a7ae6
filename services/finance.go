// services/finance.go
package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/umshah583/quickway_backend/models"
)

// RoundHalfAway rounds to the nearest integer cent, halves away from zero.
func RoundHalfAway(v float64) int64 {
	if v >= 0 {
		return int64(math.Floor(v + 0.5))
	}
	return int64(math.Ceil(v - 0.5))
}

// ClampPercent clamps a percentage to [0,100].
func ClampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// GrossCents is the gross value of a booking: the online payment amount when
// paid, else the cash amount when collected, else zero.
func GrossCents(b *models.Booking) int64 {
	if b.PaidOnline() {
		return b.Payment.AmountCents
	}
	if b.CashCollected {
		return b.CashAmountCents
	}
	return 0
}

// IsSettled reports whether the booking's revenue has actually reached the
// business: online payment PAID, or cash collected and handed over.
func IsSettled(b *models.Booking) bool {
	if b.PaidOnline() {
		return true
	}
	return b.CashCollected && b.CashSettled
}

// NetBase reverses the configured tax (all bookings) and the payment gateway
// percentage plus fixed fee (online payments only) out of the gross figure.
// The fixed fee is subtracted before division.
func NetBase(b *models.Booking, fin FinanceSettings) float64 {
	gross := float64(GrossCents(b))
	if gross == 0 {
		return 0
	}
	if b.PaidOnline() {
		gross -= float64(fin.GatewayFixedFeeCents)
		if gross < 0 {
			gross = 0
		}
		return gross / (1 + (ClampPercent(fin.TaxPercent)+ClampPercent(fin.GatewayFeePercent))/100)
	}
	return gross / (1 + ClampPercent(fin.TaxPercent)/100)
}

// EffectiveCommission resolves the commission percentage for a partner. An
// unset or non-positive override falls back to the platform default: a stored
// zero means "not configured", never a zero-commission partner.
func EffectiveCommission(partner *models.Partner, defaultPercent float64) float64 {
	if partner.CommissionPercentage != nil && *partner.CommissionPercentage > 0 {
		return ClampPercent(*partner.CommissionPercentage)
	}
	return ClampPercent(defaultPercent)
}

// ComputeSnapshot aggregates a partner's bookings and payouts into the
// financial snapshot shown on admin and partner financial pages. Bookings are
// deduplicated by id; money is integer cents throughout.
func ComputeSnapshot(partner *models.Partner, bookings []models.Booking, payoutsTotalCents int64, defaultCommission float64, fin FinanceSettings) models.PartnerFinancials {
	commission := EffectiveCommission(partner, defaultCommission)

	snap := models.PartnerFinancials{
		PartnerID:            partner.ID,
		CommissionPercentage: commission,
		PayoutsTotalCents:    payoutsTotalCents,
	}

	seen := make(map[primitive.ObjectID]bool, len(bookings))
	for i := range bookings {
		b := &bookings[i]
		if seen[b.ID] {
			continue
		}
		seen[b.ID] = true
		snap.BookingCount++

		if b.PaidOnline() {
			snap.InvoicesPaidCents += b.Payment.AmountCents
		} else if b.Payment != nil {
			snap.InvoicesPendingCents += b.Payment.AmountCents
		}
		if b.CashCollected {
			if b.CashSettled {
				snap.CashSettledCents += b.CashAmountCents
			} else {
				snap.CashPendingCents += b.CashAmountCents
			}
		}

		if IsSettled(b) {
			snap.TotalNetEarningsCents += RoundHalfAway(NetBase(b, fin) * commission / 100)
		}
	}

	snap.OutstandingCents = snap.TotalNetEarningsCents - payoutsTotalCents
	if snap.OutstandingCents < 0 {
		snap.OutstandingCents = 0
	}
	return snap
}

// FinanceService computes partner financial snapshots from persisted records
type FinanceService struct {
	DB       *mongo.Database
	Settings SettingsProvider
}

// NewFinanceService creates a finance service
func NewFinanceService(db *mongo.Database, settings SettingsProvider) *FinanceService {
	return &FinanceService{DB: db, Settings: settings}
}

// PartnerBookings loads all bookings owned by the partner directly or through
// any of its drivers.
func (s *FinanceService) PartnerBookings(ctx context.Context, partnerID primitive.ObjectID) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	cursor, err := s.DB.Collection("drivers").Find(ctx, bson.M{"partnerId": partnerID})
	if err != nil {
		return nil, fmt.Errorf("failed to load partner drivers: %w", err)
	}
	var drivers []models.Driver
	if err := cursor.All(ctx, &drivers); err != nil {
		return nil, err
	}

	driverIDs := make([]primitive.ObjectID, 0, len(drivers))
	for _, d := range drivers {
		driverIDs = append(driverIDs, d.ID)
	}

	filter := bson.M{"$or": []bson.M{
		{"partnerId": partnerID},
		{"driverId": bson.M{"$in": driverIDs}},
	}}
	cursor, err = s.DB.Collection("bookings").Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load partner bookings: %w", err)
	}
	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// PayoutsTotal sums all recorded payouts for the partner.
func (s *FinanceService) PayoutsTotal(ctx context.Context, partnerID primitive.ObjectID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := s.DB.Collection("partnerPayouts").Find(ctx, bson.M{"partnerId": partnerID})
	if err != nil {
		return 0, fmt.Errorf("failed to load payouts: %w", err)
	}
	var payouts []models.PartnerPayout
	if err := cursor.All(ctx, &payouts); err != nil {
		return 0, err
	}
	var total int64
	for _, p := range payouts {
		total += p.AmountCents
	}
	return total, nil
}

// Snapshot computes the on-demand financial snapshot for a partner.
func (s *FinanceService) Snapshot(ctx context.Context, partner *models.Partner) (models.PartnerFinancials, error) {
	bookings, err := s.PartnerBookings(ctx, partner.ID)
	if err != nil {
		return models.PartnerFinancials{}, err
	}
	payoutsTotal, err := s.PayoutsTotal(ctx, partner.ID)
	if err != nil {
		return models.PartnerFinancials{}, err
	}
	return ComputeSnapshot(partner, bookings, payoutsTotal, s.Settings.DefaultCommissionPercent(ctx), s.Settings.Finance(ctx)), nil
}
