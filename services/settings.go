// services/settings.go
package services

import (
	"context"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/umshah583/quickway_backend/models"
)

// FinanceSettings holds the tax/fee configuration reversed out of gross
// booking values before commission is applied.
type FinanceSettings struct {
	TaxPercent           float64
	GatewayFeePercent    float64
	GatewayFixedFeeCents int64
}

// SettingsProvider supplies the global configuration the core computations
// depend on. Injected rather than read ad hoc so tests can substitute fixed
// values.
type SettingsProvider interface {
	DefaultCommissionPercent(ctx context.Context) float64
	Finance(ctx context.Context) FinanceSettings
	DutySettings(ctx context.Context, driverID primitive.ObjectID) *models.DutySettings
}

// StaticSettings is a fixed-value SettingsProvider used in tests.
type StaticSettings struct {
	Commission float64
	Fin        FinanceSettings
	Duty       *models.DutySettings
}

func (s StaticSettings) DefaultCommissionPercent(ctx context.Context) float64 { return s.Commission }
func (s StaticSettings) Finance(ctx context.Context) FinanceSettings          { return s.Fin }
func (s StaticSettings) DutySettings(ctx context.Context, driverID primitive.ObjectID) *models.DutySettings {
	return s.Duty
}

// MongoSettings reads configuration from the adminSettings and dutySettings
// collections.
type MongoSettings struct {
	DB *mongo.Database
}

// NewMongoSettings creates a settings provider backed by the database
func NewMongoSettings(db *mongo.Database) *MongoSettings {
	return &MongoSettings{DB: db}
}

func (s *MongoSettings) value(ctx context.Context, key string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var setting models.AdminSetting
	err := s.DB.Collection("adminSettings").FindOne(ctx, bson.M{"key": key}).Decode(&setting)
	if err != nil {
		return "", false
	}
	return setting.Value, true
}

func (s *MongoSettings) floatValue(ctx context.Context, key string, fallback float64) float64 {
	raw, ok := s.value(ctx, key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return f
}

// DefaultCommissionPercent returns the platform default commission applied to
// partners without their own override.
func (s *MongoSettings) DefaultCommissionPercent(ctx context.Context) float64 {
	return s.floatValue(ctx, models.SettingDefaultCommission, 0)
}

// Finance returns the configured tax/fee reversal parameters.
func (s *MongoSettings) Finance(ctx context.Context) FinanceSettings {
	fixed := int64(s.floatValue(ctx, models.SettingGatewayFixedFeeCents, 0))
	return FinanceSettings{
		TaxPercent:           s.floatValue(ctx, models.SettingTaxPercent, 0),
		GatewayFeePercent:    s.floatValue(ctx, models.SettingGatewayFeePercent, 0),
		GatewayFixedFeeCents: fixed,
	}
}

// DutySettings returns the driver's own duty configuration, falling back to
// the platform default window when none exists. A nil result means the driver
// is always on duty.
func (s *MongoSettings) DutySettings(ctx context.Context, driverID primitive.ObjectID) *models.DutySettings {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var settings models.DutySettings
	err := s.DB.Collection("dutySettings").FindOne(ctx, bson.M{"driverId": driverID}).Decode(&settings)
	if err == nil {
		return &settings
	}

	start, okStart := s.value(ctx, models.SettingDefaultDutyStart)
	end, okEnd := s.value(ctx, models.SettingDefaultDutyEnd)
	if !okStart || !okEnd {
		return nil
	}
	return &models.DutySettings{Start: start, End: end}
}
