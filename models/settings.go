package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Well-known admin setting keys
const (
	SettingDefaultCommission    = "defaultCommissionPercent"
	SettingTaxPercent           = "taxPercent"
	SettingGatewayFeePercent    = "gatewayFeePercent"
	SettingGatewayFixedFeeCents = "gatewayFixedFeeCents"
	SettingDefaultDutyStart     = "defaultDutyStart"
	SettingDefaultDutyEnd       = "defaultDutyEnd"
)

// AdminSetting is a single global configuration value keyed by name
type AdminSetting struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Key       string             `json:"key" bson:"key"`
	Value     string             `json:"value" bson:"value"`
	UpdatedBy primitive.ObjectID `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// SettingRequest model
type SettingRequest struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value" validate:"required"`
}

// ModulePermission maps a role to the dashboard modules it may access
type ModulePermission struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Role      string             `json:"role" bson:"role"`
	Modules   []string           `json:"modules" bson:"modules"` // e.g. "bookings", "drivers", "partners", "coupons"
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ModulePermissionRequest model
type ModulePermissionRequest struct {
	Role    string   `json:"role" validate:"required"`
	Modules []string `json:"modules" validate:"required"`
}
