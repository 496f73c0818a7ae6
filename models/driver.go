package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Driver represents a wash/detailing driver dispatched to bookings
type Driver struct {
	ID          primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	UserID      *primitive.ObjectID `json:"userId,omitempty" bson:"userId,omitempty"`
	PartnerID   *primitive.ObjectID `json:"partnerId,omitempty" bson:"partnerId,omitempty"`
	FullName    string              `json:"fullName" bson:"fullName"`
	Phone       string              `json:"phone" bson:"phone"`
	Email       string              `json:"email,omitempty" bson:"email,omitempty"`
	VehicleInfo string              `json:"vehicleInfo,omitempty" bson:"vehicleInfo,omitempty"`
	IsActive    bool                `json:"isActive" bson:"isActive"`
	CreatedAt   time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// DutyShift is a single named working window, times as "HH:MM".
// An end at or before the start rolls into the next calendar day.
type DutyShift struct {
	Name  string `json:"name,omitempty" bson:"name,omitempty"`
	Start string `json:"start" bson:"start"`
	End   string `json:"end" bson:"end"`
}

// DutySettings configures a driver's allowed working windows. Either Shifts
// (multiple named windows) or the single Start/End pair is used; Shifts wins
// when both are present. A driver without settings is always on duty.
type DutySettings struct {
	ID        primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	DriverID  *primitive.ObjectID `json:"driverId,omitempty" bson:"driverId,omitempty"` // nil = platform default
	Shifts    []DutyShift         `json:"shifts,omitempty" bson:"shifts,omitempty"`
	Start     string              `json:"start,omitempty" bson:"start,omitempty"`
	End       string              `json:"end,omitempty" bson:"end,omitempty"`
	UpdatedAt time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// DriverRequest model for creating/updating a driver
type DriverRequest struct {
	FullName    string `json:"fullName" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	Email       string `json:"email,omitempty"`
	PartnerID   string `json:"partnerId,omitempty"`
	VehicleInfo string `json:"vehicleInfo,omitempty"`
	Password    string `json:"password,omitempty"` // creates the linked login when set
}

// DutySettingsRequest model for configuring duty windows
type DutySettingsRequest struct {
	Shifts []DutyShift `json:"shifts,omitempty"`
	Start  string      `json:"start,omitempty"`
	End    string      `json:"end,omitempty"`
}
