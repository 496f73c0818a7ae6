package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DriverDay statuses
const (
	DriverDayOpen   = "OPEN"
	DriverDayClosed = "CLOSED"
)

// AutoEndNote is written to EndNotes when a stale day is closed automatically.
const AutoEndNote = "Auto-ended after duty schedule"

// DriverDay is the per-calendar-date shift record for a driver. At most one
// record exists per (driverId, date); date is normalized to midnight.
type DriverDay struct {
	ID                 primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	DriverID           primitive.ObjectID `json:"driverId" bson:"driverId"`
	Date               time.Time          `json:"date" bson:"date"`
	Status             string             `json:"status" bson:"status"` // "OPEN", "CLOSED"
	StartedAt          time.Time          `json:"startedAt" bson:"startedAt"`
	EndedAt            *time.Time         `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
	CashCollectedCents int64              `json:"cashCollectedCents" bson:"cashCollectedCents"`
	CashSettledCents   int64              `json:"cashSettledCents" bson:"cashSettledCents"`
	StartNotes         string             `json:"startNotes,omitempty" bson:"startNotes,omitempty"`
	EndNotes           string             `json:"endNotes,omitempty" bson:"endNotes,omitempty"`
	CreatedAt          time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// DriverDayActionRequest is the POST body for /api/driver/day
type DriverDayActionRequest struct {
	Action  string `json:"action" validate:"required"` // "start" or "end"
	Notes   string `json:"notes,omitempty"`
	Confirm bool   `json:"confirm,omitempty"` // required to open a second day after one was closed today
}

// DriverDayStatus is the GET payload for /api/driver/day
type DriverDayStatus struct {
	DriverDay       *DriverDay  `json:"driverDay,omitempty"`
	DutyWindows     interface{} `json:"dutyWindows"`
	OnDuty          bool        `json:"onDuty"`
	UnsettledCents  int64       `json:"unsettledCents"`
	PreviousDayOpen *DriverDay  `json:"previousDayOpen,omitempty"`
	RequiresAction  string      `json:"requiresAction,omitempty"`
}
