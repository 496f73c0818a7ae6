package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscription statuses
const (
	SubscriptionActive    = "ACTIVE"
	SubscriptionExpired   = "EXPIRED"
	SubscriptionCancelled = "CANCELLED"
)

// SubscriptionPlan is a recurring wash package (e.g. 4 exterior washes/month)
type SubscriptionPlan struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name           string             `json:"name" bson:"name"`
	Description    string             `json:"description,omitempty" bson:"description,omitempty"`
	PriceCents     int64              `json:"priceCents" bson:"priceCents"`
	WashesPerMonth int                `json:"washesPerMonth" bson:"washesPerMonth"`
	DurationMonths int                `json:"durationMonths" bson:"durationMonths"`
	IsActive       bool               `json:"isActive" bson:"isActive"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Subscription is a customer's active plan with its service window
type Subscription struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PlanID        primitive.ObjectID `json:"planId" bson:"planId"`
	CustomerName  string             `json:"customerName" bson:"customerName"`
	CustomerPhone string             `json:"customerPhone,omitempty" bson:"customerPhone,omitempty"`
	VehicleInfo   string             `json:"vehicleInfo,omitempty" bson:"vehicleInfo,omitempty"`
	Address       string             `json:"address,omitempty" bson:"address,omitempty"`
	StartDate     time.Time          `json:"startDate" bson:"startDate"`
	EndDate       time.Time          `json:"endDate" bson:"endDate"`
	Status        string             `json:"status" bson:"status"`
	WashesUsed    int                `json:"washesUsed" bson:"washesUsed"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// WithinWindow reports whether visits may be scheduled against the
// subscription at the given time.
func (s *Subscription) WithinWindow(now time.Time) bool {
	return s.Status == SubscriptionActive && !now.Before(s.StartDate) && !now.After(s.EndDate)
}

// SubscriptionPlanRequest model
type SubscriptionPlanRequest struct {
	Name           string `json:"name" validate:"required"`
	Description    string `json:"description,omitempty"`
	PriceCents     int64  `json:"priceCents" validate:"required,gt=0"`
	WashesPerMonth int    `json:"washesPerMonth" validate:"required,gt=0"`
	DurationMonths int    `json:"durationMonths" validate:"required,gt=0"`
}

// SubscriptionRequest model
type SubscriptionRequest struct {
	PlanID        string    `json:"planId" validate:"required"`
	CustomerName  string    `json:"customerName" validate:"required"`
	CustomerPhone string    `json:"customerPhone,omitempty"`
	VehicleInfo   string    `json:"vehicleInfo,omitempty"`
	Address       string    `json:"address,omitempty"`
	StartDate     time.Time `json:"startDate" validate:"required"`
}

// SubscriptionVisitRequest schedules a wash visit against a subscription
type SubscriptionVisitRequest struct {
	SubscriptionID string    `json:"subscriptionId" validate:"required"`
	DriverID       string    `json:"driverId,omitempty"`
	StartAt        time.Time `json:"startAt" validate:"required"`
}
