package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking statuses
const (
	BookingPending   = "PENDING"
	BookingAssigned  = "ASSIGNED"
	BookingPaid      = "PAID"
	BookingCancelled = "CANCELLED"
)

// Task statuses (driver-side progress, distinct from booking/payment status)
const (
	TaskAssigned   = "ASSIGNED"
	TaskInProgress = "IN_PROGRESS"
	TaskCompleted  = "COMPLETED"
)

// Online payment statuses
const (
	PaymentPaid    = "PAID"
	PaymentPending = "PENDING"
	PaymentFailed  = "FAILED"
)

// OnlinePayment holds the gateway result for a booking paid in-app
type OnlinePayment struct {
	Status      string     `json:"status" bson:"status"`
	AmountCents int64      `json:"amountCents" bson:"amountCents"`
	Reference   string     `json:"reference,omitempty" bson:"reference,omitempty"`
	PaidAt      *time.Time `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
}

// Booking is a scheduled wash/detailing job
type Booking struct {
	ID            primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	CustomerName  string              `json:"customerName" bson:"customerName"`
	CustomerPhone string              `json:"customerPhone,omitempty" bson:"customerPhone,omitempty"`
	CustomerEmail string              `json:"customerEmail,omitempty" bson:"customerEmail,omitempty"`
	Address       string              `json:"address,omitempty" bson:"address,omitempty"`
	ServiceTypeID *primitive.ObjectID `json:"serviceTypeId,omitempty" bson:"serviceTypeId,omitempty"`
	DriverID      *primitive.ObjectID `json:"driverId,omitempty" bson:"driverId,omitempty"`
	PartnerID     *primitive.ObjectID `json:"partnerId,omitempty" bson:"partnerId,omitempty"`
	CouponID      *primitive.ObjectID `json:"couponId,omitempty" bson:"couponId,omitempty"`

	Status     string `json:"status" bson:"status"`         // "PENDING", "ASSIGNED", "PAID", "CANCELLED"
	TaskStatus string `json:"taskStatus" bson:"taskStatus"` // "ASSIGNED", "IN_PROGRESS", "COMPLETED"

	StartAt time.Time  `json:"startAt" bson:"startAt"`
	EndAt   *time.Time `json:"endAt,omitempty" bson:"endAt,omitempty"` // derived from service duration

	// Cash handling: drivers collect cash on site and settle it later.
	CashCollected          bool   `json:"cashCollected" bson:"cashCollected"`
	CashAmountCents        int64  `json:"cashAmountCents" bson:"cashAmountCents"`
	CashSettled            bool   `json:"cashSettled" bson:"cashSettled"`
	OverrideAmountCents    *int64 `json:"overrideAmountCents,omitempty" bson:"overrideAmountCents,omitempty"`

	Payment *OnlinePayment `json:"payment,omitempty" bson:"payment,omitempty"`

	TaskStartedAt   *time.Time `json:"taskStartedAt,omitempty" bson:"taskStartedAt,omitempty"`
	TaskCompletedAt *time.Time `json:"taskCompletedAt,omitempty" bson:"taskCompletedAt,omitempty"`

	Notes         string     `json:"notes,omitempty" bson:"notes,omitempty"`
	MediaURLs     []string   `json:"mediaUrls,omitempty" bson:"mediaUrls,omitempty"`
	ThumbnailURLs []string   `json:"thumbnailUrls,omitempty" bson:"thumbnailUrls,omitempty"`
	CreatedAt     time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// PaidOnline reports whether the booking has a settled online payment
func (b *Booking) PaidOnline() bool {
	return b.Payment != nil && b.Payment.Status == PaymentPaid
}

// BookingRequest model for creating a booking
type BookingRequest struct {
	CustomerName  string    `json:"customerName" validate:"required"`
	CustomerPhone string    `json:"customerPhone,omitempty"`
	CustomerEmail string    `json:"customerEmail,omitempty"`
	Address       string    `json:"address,omitempty"`
	ServiceTypeID string    `json:"serviceTypeId,omitempty"`
	DriverID      string    `json:"driverId,omitempty"`
	PartnerID     string    `json:"partnerId,omitempty"`
	CouponCode    string    `json:"couponCode,omitempty"`
	StartAt       time.Time `json:"startAt" validate:"required"`
	Notes         string    `json:"notes,omitempty"`
}

// BookingUpdateRequest model for the admin full-edit operation
type BookingUpdateRequest struct {
	CustomerName  string     `json:"customerName,omitempty"`
	CustomerPhone string     `json:"customerPhone,omitempty"`
	Address       string     `json:"address,omitempty"`
	ServiceTypeID string     `json:"serviceTypeId,omitempty"`
	DriverID      string     `json:"driverId,omitempty"`
	PartnerID     string     `json:"partnerId,omitempty"`
	StartAt       *time.Time `json:"startAt,omitempty"`
	CashCollected *bool      `json:"cashCollected,omitempty"`
	CashAmount    *int64     `json:"cashAmountCents,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

// BookingStatusUpdateRequest model for the admin status override
type BookingStatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

// CashDetailsRequest is submitted by a driver after collecting (or failing to
// collect) cash on site.
type CashDetailsRequest struct {
	Collected   bool   `json:"collected"`
	AmountCents *int64 `json:"amountCents,omitempty"` // defaults to override amount or service list price
}
