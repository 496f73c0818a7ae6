package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Partner is a franchise/fleet entity that owns drivers and bookings and is
// paid a commission share of net service revenue.
type Partner struct {
	ID          primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string              `json:"name" bson:"name"`
	Phone       string              `json:"phone,omitempty" bson:"phone,omitempty"`
	Email       string              `json:"email,omitempty" bson:"email,omitempty"`
	UserID      *primitive.ObjectID `json:"userId,omitempty" bson:"userId,omitempty"` // linked portal login
	// CommissionPercentage nil or <= 0 means "unset": the platform default
	// commission applies. A genuine zero-commission partner is not supported.
	CommissionPercentage *float64  `json:"commissionPercentage,omitempty" bson:"commissionPercentage,omitempty"`
	IsActive             bool      `json:"isActive" bson:"isActive"`
	CreatedAt            time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt" bson:"updatedAt"`
}

// PartnerPayout is an immutable record of a cash disbursement to a partner.
// Created only; never mutated. Deleted only when the partner itself is deleted.
type PartnerPayout struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PartnerID   primitive.ObjectID `json:"partnerId" bson:"partnerId"`
	AmountCents int64              `json:"amountCents" bson:"amountCents"`
	Note        string             `json:"note,omitempty" bson:"note,omitempty"`
	PeriodMonth int                `json:"periodMonth" bson:"periodMonth"`
	PeriodYear  int                `json:"periodYear" bson:"periodYear"`
	Reference   string             `json:"reference" bson:"reference"`
	CreatedBy   primitive.ObjectID `json:"createdBy" bson:"createdBy"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

// PartnerRequest model for creating/updating a partner
type PartnerRequest struct {
	Name                 string   `json:"name" validate:"required"`
	Phone                string   `json:"phone,omitempty"`
	Email                string   `json:"email,omitempty"`
	CommissionPercentage *float64 `json:"commissionPercentage,omitempty"`
	// CreateLogin provisions a portal login for the partner when set
	CreateLogin   bool   `json:"createLogin,omitempty"`
	LoginPassword string `json:"loginPassword,omitempty"`
}

// PayoutRequest model for recording a disbursement
type PayoutRequest struct {
	AmountCents int64  `json:"amountCents" validate:"required,gt=0"`
	Note        string `json:"note,omitempty"`
	PeriodMonth int    `json:"periodMonth" validate:"required,min=1,max=12"`
	PeriodYear  int    `json:"periodYear" validate:"required,min=2020"`
}

// PartnerFinancials is the financial snapshot returned to admin and partner views
type PartnerFinancials struct {
	PartnerID             primitive.ObjectID `json:"partnerId"`
	CommissionPercentage  float64            `json:"commissionPercentage"`
	TotalNetEarningsCents int64              `json:"totalNetEarningsCents"`
	CashPendingCents      int64              `json:"cashPendingCents"`
	CashSettledCents      int64              `json:"cashSettledCents"`
	InvoicesPaidCents     int64              `json:"invoicesPaidCents"`
	InvoicesPendingCents  int64              `json:"invoicesPendingCents"`
	PayoutsTotalCents     int64              `json:"payoutsTotalCents"`
	OutstandingCents      int64              `json:"outstandingCents"`
	BookingCount          int                `json:"bookingCount"`
}
