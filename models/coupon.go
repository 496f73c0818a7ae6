package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Coupon discount types
const (
	DiscountPercent = "PERCENT"
	DiscountFixed   = "FIXED"
)

// Coupon is a promotion code applied to bookings
type Coupon struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Code          string             `json:"code" bson:"code"`
	Description   string             `json:"description,omitempty" bson:"description,omitempty"`
	DiscountType  string             `json:"discountType" bson:"discountType"` // "PERCENT", "FIXED"
	DiscountValue int64              `json:"discountValue" bson:"discountValue"`
	ValidFrom     time.Time          `json:"validFrom" bson:"validFrom"`
	ValidUntil    time.Time          `json:"validUntil" bson:"validUntil"`
	UsageLimit    int                `json:"usageLimit" bson:"usageLimit"` // 0 = unlimited
	UsedCount     int                `json:"usedCount" bson:"usedCount"`
	IsActive      bool               `json:"isActive" bson:"isActive"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Usable reports whether the coupon can be applied at the given time
func (c *Coupon) Usable(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
		return false
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return false
	}
	return true
}

// CouponRequest model
type CouponRequest struct {
	Code          string    `json:"code" validate:"required"`
	Description   string    `json:"description,omitempty"`
	DiscountType  string    `json:"discountType" validate:"required,oneof=PERCENT FIXED"`
	DiscountValue int64     `json:"discountValue" validate:"required,gt=0"`
	ValidFrom     time.Time `json:"validFrom" validate:"required"`
	ValidUntil    time.Time `json:"validUntil" validate:"required"`
	UsageLimit    int       `json:"usageLimit,omitempty"`
}
