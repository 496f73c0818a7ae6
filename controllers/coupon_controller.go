package controllers

import (
	"bytes"
	"image/png"
	"net/http"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/umshah583/quickway_backend/models"
	"github.com/umshah583/quickway_backend/utils"
)

// CouponController handles promotion code management
type CouponController struct {
	db *mongo.Database
}

// NewCouponController creates a new coupon controller
func NewCouponController(db *mongo.Database) *CouponController {
	return &CouponController{db: db}
}

func (c *CouponController) coupons() *mongo.Collection {
	return c.db.Collection("coupons")
}

// CreateCoupon creates a coupon. Codes are stored uppercase.
func (c *CouponController) CreateCoupon(ctx echo.Context) error {
	var req models.CouponRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request")
	}
	if err := ctx.Validate(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Code, discount and validity window are required")
	}
	if req.DiscountType == models.DiscountPercent && req.DiscountValue > 100 {
		return respondError(ctx, http.StatusBadRequest, "Percent discount cannot exceed 100")
	}
	if !req.ValidUntil.After(req.ValidFrom) {
		return respondError(ctx, http.StatusBadRequest, "Validity window must end after it starts")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	now := time.Now()
	coupon := models.Coupon{
		ID:            primitive.NewObjectID(),
		Code:          strings.ToUpper(utils.SanitizeInput(req.Code)),
		Description:   req.Description,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		ValidFrom:     req.ValidFrom,
		ValidUntil:    req.ValidUntil,
		UsageLimit:    req.UsageLimit,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := c.coupons().InsertOne(reqCtx, coupon); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return respondError(ctx, http.StatusConflict, "Coupon code already exists")
		}
		return respondError(ctx, http.StatusInternalServerError, "Failed to create coupon")
	}

	return ctx.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Coupon created",
		Data:    coupon,
	})
}

// ListCoupons returns all coupons
func (c *CouponController) ListCoupons(ctx echo.Context) error {
	reqCtx, cancel := requestContext()
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := c.coupons().Find(reqCtx, bson.M{}, opts)
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch coupons")
	}
	coupons := []models.Coupon{}
	if err := cursor.All(reqCtx, &coupons); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch coupons")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Coupons retrieved",
		Data:    coupons,
	})
}

// UpdateCoupon edits a coupon
func (c *CouponController) UpdateCoupon(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid coupon ID")
	}

	var req models.CouponRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request")
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Description != "" {
		set["description"] = req.Description
	}
	if req.DiscountType != "" {
		set["discountType"] = req.DiscountType
	}
	if req.DiscountValue > 0 {
		set["discountValue"] = req.DiscountValue
	}
	if !req.ValidFrom.IsZero() {
		set["validFrom"] = req.ValidFrom
	}
	if !req.ValidUntil.IsZero() {
		set["validUntil"] = req.ValidUntil
	}
	if req.UsageLimit >= 0 {
		set["usageLimit"] = req.UsageLimit
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	res, err := c.coupons().UpdateOne(reqCtx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to update coupon")
	}
	if res.MatchedCount == 0 {
		return respondError(ctx, http.StatusNotFound, "Coupon not found")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Coupon updated",
	})
}

// DeactivateCoupon turns a coupon off without deleting its usage history
func (c *CouponController) DeactivateCoupon(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid coupon ID")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	res, err := c.coupons().UpdateOne(reqCtx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}})
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to deactivate coupon")
	}
	if res.MatchedCount == 0 {
		return respondError(ctx, http.StatusNotFound, "Coupon not found")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Coupon deactivated",
	})
}

// ValidateCoupon checks a code and returns the coupon when currently usable
func (c *CouponController) ValidateCoupon(ctx echo.Context) error {
	code := strings.ToUpper(strings.TrimSpace(ctx.QueryParam("code")))
	if code == "" {
		return respondError(ctx, http.StatusBadRequest, "Code is required")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	var coupon models.Coupon
	if err := c.coupons().FindOne(reqCtx, bson.M{"code": code}).Decode(&coupon); err != nil {
		return respondError(ctx, http.StatusNotFound, "Coupon not found")
	}
	if !coupon.Usable(time.Now()) {
		return respondError(ctx, http.StatusBadRequest, "Coupon is inactive, expired or used up")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Coupon is valid",
		Data:    coupon,
	})
}

// GetCouponQR renders the coupon code as a PNG QR image
func (c *CouponController) GetCouponQR(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid coupon ID")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	var coupon models.Coupon
	if err := c.coupons().FindOne(reqCtx, bson.M{"_id": id}).Decode(&coupon); err != nil {
		return respondError(ctx, http.StatusNotFound, "Coupon not found")
	}

	qrCode, err := qr.Encode(coupon.Code, qr.M, qr.Auto)
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to generate QR code")
	}
	qrCode, err = barcode.Scale(qrCode, 300, 300)
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to generate QR code")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qrCode); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to generate QR code")
	}

	return ctx.Blob(http.StatusOK, "image/png", buf.Bytes())
}
