package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/umshah583/quickway_backend/middleware"
	"github.com/umshah583/quickway_backend/models"
	"github.com/umshah583/quickway_backend/services"
	"github.com/umshah583/quickway_backend/utils"
)

// PartnerController handles partner management, financial snapshots and payouts
type PartnerController struct {
	db      *mongo.Database
	finance *services.FinanceService
}

// NewPartnerController creates a new partner controller
func NewPartnerController(db *mongo.Database, finance *services.FinanceService) *PartnerController {
	return &PartnerController{db: db, finance: finance}
}

func (c *PartnerController) partners() *mongo.Collection {
	return c.db.Collection("partners")
}

// CreatePartner creates a partner, optionally provisioning a portal login
func (c *PartnerController) CreatePartner(ctx echo.Context) error {
	var req models.PartnerRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request")
	}
	if err := ctx.Validate(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Name is required")
	}
	if req.CreateLogin && (req.Email == "" || len(req.LoginPassword) < 8) {
		return respondError(ctx, http.StatusBadRequest, "Login requires an email and a password of at least 8 characters")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	now := time.Now()
	partner := models.Partner{
		ID:                   primitive.NewObjectID(),
		Name:                 utils.SanitizeInput(req.Name),
		Phone:                utils.SanitizeInput(req.Phone),
		Email:                req.Email,
		CommissionPercentage: req.CommissionPercentage,
		IsActive:             true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if req.CreateLogin {
		email, err := utils.SanitizeEmail(req.Email)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, "Invalid email address")
		}
		hash, err := utils.HashPassword(req.LoginPassword)
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, "Failed to create login")
		}
		user := models.User{
			ID:        primitive.NewObjectID(),
			Email:     email,
			Password:  hash,
			UserType:  models.UserTypePartner,
			PartnerID: &partner.ID,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := c.db.Collection("users").InsertOne(reqCtx, user); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return respondError(ctx, http.StatusConflict, "Email is already in use")
			}
			return respondError(ctx, http.StatusInternalServerError, "Failed to create login")
		}
		partner.UserID = &user.ID
	}

	if _, err := c.partners().InsertOne(reqCtx, partner); err != nil {
		ctx.Logger().Errorf("failed to create partner: %v", err)
		return respondError(ctx, http.StatusInternalServerError, "Failed to create partner")
	}

	return ctx.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Partner created",
		Data:    partner,
	})
}

// ListPartners returns all partners
func (c *PartnerController) ListPartners(ctx echo.Context) error {
	reqCtx, cancel := requestContext()
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := c.partners().Find(reqCtx, bson.M{}, opts)
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch partners")
	}
	partners := []models.Partner{}
	if err := cursor.All(reqCtx, &partners); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch partners")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Partners retrieved",
		Data:    partners,
	})
}

// GetPartner returns a single partner
func (c *PartnerController) GetPartner(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid partner ID")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	var partner models.Partner
	if err := c.partners().FindOne(reqCtx, bson.M{"_id": id}).Decode(&partner); err != nil {
		return respondError(ctx, http.StatusNotFound, "Partner not found")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Partner retrieved",
		Data:    partner,
	})
}

// UpdatePartner edits a partner's profile and commission rate
func (c *PartnerController) UpdatePartner(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid partner ID")
	}

	var req models.PartnerRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request")
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Name != "" {
		set["name"] = utils.SanitizeInput(req.Name)
	}
	if req.Phone != "" {
		set["phone"] = utils.SanitizeInput(req.Phone)
	}
	if req.Email != "" {
		set["email"] = req.Email
	}
	if req.CommissionPercentage != nil {
		set["commissionPercentage"] = *req.CommissionPercentage
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	res, err := c.partners().UpdateOne(reqCtx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to update partner")
	}
	if res.MatchedCount == 0 {
		return respondError(ctx, http.StatusNotFound, "Partner not found")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Partner updated",
	})
}

// DeletePartner removes a partner, its payout records and its portal login,
// and detaches its drivers
func (c *PartnerController) DeletePartner(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid partner ID")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	var partner models.Partner
	if err := c.partners().FindOne(reqCtx, bson.M{"_id": id}).Decode(&partner); err != nil {
		return respondError(ctx, http.StatusNotFound, "Partner not found")
	}

	if _, err := c.partners().DeleteOne(reqCtx, bson.M{"_id": id}); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to delete partner")
	}
	c.db.Collection("partnerPayouts").DeleteMany(reqCtx, bson.M{"partnerId": id})
	c.db.Collection("drivers").UpdateMany(reqCtx, bson.M{"partnerId": id},
		bson.M{"$unset": bson.M{"partnerId": ""}})
	if partner.UserID != nil {
		c.db.Collection("users").DeleteOne(reqCtx, bson.M{"_id": *partner.UserID})
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Partner deleted",
	})
}

// GetPartnerFinancials returns the partner's financial snapshot
func (c *PartnerController) GetPartnerFinancials(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid partner ID")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	var partner models.Partner
	if err := c.partners().FindOne(reqCtx, bson.M{"_id": id}).Decode(&partner); err != nil {
		return respondError(ctx, http.StatusNotFound, "Partner not found")
	}

	snapshot, err := c.finance.Snapshot(reqCtx, &partner)
	if err != nil {
		ctx.Logger().Errorf("failed to compute partner financials: %v", err)
		return respondError(ctx, http.StatusInternalServerError, "Failed to compute financials")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Partner financials retrieved",
		Data:    snapshot,
	})
}

// GetMyFinancials returns the snapshot for the authenticated partner login
func (c *PartnerController) GetMyFinancials(ctx echo.Context) error {
	user, err := currentUser(ctx, c.db)
	if err != nil || user.UserType != models.UserTypePartner || user.PartnerID == nil {
		return respondError(ctx, http.StatusUnauthorized, "Partner account required")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	var partner models.Partner
	if err := c.partners().FindOne(reqCtx, bson.M{"_id": *user.PartnerID}).Decode(&partner); err != nil {
		return respondError(ctx, http.StatusNotFound, "Partner not found")
	}

	snapshot, err := c.finance.Snapshot(reqCtx, &partner)
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to compute financials")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Partner financials retrieved",
		Data:    snapshot,
	})
}

// CreatePartnerPayout records an immutable disbursement and emails a receipt
func (c *PartnerController) CreatePartnerPayout(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid partner ID")
	}

	var req models.PayoutRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request")
	}
	if err := ctx.Validate(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Amount and period are required")
	}

	claims := middleware.GetUserFromToken(ctx)
	if claims == nil {
		return respondError(ctx, http.StatusUnauthorized, "Unauthorized")
	}
	actorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return respondError(ctx, http.StatusUnauthorized, "Unauthorized")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	var partner models.Partner
	if err := c.partners().FindOne(reqCtx, bson.M{"_id": id}).Decode(&partner); err != nil {
		return respondError(ctx, http.StatusNotFound, "Partner not found")
	}

	payout := models.PartnerPayout{
		ID:          primitive.NewObjectID(),
		PartnerID:   id,
		AmountCents: req.AmountCents,
		Note:        req.Note,
		PeriodMonth: req.PeriodMonth,
		PeriodYear:  req.PeriodYear,
		Reference:   uuid.New().String(),
		CreatedBy:   actorID,
		CreatedAt:   time.Now(),
	}
	if _, err := c.db.Collection("partnerPayouts").InsertOne(reqCtx, payout); err != nil {
		ctx.Logger().Errorf("failed to record payout: %v", err)
		return respondError(ctx, http.StatusInternalServerError, "Failed to record payout")
	}

	if partner.Email != "" {
		go utils.SendPayoutReceipt(partner.Email, partner.Name, &payout)
	}
	go utils.LogAdminAction(c.db, actorID, claims.UserType, "payout_created", nil, payout.Reference)

	return ctx.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Payout recorded",
		Data:    payout,
	})
}

// ListPartnerPayouts returns the partner's payout history, newest first
func (c *PartnerController) ListPartnerPayouts(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid partner ID")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := c.db.Collection("partnerPayouts").Find(reqCtx, bson.M{"partnerId": id}, opts)
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch payouts")
	}
	payouts := []models.PartnerPayout{}
	if err := cursor.All(reqCtx, &payouts); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch payouts")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payouts retrieved",
		Data:    payouts,
	})
}
