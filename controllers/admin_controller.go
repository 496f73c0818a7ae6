package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/umshah583/quickway_backend/middleware"
	"github.com/umshah583/quickway_backend/models"
	"github.com/umshah583/quickway_backend/utils"
)

// Settings keys accepted by UpsertSetting
var knownSettingKeys = map[string]bool{
	models.SettingDefaultCommission:    true,
	models.SettingTaxPercent:           true,
	models.SettingGatewayFeePercent:    true,
	models.SettingGatewayFixedFeeCents: true,
	models.SettingDefaultDutyStart:     true,
	models.SettingDefaultDutyEnd:       true,
}

// AdminController handles global settings, module permissions and audit logs
type AdminController struct {
	db *mongo.Database
}

// NewAdminController creates a new admin controller
func NewAdminController(db *mongo.Database) *AdminController {
	return &AdminController{db: db}
}

// CreateAdmin provisions an admin login. Requires a super admin token; new
// accounts default to the permission-checked admin role.
func (c *AdminController) CreateAdmin(ctx echo.Context) error {
	var req struct {
		FullName   string `json:"fullName"`
		Email      string `json:"email"`
		Password   string `json:"password"`
		SuperAdmin bool   `json:"superAdmin"`
	}
	if err := ctx.Bind(&req); err != nil || req.Email == "" || len(req.Password) < 8 {
		return respondError(ctx, http.StatusBadRequest, "Email and a password of at least 8 characters are required")
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid email address")
	}
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to create admin")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	userType := models.UserTypeAdmin
	if req.SuperAdmin {
		userType = models.UserTypeSuperAdmin
	}

	now := time.Now()
	admin := models.User{
		ID:        primitive.NewObjectID(),
		FullName:  utils.SanitizeInput(req.FullName),
		Email:     email,
		Password:  hash,
		UserType:  userType,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := c.db.Collection("users").InsertOne(reqCtx, admin); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return respondError(ctx, http.StatusConflict, "Email is already in use")
		}
		return respondError(ctx, http.StatusInternalServerError, "Failed to create admin")
	}

	return ctx.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Admin created",
		Data:    admin,
	})
}

// UpsertSetting creates or replaces a global setting value
func (c *AdminController) UpsertSetting(ctx echo.Context) error {
	var req models.SettingRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request")
	}
	if err := ctx.Validate(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Key and value are required")
	}
	if !knownSettingKeys[req.Key] {
		return respondError(ctx, http.StatusBadRequest, "Unknown setting key")
	}

	claims := middleware.GetUserFromToken(ctx)
	if claims == nil {
		return respondError(ctx, http.StatusUnauthorized, "Unauthorized")
	}
	actorID, _ := primitive.ObjectIDFromHex(claims.UserID)

	reqCtx, cancel := requestContext()
	defer cancel()

	update := bson.M{"$set": bson.M{
		"key":       req.Key,
		"value":     req.Value,
		"updatedBy": actorID,
		"updatedAt": time.Now(),
	}}
	opts := options.Update().SetUpsert(true)
	if _, err := c.db.Collection("adminSettings").UpdateOne(reqCtx, bson.M{"key": req.Key}, update, opts); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to save setting")
	}

	go utils.LogAdminAction(c.db, actorID, claims.UserType, "setting_updated", nil, req.Key+"="+req.Value)

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Setting saved",
	})
}

// ListSettings returns all global settings
func (c *AdminController) ListSettings(ctx echo.Context) error {
	reqCtx, cancel := requestContext()
	defer cancel()

	cursor, err := c.db.Collection("adminSettings").Find(reqCtx, bson.M{})
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch settings")
	}
	settings := []models.AdminSetting{}
	if err := cursor.All(reqCtx, &settings); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch settings")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Settings retrieved",
		Data:    settings,
	})
}

// UpsertModulePermission sets the dashboard modules a role may access
func (c *AdminController) UpsertModulePermission(ctx echo.Context) error {
	var req models.ModulePermissionRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request")
	}
	if err := ctx.Validate(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Role and modules are required")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	update := bson.M{"$set": bson.M{
		"role":      req.Role,
		"modules":   req.Modules,
		"updatedAt": time.Now(),
	}}
	opts := options.Update().SetUpsert(true)
	if _, err := c.db.Collection("modulePermissions").UpdateOne(reqCtx, bson.M{"role": req.Role}, update, opts); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to save permissions")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Permissions saved",
	})
}

// ListModulePermissions returns the role/module access map
func (c *AdminController) ListModulePermissions(ctx echo.Context) error {
	reqCtx, cancel := requestContext()
	defer cancel()

	cursor, err := c.db.Collection("modulePermissions").Find(reqCtx, bson.M{})
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch permissions")
	}
	perms := []models.ModulePermission{}
	if err := cursor.All(reqCtx, &perms); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch permissions")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Permissions retrieved",
		Data:    perms,
	})
}

// ListAdminLogs returns the audit trail, newest first, capped at 200 entries
func (c *AdminController) ListAdminLogs(ctx echo.Context) error {
	reqCtx, cancel := requestContext()
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(200)
	cursor, err := c.db.Collection("adminLogs").Find(reqCtx, bson.M{}, opts)
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch logs")
	}
	logs := []models.AdminLog{}
	if err := cursor.All(reqCtx, &logs); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to fetch logs")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logs retrieved",
		Data:    logs,
	})
}
