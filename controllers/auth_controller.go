package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/umshah583/quickway_backend/config"
	"github.com/umshah583/quickway_backend/middleware"
	"github.com/umshah583/quickway_backend/models"
	"github.com/umshah583/quickway_backend/repositories"
	"github.com/umshah583/quickway_backend/utils"
)

// AuthController handles login/logout for all account types
type AuthController struct {
	db    *mongo.Database
	users *repositories.UserRepository
}

// NewAuthController creates a new auth controller
func NewAuthController(db *mongo.Database) *AuthController {
	return &AuthController{db: db, users: repositories.NewUserRepository(db)}
}

// Login authenticates an admin, driver or partner account
func (c *AuthController) Login(ctx echo.Context) error {
	var req models.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request")
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid email address")
	}

	user, err := c.users.FindByEmail(email)
	if err != nil {
		return respondError(ctx, http.StatusUnauthorized, "Invalid credentials")
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		return respondError(ctx, http.StatusUnauthorized, "Invalid credentials")
	}

	token, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.UserType)
	if err != nil {
		ctx.Logger().Errorf("failed to generate token: %v", err)
		return respondError(ctx, http.StatusInternalServerError, "Failed to generate token")
	}

	data := map[string]interface{}{
		"token":        token,
		"refreshToken": refreshToken,
		"user":         user,
	}

	if req.RememberMe && config.RedisClient != nil {
		rememberToken, err := utils.GenerateRememberMeToken()
		if err == nil {
			creds := utils.RememberedCredentials{
				Email:     user.Email,
				UserType:  user.UserType,
				UserID:    user.ID.Hex(),
				ExpiresAt: time.Now().Add(30 * 24 * time.Hour),
			}
			if err := utils.StoreRememberedCredentials(config.RedisClient, rememberToken, creds, 30*24*time.Hour); err == nil {
				data["rememberMeToken"] = rememberToken
			}
		}
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data:    data,
	})
}

// RememberMeLogin exchanges a remember-me token for a fresh JWT
func (c *AuthController) RememberMeLogin(ctx echo.Context) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := ctx.Bind(&req); err != nil || req.Token == "" {
		return respondError(ctx, http.StatusBadRequest, "Invalid request")
	}

	creds, err := utils.RetrieveRememberedCredentials(config.RedisClient, req.Token)
	if err != nil {
		return respondError(ctx, http.StatusUnauthorized, "Remember me token invalid or expired")
	}

	token, refreshToken, err := middleware.GenerateJWT(creds.UserID, creds.Email, creds.UserType)
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to generate token")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: map[string]interface{}{
			"token":        token,
			"refreshToken": refreshToken,
		},
	})
}

// Logout blacklists the presented token
func (c *AuthController) Logout(ctx echo.Context) error {
	auth := ctx.Request().Header.Get("Authorization")
	if len(auth) > 7 && auth[:7] == "Bearer " {
		middleware.BlacklistToken(auth[7:], time.Now().Add(24*time.Hour))
	}
	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logged out",
	})
}

// GetCurrentUser returns the authenticated account
func (c *AuthController) GetCurrentUser(ctx echo.Context) error {
	user, err := currentUser(ctx, c.db)
	if err != nil {
		return respondError(ctx, http.StatusUnauthorized, "Unauthorized")
	}
	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "User retrieved",
		Data:    user,
	})
}

// UpdateFCMToken stores the driver app's push token
func (c *AuthController) UpdateFCMToken(ctx echo.Context) error {
	user, err := currentUser(ctx, c.db)
	if err != nil {
		return respondError(ctx, http.StatusUnauthorized, "Unauthorized")
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := ctx.Bind(&req); err != nil || req.Token == "" {
		return respondError(ctx, http.StatusBadRequest, "Invalid request")
	}

	if err := c.users.UpdateFCMToken(user.ID, req.Token); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to update token")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Token updated",
	})
}

// ForgotPassword emails a reset OTP to an admin account
func (c *AuthController) ForgotPassword(ctx echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request")
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid email address")
	}

	user, err := c.users.FindByEmail(email)
	if err != nil {
		// Do not reveal whether the account exists
		return ctx.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "If the account exists, a reset code has been sent",
		})
	}

	otp, err := utils.GenerateSecureOTP()
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to generate code")
	}

	if config.RedisClient != nil {
		reqCtx, cancel := requestContext()
		defer cancel()
		config.RedisClient.Set(reqCtx, "password_reset:"+user.ID.Hex(), otp, 15*time.Minute)
	}

	go func() {
		body := fmt.Sprintf("Your password reset code is: %s\nIt expires in 15 minutes.", otp)
		if err := utils.SendEmail(user.Email, "Password reset code", body); err != nil {
			utils.Logger.Errorw("failed to send reset email", "error", err)
		}
	}()

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "If the account exists, a reset code has been sent",
	})
}

// VerifyOTPAndResetPassword verifies the emailed code and sets a new password
func (c *AuthController) VerifyOTPAndResetPassword(ctx echo.Context) error {
	var req struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"newPassword"`
	}
	if err := ctx.Bind(&req); err != nil || req.OTP == "" || len(req.NewPassword) < 8 {
		return respondError(ctx, http.StatusBadRequest, "Invalid request: password must be at least 8 characters")
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid email address")
	}

	user, err := c.users.FindByEmail(email)
	if err != nil {
		return respondError(ctx, http.StatusUnauthorized, "Invalid code")
	}

	if err := utils.ValidateOTPAttempts(user.ID.Hex(), config.RedisClient); err != nil {
		return respondError(ctx, http.StatusTooManyRequests, "Too many attempts, try again later")
	}

	if config.RedisClient == nil {
		return respondError(ctx, http.StatusServiceUnavailable, "Password reset unavailable")
	}

	reqCtx, cancel := requestContext()
	defer cancel()

	stored, err := config.RedisClient.Get(reqCtx, "password_reset:"+user.ID.Hex()).Result()
	if err != nil || stored != req.OTP {
		return respondError(ctx, http.StatusUnauthorized, "Invalid code")
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to update password")
	}
	if err := c.users.UpdatePassword(user.ID, hash); err != nil {
		return respondError(ctx, http.StatusInternalServerError, "Failed to update password")
	}

	config.RedisClient.Del(reqCtx, "password_reset:"+user.ID.Hex())

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Password updated",
	})
}
