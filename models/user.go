package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User types. Super admins bypass module permission checks; regular admins
// are limited to the modules granted to the "admin" role.
const (
	UserTypeSuperAdmin = "superadmin"
	UserTypeAdmin      = "admin"
	UserTypeDriver     = "driver"
	UserTypePartner    = "partner"
)

// User represents a login account (admin, driver app login, or partner portal login)
type User struct {
	ID             primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	FullName       string              `json:"fullName" bson:"fullName"`
	Email          string              `json:"email" bson:"email"`
	Phone          string              `json:"phone,omitempty" bson:"phone,omitempty"`
	Password       string              `json:"-" bson:"password"`
	UserType       string              `json:"userType" bson:"userType"` // "admin", "driver", "partner"
	DriverID       *primitive.ObjectID `json:"driverId,omitempty" bson:"driverId,omitempty"`
	PartnerID      *primitive.ObjectID `json:"partnerId,omitempty" bson:"partnerId,omitempty"`
	FCMToken       string              `json:"fcmToken,omitempty" bson:"fcmToken,omitempty"`
	IsActive       bool                `json:"isActive" bson:"isActive"`
	LastActivityAt *time.Time          `json:"lastActivityAt,omitempty" bson:"lastActivityAt,omitempty"`
	CreatedAt      time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// LoginRequest model
type LoginRequest struct {
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe,omitempty"`
}

// Response is the standard JSON envelope returned by every endpoint
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ActionError is returned for blocked state transitions. RequiresAction carries
// a machine-readable tag the client resolves before resubmitting.
type ActionError struct {
	Status         int         `json:"status"`
	Error          string      `json:"error"`
	RequiresAction string      `json:"requiresAction,omitempty"`
	Data           interface{} `json:"data,omitempty"`
}
