package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServiceType is a bookable wash/detailing service with a list price
type ServiceType struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name            string             `json:"name" bson:"name"`
	Category        string             `json:"category,omitempty" bson:"category,omitempty"`
	DurationMinutes int                `json:"durationMinutes" bson:"durationMinutes"`
	PriceCents      int64              `json:"priceCents" bson:"priceCents"`
	IsActive        bool               `json:"isActive" bson:"isActive"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ServiceTypeRequest model
type ServiceTypeRequest struct {
	Name            string `json:"name" validate:"required"`
	Category        string `json:"category,omitempty"`
	DurationMinutes int    `json:"durationMinutes" validate:"required,gt=0"`
	PriceCents      int64  `json:"priceCents" validate:"required,gte=0"`
}
