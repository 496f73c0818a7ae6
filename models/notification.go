package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is an in-app notification persisted for a user
type Notification struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	Title     string             `json:"title" bson:"title"`
	Message   string             `json:"message" bson:"message"`
	Type      string             `json:"type" bson:"type"` // e.g. "task_started", "task_completed", "booking_updated"
	Data      interface{}        `json:"data,omitempty" bson:"data,omitempty"`
	IsRead    bool               `json:"isRead" bson:"isRead"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// AdminLog is the audit trail entry written for every booking/task mutation
type AdminLog struct {
	ID        primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	ActorID   primitive.ObjectID  `json:"actorId" bson:"actorId"`
	ActorType string              `json:"actorType" bson:"actorType"` // "admin", "driver"
	Action    string              `json:"action" bson:"action"`
	BookingID *primitive.ObjectID `json:"bookingId,omitempty" bson:"bookingId,omitempty"`
	Detail    string              `json:"detail,omitempty" bson:"detail,omitempty"`
	CreatedAt time.Time           `json:"createdAt" bson:"createdAt"`
}
