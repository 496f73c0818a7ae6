package utils

import (
	"context"
	"fmt"
	"os"
	"time"

	"firebase.google.com/go/v4/messaging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/gomail.v2"

	"github.com/umshah583/quickway_backend/config"
	"github.com/umshah583/quickway_backend/models"
)

// SaveNotification saves an in-app notification to the database
func SaveNotification(db *mongo.Database, userID primitive.ObjectID, title, message, notifType string, data interface{}) error {
	notification := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notifType,
		Data:      data,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	_, err := db.Collection("notifications").InsertOne(context.Background(), notification)
	return err
}

// SendPushNotification sends an FCM push to the user's registered device.
// Failures are logged, not returned: push delivery is best effort.
func SendPushNotification(db *mongo.Database, userID primitive.ObjectID, title, body string) {
	if config.FirebaseApp == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil || user.FCMToken == "" {
		return
	}

	client, err := config.FirebaseApp.Messaging(ctx)
	if err != nil {
		Logger.Errorw("failed to create messaging client", "error", err)
		return
	}

	_, err = client.Send(ctx, &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
	})
	if err != nil {
		Logger.Errorw("failed to send push notification", "userId", userID.Hex(), "error", err)
	}
}

// NotifyUser persists the notification and pushes it in the background
func NotifyUser(db *mongo.Database, userID primitive.ObjectID, title, message, notifType string, data interface{}) {
	if err := SaveNotification(db, userID, title, message, notifType, data); err != nil {
		Logger.Errorw("failed to save notification", "userId", userID.Hex(), "error", err)
	}
	go SendPushNotification(db, userID, title, message)
}

// SendEmail sends a plain-text email via the configured SMTP relay
func SendEmail(to, subject, body string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	smtpPort := 2525
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &smtpPort)
	}
	if smtpHost == "" {
		return fmt.Errorf("SMTP_HOST not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", smtpUser)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	return d.DialAndSend(m)
}

// SendPayoutReceipt emails a payout confirmation to the partner
func SendPayoutReceipt(partnerEmail, partnerName string, payout *models.PartnerPayout) {
	if partnerEmail == "" {
		return
	}
	subject := fmt.Sprintf("Payout recorded for %02d/%d", payout.PeriodMonth, payout.PeriodYear)
	body := fmt.Sprintf(
		"Dear %s,\n\nA payout of %.2f has been recorded for period %02d/%d (reference %s).\n\nBest regards,\nQuickWay Operations",
		partnerName, float64(payout.AmountCents)/100, payout.PeriodMonth, payout.PeriodYear, payout.Reference)

	if err := SendEmail(partnerEmail, subject, body); err != nil {
		Logger.Errorw("failed to send payout receipt", "partner", partnerName, "error", err)
	}
}

// LogAdminAction appends an audit trail entry for booking/task mutations
func LogAdminAction(db *mongo.Database, actorID primitive.ObjectID, actorType, action string, bookingID *primitive.ObjectID, detail string) {
	entry := models.AdminLog{
		ID:        primitive.NewObjectID(),
		ActorID:   actorID,
		ActorType: actorType,
		Action:    action,
		BookingID: bookingID,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
	_, err := db.Collection("adminLogs").InsertOne(context.Background(), entry)
	if err != nil {
		Logger.Errorw("failed to write admin log", "action", action, "error", err)
	}
}
