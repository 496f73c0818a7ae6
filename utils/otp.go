// utils/otp.go
package utils

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// GenerateSecureOTP returns a 6-character one-time code for password resets
func GenerateSecureOTP() (string, error) {
	bytes := make([]byte, 6)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base32.StdEncoding.EncodeToString(bytes)[:6], nil
}

// ValidateOTPAttempts throttles OTP verification to 5 attempts per hour
func ValidateOTPAttempts(userID string, redisClient *redis.Client) error {
	if redisClient == nil {
		return nil
	}

	key := "otp_attempts:" + userID
	attempts, err := redisClient.Incr(context.Background(), key).Result()
	if err != nil {
		return err
	}

	if attempts == 1 {
		redisClient.Expire(context.Background(), key, 1*time.Hour)
	}

	if attempts > 5 {
		return errors.New("too many OTP attempts")
	}
	return nil
}
