// utils/logger.go
package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the shared structured logger. Initialized once at startup;
// defaults to a no-op logger so packages can log safely in tests.
var Logger *zap.SugaredLogger = zap.NewNop().Sugar()

// InitLogger builds the production zap logger used across the backend
func InitLogger() *zap.SugaredLogger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	config := zap.NewProductionConfig()
	config.EncoderConfig = encoderConfig

	logger, _ := config.Build()
	Logger = logger.Sugar()
	return Logger
}
