package logger

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production logger configured from the environment
// (LOG_LEVEL, LOG_TIME_FORMAT).
func New() (*zap.Logger, error) {
	viper.SetDefault("LOG_LEVEL", int(zapcore.InfoLevel))
	viper.SetDefault("LOG_TIME_FORMAT", time.RFC3339Nano)
	viper.AutomaticEnv()

	level := zapcore.Level(viper.GetInt("LOG_LEVEL"))
	if level < zapcore.DebugLevel || level > zapcore.FatalLevel {
		return nil, fmt.Errorf("logger: unknown log level %d", level)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(viper.GetString("LOG_TIME_FORMAT"))

	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return log, nil
}
