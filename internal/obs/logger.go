package obs

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Vehask/plex-mount-health/internal/config"
)

// NewLogger builds the process logger. Pretty mode switches to the
// development encoder for interactive runs; otherwise JSON production
// output with an ISO8601 ts field.
func NewLogger(c config.Log, service string) (*zap.Logger, error) {
	var cfg zap.Config
	if c.Pretty {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	level := new(zapcore.Level)
	if err := level.Set(c.Level); err != nil {
		*level = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(*level)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build(zap.Fields(zap.String("service", service)))
}
