package instrument

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/krew-solutions/ascetic-odm-go/asceticodm/config"
)

// NewLogger builds a zap logger from the log section: json selects the
// production encoder, console the development one.
func NewLogger(cfg config.Log) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}
	var zcfg zap.Config
	switch cfg.Format {
	case "console":
		zcfg = zap.NewDevelopmentConfig()
	case "json", "":
		zcfg = zap.NewProductionConfig()
	default:
		return nil, errors.Errorf("unknown log format: %s", cfg.Format)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	return zcfg.Build()
}
