package logger

import (
	"errors"
	"fmt"
	stdlog "log"
	"os"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Kush-Singh-26/devserve/internal/validator"
)

type Options struct {
	Level          string `validate:"required,oneof=debug info warn error"`
	ProductionMode bool
}

func MustInit(opts Options) {
	if err := Init(opts); err != nil {
		panic(err)
	}
}

// Init replaces the global zap logger. Components take named children of
// zap.L().
func Init(opts Options) error {
	if err := validator.Validator.Struct(opts); err != nil {
		return fmt.Errorf("validate options: %w", err)
	}

	logLevel, err := zap.ParseAtomicLevel(opts.Level)
	if err != nil {
		return fmt.Errorf("invalid logger level: %w", err)
	}

	encoder := zapcore.NewConsoleEncoder
	encoderCfg := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		NameKey:        "component",
		TimeKey:        "T",
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}

	if opts.ProductionMode {
		encoder = zapcore.NewJSONEncoder
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	// Request echo goes to stderr; stdout is left to the startup banner.
	core := zapcore.NewCore(encoder(encoderCfg), zapcore.Lock(os.Stderr), logLevel)
	zap.ReplaceGlobals(zap.New(core))

	return nil
}

func Sync() {
	if err := zap.L().Sync(); err != nil && !errors.Is(err, syscall.ENOTTY) && !errors.Is(err, syscall.EINVAL) {
		stdlog.Printf("cannot sync logger: %v", err)
	}
}
