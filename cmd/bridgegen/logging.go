package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"bridgegen/internal/export"
	"bridgegen/internal/pipeline"
)

var cliLogger = zap.NewNop()

// newLogger builds a console logger writing to stderr. "off" yields a no-op
// logger.
func newLogger(level string) (*zap.Logger, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "off" || level == "none" {
		return zap.NewNop(), nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	cfg.DisableCaller = lvl > zapcore.DebugLevel
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg.Build()
}

func configureLogging(cmd *cobra.Command) error {
	level, err := cmd.Root().PersistentFlags().GetString("log-level")
	if err != nil {
		return fmt.Errorf("failed to get log-level flag: %w", err)
	}
	l, err := newLogger(level)
	if err != nil {
		return err
	}
	cliLogger = l
	export.SetLogger(l.Named("export"))
	pipeline.SetLogger(l.Named("pipeline"))
	return nil
}

func syncLogger() {
	// stderr sync fails on some terminals; nothing useful to report
	_ = cliLogger.Sync()
}
