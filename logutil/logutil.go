// Package logutil provides the process-wide zap logger.
package logutil

import "go.uber.org/zap"

var logger = zap.NewNop()

// InitLogger builds the global logger. Verbose selects the development
// config with debug output.
func InitLogger(verbose bool) error {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// GetLogger returns the global logger; a no-op logger before InitLogger.
func GetLogger() *zap.Logger {
	return logger
}
