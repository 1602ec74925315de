package vkinit

import (
	"github.com/sirupsen/logrus"
)

// NewLogger builds the logger a stage hands to everything that logs,
// gated at the configured severity.
func NewLogger(cfg Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger
}
