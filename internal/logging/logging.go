package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// #region logger

// New builds the process-wide structured logger. Debug mode switches to
// the development encoder with per-decision output enabled.
func New(debug bool) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// #endregion logger
