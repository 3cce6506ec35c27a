// Package logging builds the zap loggers used across the mock service.
package logging

import "go.uber.org/zap"

// New returns a logger appropriate for the configured environment: console
// development output for "local", JSON production output otherwise.
func New(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Must is New but panics on error, for use in tests and examples.
func Must(env string) *zap.Logger {
	logger, err := New(env)
	if err != nil {
		panic(err)
	}
	return logger
}
