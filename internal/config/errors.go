package config

import "errors"

var (
	// ErrMissingTrigger is returned when no trigger class name is configured
	ErrMissingTrigger = errors.New("trigger class name is not configured")

	// ErrMissingCaptureRoot is returned when no capture root directory is configured
	ErrMissingCaptureRoot = errors.New("capture root directory is not configured")
)
