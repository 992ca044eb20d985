package config

// Config represents the resolved callshot configuration. The capture engine
// consumes these values after loading; they are immutable for the life of
// the process.
type Config struct {
	// Trigger is the class name whose entry starts a capture session
	Trigger string `json:"trigger" mapstructure:"trigger"`

	// CaptureRoot is the directory for day buckets and capture files
	CaptureRoot string `json:"capture_root" mapstructure:"capture_root"`

	// FullClassNames records fully-qualified class names instead of short ones
	FullClassNames bool `json:"full_class_names" mapstructure:"full_class_names"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// LoggingConfig holds diagnostics logging configuration
type LoggingConfig struct {
	Level   string `json:"level" mapstructure:"level"`
	File    string `json:"file" mapstructure:"file"`
	Console bool   `json:"console" mapstructure:"console"`
	Pretty  bool   `json:"pretty" mapstructure:"pretty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			Pretty:  true,
		},
	}
}

// Validate checks that the configuration is complete enough to capture
func (c *Config) Validate() error {
	if c.Trigger == "" {
		return ErrMissingTrigger
	}
	if c.CaptureRoot == "" {
		return ErrMissingCaptureRoot
	}
	return nil
}
