package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the console's configuration values. Tags like
// `envconfig:"HTTP_SERVER_PORT"` specify the environment variable name,
// `default:""` provides a fallback and `required:"true"` makes a variable
// mandatory.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	HttpServer ServerConfig
	Backend    BackendConfig
	Upload     UploadConfig
}

// ServerConfig holds the console's own HTTP server settings.
type ServerConfig struct {
	Port         string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	TimeoutRead  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
}

// BackendConfig points the console at the Kilo Fresh REST backend.
type BackendConfig struct {
	BaseURL string        `envconfig:"BACKEND_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"30s"`
}

// UploadConfig bounds image uploads staged through the console.
type UploadConfig struct {
	// MaxFileSize is the per-file ceiling for staged images, 5 MiB by
	// default.
	MaxFileSize int64 `envconfig:"UPLOAD_MAX_FILE_SIZE" default:"5242880"`
	// MaxRequestSize caps a whole multipart request (all images plus fields).
	MaxRequestSize int64 `envconfig:"UPLOAD_MAX_REQUEST_SIZE" default:"33554432"`
}

var cfg Config

// Load initializes the configuration from environment variables. It should be
// called once during startup.
func Load() (*Config, error) {
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	return &cfg, nil
}
