// Package config exposes the client's environment-derived settings.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config carries everything the CLI needs to wire the session manager.
type Config interface {
	GetAppName() string
	GetAPIBaseURL() string
	GetDataFolder() string
	GetStoragePrefix() string
	GetSessionTimeout() time.Duration
	GetRefreshThreshold() time.Duration
}

type EnvVars struct{}

var _ Config = EnvVars{}

func New() Config {
	return EnvVars{}
}

func (EnvVars) GetAppName() string {
	return GetEnv("APP_NAME", "Bullseye")
}

func (EnvVars) GetAPIBaseURL() string {
	return GetEnv("API_BASE_URL", "http://localhost:8000")
}

func (EnvVars) GetDataFolder() string {
	if folder := GetEnv("DATA_FOLDER", ""); folder != "" {
		return folder
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "bullseye")
}

func (EnvVars) GetStoragePrefix() string {
	return GetEnv("STORAGE_PREFIX", "bullseye")
}

func (EnvVars) GetSessionTimeout() time.Duration {
	return getDuration("SESSION_TIMEOUT", 30*time.Minute)
}

func (EnvVars) GetRefreshThreshold() time.Duration {
	return getDuration("REFRESH_THRESHOLD", 5*time.Minute)
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
