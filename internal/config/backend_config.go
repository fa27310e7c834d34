package config

import "time"

type Backend struct{}

var _ BackendConfig = Backend{}

func (Backend) GetBackendURL() string {
	return GetEnv("BACKEND_URL", "http://localhost:9000")
}

func (Backend) GetBackendTimeout() time.Duration {
	return GetEnvDuration("BACKEND_TIMEOUT", 10*time.Second)
}

// GetBackendMaxTries bounds attempts of read-only backend calls.
func (Backend) GetBackendMaxTries() uint {
	n := GetEnvInt("BACKEND_MAX_TRIES", 3)
	if n < 1 {
		return 1
	}
	return uint(n)
}
