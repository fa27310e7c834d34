package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	BackendConfig
	StoreConfig
	MailConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type BackendConfig interface {
	GetBackendURL() string
	GetBackendTimeout() time.Duration
	GetBackendMaxTries() uint
}

type StoreConfig interface {
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKeyPrefix() string
	GetSessionTokenTTL() time.Duration
	GetAccountCacheTTL() time.Duration
}

type MailConfig interface {
	GetSmtpHost() string
	GetSmtpPort() int
	GetSmtpAccount() string
	GetSmtpPassword() string
	GetSmtpSender() string
	GetSmtpTLSMode() string
}

type mainConfig struct {
	EnvVars
	Cors
	OAuth
	Backend
	Store
	Mail
}

// New returns the environment backed configuration. Any files given are
// loaded into the environment first; variables already set win.
func New(envFiles ...string) (Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, errors.Wrap(err, "[config.New] load env files")
		}
	}
	return mainConfig{}, nil
}
