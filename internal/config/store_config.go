package config

import "time"

type Store struct{}

var _ StoreConfig = Store{}

func (Store) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Store) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Store) GetRedisDB() int {
	return GetEnvInt("REDIS_DB", 0)
}

func (Store) GetRedisKeyPrefix() string {
	return GetEnv("REDIS_KEY_PREFIX", "")
}

func (Store) GetSessionTokenTTL() time.Duration {
	return GetEnvDuration("SESSION_TOKEN_TTL", 28*24*time.Hour)
}

func (Store) GetAccountCacheTTL() time.Duration {
	return GetEnvDuration("ACCOUNT_CACHE_TTL", time.Minute)
}
