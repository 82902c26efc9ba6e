package config

import (
	"strconv"
	"time"
)

type TokenConfig interface {
	GetSigningSecret() string
	GetSessionTokenExpiry() time.Duration
}

type Token struct{}

var _ TokenConfig = Token{}

// GetSigningSecret returns the HMAC secret used to sign session tokens.
// Rotating it invalidates all outstanding tokens.
func (Token) GetSigningSecret() string {
	return GetEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production")
}

// GetSessionTokenExpiry returns the session token lifetime. Defaults to
// 12 hours.
func (Token) GetSessionTokenExpiry() time.Duration {
	minutes, err := strconv.Atoi(GetEnv("ACCESS_TOKEN_EXPIRE_MINUTES", "720"))
	if err != nil || minutes <= 0 {
		minutes = 720
	}
	return time.Duration(minutes) * time.Minute
}
