package config

type Config interface {
	EnvConfig
	CorsConfig
	TokenConfig
	RedditConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetDefaultUserAgent() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Token
	Reddit
}

func New() Config {
	return mainConfig{}
}
