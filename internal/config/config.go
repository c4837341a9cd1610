package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage" validate:"required"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
	Mail     MailConfig     `mapstructure:"mail" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
// URL is a postgres connection URL or, for the sqlite driver, a file path or DSN.
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	URL          string `mapstructure:"url" validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
	CodeLifetimeMinutes         int    `mapstructure:"code_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost                  int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// StorageConfig controls where uploaded images are written and how they are processed.
type StorageConfig struct {
	PublicDir         string `mapstructure:"public_dir" validate:"required"`
	MaxImageDimension int    `mapstructure:"max_image_dimension" validate:"required,gt=0"`
	MaxImages         int    `mapstructure:"max_images" validate:"required,gt=0,lte=10"`
}

// TaskConfig contains background task runner settings.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`
	QueueSize   int `mapstructure:"queue_size" validate:"required,gt=0"`
}

// MailConfig selects how verification codes are delivered.
type MailConfig struct {
	Driver   string `mapstructure:"driver" validate:"required,oneof=log smtp"`
	Host     string `mapstructure:"host" validate:"required_if=Driver smtp"`
	Port     int    `mapstructure:"port" validate:"gt=0,lt=65536"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from" validate:"required_if=Driver smtp"`
}
