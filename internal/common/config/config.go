// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	OAuth      OAuthConfig      `mapstructure:"oauth"`
	Discord    DiscordConfig    `mapstructure:"discord"`
	Moderation ModerationConfig `mapstructure:"moderation"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address        string `mapstructure:"address"`
	ReadTimeout    int    `mapstructure:"read_timeout"`    // milliseconds
	WriteTimeout   int    `mapstructure:"write_timeout"`   // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds, per-handler budget
}

// OAuthConfig holds the identity-provider application credentials used for
// the authorization-code exchange.
type OAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_uri"`
	Scope        string `mapstructure:"scope"`
}

// DiscordConfig holds the bot credentials and target guild wiring.
type DiscordConfig struct {
	BotToken       string `mapstructure:"bot_token"`
	APIBaseURL     string `mapstructure:"api_base_url"`
	GuildID        string `mapstructure:"guild_id"`
	StaffChannelID string `mapstructure:"staff_channel_id"`
	PublicKey      string `mapstructure:"public_key"` // hex, verifies interaction callbacks
	Timeout        int    `mapstructure:"timeout"`    // milliseconds
}

// ModerationConfig carries the review-policy knobs. These are deliberately
// configuration rather than constants baked into the lifecycle controller.
type ModerationConfig struct {
	Cooldown       time.Duration `mapstructure:"cooldown"`
	ApproveRoleIDs []string      `mapstructure:"approve_role_ids"`
}

type StorageConfig struct {
	Backend  string         `mapstructure:"backend"` // memory | redis | postgres
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
