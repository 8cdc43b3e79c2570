package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Security SecurityConfig `mapstructure:"security"`
	Bancho   BanchoConfig   `mapstructure:"bancho"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Panel    PanelConfig    `mapstructure:"panel"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port    int    `mapstructure:"port"`
	Debug   bool   `mapstructure:"debug"`
	BaseURL string `mapstructure:"base_url"` // public panel URL, used in webhook links
	// AvatarURL is the avatar server root; webhook authors link to <avatar_url>/<user_id>.
	AvatarURL string `mapstructure:"avatar_url"`
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
	// AutoMigrate creates missing tables at startup. SQLite always migrates;
	// against the shared MySQL schema it is opt-in.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
	LocalPubSubBuf  int           `mapstructure:"local_pubsub_buf"`
}

type SecurityConfig struct {
	// SessionSecret signs the session cookie. It must be stable across
	// restarts or every live session is invalidated on boot.
	SessionSecret  string        `mapstructure:"session_secret"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	CookieName     string        `mapstructure:"cookie_name"`
	CookieSecure   bool          `mapstructure:"cookie_secure"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
	// AllowedIPs restricts the whole panel to these client IPs. Empty allows all.
	AllowedIPs []string `mapstructure:"allowed_ips"`
}

type BanchoConfig struct {
	BotURL          string        `mapstructure:"bot_url"`
	BotAPIKey       string        `mapstructure:"bot_api_key"`
	BotUserID       int64         `mapstructure:"bot_user_id"`
	AnnounceChannel string        `mapstructure:"announce_channel"`
	HTTPTimeout     time.Duration `mapstructure:"http_timeout"`
}

type WebhookConfig struct {
	RankedURL string `mapstructure:"ranked_url"`
	AdminURL  string `mapstructure:"admin_url"`
}

type PanelConfig struct {
	DonorBadgeID       int64         `mapstructure:"donor_badge_id"`
	PageSize           int           `mapstructure:"page_size"`
	OnlinePollInterval time.Duration `mapstructure:"online_poll_interval"`
	OnlineHistorySize  int           `mapstructure:"online_history_size"`
	FreezeDays         int           `mapstructure:"freeze_days"`
	DonorSweepInterval time.Duration `mapstructure:"donor_sweep_interval"`
	Via                string        `mapstructure:"via"` // RAP log "through" tag
}

type LogConfig struct {
	ErrorFile  string `mapstructure:"error_file"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// ErrNoSessionSecret is returned by Load when security.session_secret is empty.
var ErrNoSessionSecret = errors.New("config: security.session_secret must be set")

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if cfg.Security.SessionSecret == "" {
		return nil, ErrNoSessionSecret
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.avatar_url", "https://a.ripple.moe")
	v.SetDefault("database.mode", "mysql")
	v.SetDefault("database.sqlite_path", "./data/panel.db")
	v.SetDefault("database.mysql_max_open", 20)
	v.SetDefault("database.mysql_max_idle", 5)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("cache.local_pubsub_buf", 256)
	v.SetDefault("security.session_ttl", "168h")
	v.SetDefault("security.cookie_name", "rap_session")
	v.SetDefault("security.rate_limit_rps", 20)
	v.SetDefault("security.rate_limit_burst", 40)
	v.SetDefault("bancho.bot_user_id", 999)
	v.SetDefault("bancho.announce_channel", "#announce")
	v.SetDefault("bancho.http_timeout", "5s")
	v.SetDefault("panel.donor_badge_id", 1002)
	v.SetDefault("panel.page_size", 50)
	v.SetDefault("panel.online_poll_interval", "5m")
	v.SetDefault("panel.online_history_size", 100)
	v.SetDefault("panel.freeze_days", 5)
	v.SetDefault("panel.donor_sweep_interval", "1h")
	v.SetDefault("panel.via", "RAP")
	v.SetDefault("log.error_file", "./logs/errors.log")
	v.SetDefault("log.max_size", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)
}
