package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config is the top-level configuration, loaded once at startup.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	MySQL         DatabaseConfig      `mapstructure:"mysql"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Log           LogConfig           `mapstructure:"log"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Push          PushConfig          `mapstructure:"push"`
	Captcha       CaptchaConfig       `mapstructure:"captcha"`
	Forum         ForumConfig         `mapstructure:"forum"`
	Region        RegionConfig        `mapstructure:"region"`
	Snowflake     SnowflakeConfig     `mapstructure:"snowflake"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name string     `mapstructure:"name"`
	Mode string     `mapstructure:"mode"` // debug | release
	Port int        `mapstructure:"port"`
	Cors CorsConfig `mapstructure:"cors"`
}

// CorsConfig lists the browser origins allowed to call the API.
type CorsConfig struct {
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

// JWTConfig controls token issuance.
type JWTConfig struct {
	SecretKey            string `mapstructure:"secret_key"`
	AccessExpireSeconds  int    `mapstructure:"access_expire_seconds"`
	RefreshExpireSeconds int    `mapstructure:"refresh_expire_seconds"`
	Issuer               string `mapstructure:"issuer"`
}

// DatabaseConfig holds the MySQL connection settings.
type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	Charset      string `mapstructure:"charset"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	LogLevel     string `mapstructure:"log_level"`
}

// DSN builds the MySQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database, c.Charset)
}

// RedisConfig holds the redis connection settings.
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

// Addr returns the host:port address.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ElasticsearchConfig holds the search cluster settings. When disabled,
// thread search falls back to SQL LIKE queries.
type ElasticsearchConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	URLs     []string `mapstructure:"urls"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
}

// LogConfig holds the zap/lumberjack settings.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
	Stdout     bool   `mapstructure:"stdout"`
}

// PushConfig holds the Web Push (VAPID) credentials. Push stays disabled
// until both keys are configured.
type PushConfig struct {
	VAPIDPublicKey  string `mapstructure:"vapid_public_key"`
	VAPIDPrivateKey string `mapstructure:"vapid_private_key"`
	Subject         string `mapstructure:"subject"` // mailto: contact sent to the push service
	TTLSeconds      int    `mapstructure:"ttl_seconds"`
}

// Enabled reports whether push delivery is configured.
func (c *PushConfig) Enabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}

// CaptchaConfig controls the registration captcha.
type CaptchaConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Length  int  `mapstructure:"length"`
	Width   int  `mapstructure:"width"`
	Height  int  `mapstructure:"height"`
}

// ForumConfig holds forum list and moderation tunables.
type ForumConfig struct {
	DefaultPageSize      int `mapstructure:"default_page_size"`
	MaxPageSize          int `mapstructure:"max_page_size"`
	FlaggedPageSize      int `mapstructure:"flagged_page_size"`
	ViewDedupMinutes     int `mapstructure:"view_dedup_minutes"`
	NotificationKeepDays int `mapstructure:"notification_keep_days"`
}

// RegionConfig points at the ip2region xdb file used for login logs.
type RegionConfig struct {
	XDBPath string `mapstructure:"xdb_path"`
}

// SnowflakeConfig seeds the reference-code generator.
type SnowflakeConfig struct {
	MachineID int64 `mapstructure:"machine_id"`
}

// GlobalConfig is the process-wide configuration instance.
var GlobalConfig *Config

// Init loads config.yaml from configPath, applies env overrides and watches
// the file for changes.
func Init(configPath string) error {
	v := viper.New()
	v.AddConfigPath(configPath)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)
	GlobalConfig = &cfg

	v.WatchConfig()
	v.OnConfigChange(func(in fsnotify.Event) {
		var next Config
		if err := v.Unmarshal(&next); err != nil {
			return
		}
		applyDefaults(&next)
		GlobalConfig = &next
	})

	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Port == 0 {
		cfg.App.Port = 3001
	}
	if cfg.Forum.DefaultPageSize <= 0 {
		cfg.Forum.DefaultPageSize = 10
	}
	if cfg.Forum.MaxPageSize <= 0 {
		cfg.Forum.MaxPageSize = 100
	}
	if cfg.Forum.FlaggedPageSize <= 0 {
		cfg.Forum.FlaggedPageSize = 50
	}
	if cfg.Forum.ViewDedupMinutes <= 0 {
		cfg.Forum.ViewDedupMinutes = 10
	}
	if cfg.Forum.NotificationKeepDays <= 0 {
		cfg.Forum.NotificationKeepDays = 30
	}
	if cfg.JWT.AccessExpireSeconds <= 0 {
		cfg.JWT.AccessExpireSeconds = 900
	}
	if cfg.JWT.RefreshExpireSeconds <= 0 {
		cfg.JWT.RefreshExpireSeconds = 7 * 24 * 3600
	}
	if cfg.Push.TTLSeconds <= 0 {
		cfg.Push.TTLSeconds = 60
	}
}

// GetConfig returns the global configuration.
func GetConfig() *Config {
	return GlobalConfig
}
