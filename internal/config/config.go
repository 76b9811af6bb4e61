package config

import (
	"fmt"
	"strings"

	"github.com/storefront-next/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Session  SessionConfig  `mapstructure:"session"`
	Cart     CartConfig     `mapstructure:"cart"`
	Promo    PromoConfig    `mapstructure:"promo"`
	Checkout CheckoutConfig `mapstructure:"checkout"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// SessionConfig 访客会话配置
type SessionConfig struct {
	Secret         string `mapstructure:"secret"`
	CookieName     string `mapstructure:"cookie_name"`
	CookieSecure   bool   `mapstructure:"cookie_secure"`
	ExpireHours    int    `mapstructure:"expire_hours"`
	IdleTTLMinutes int    `mapstructure:"idle_ttl_minutes"`
	SweepSeconds   int    `mapstructure:"sweep_seconds"`
}

// CartConfig 购物车配置
type CartConfig struct {
	ShippingFee string                `mapstructure:"shipping_fee"` // 固定运费（字符串金额）
	Persistence CartPersistenceConfig `mapstructure:"persistence"`
}

// CartPersistenceConfig 购物车持久化配置
type CartPersistenceConfig struct {
	Driver         string `mapstructure:"driver"`    // none / memory / redis / database
	Namespace      string `mapstructure:"namespace"` // 存储键前缀
	TTLHours       int    `mapstructure:"ttl_hours"` // Redis 过期时间（0 不过期）
	WriteTimeoutMS int    `mapstructure:"write_timeout_ms"`
	FlushTimeoutMS int    `mapstructure:"flush_timeout_ms"`
}

// PromoConfig 优惠码配置
type PromoConfig struct {
	Source            string            `mapstructure:"source"` // static / database / chain
	ValidationDelayMS int               `mapstructure:"validation_delay_ms"`
	Rules             []PromoRuleConfig `mapstructure:"rules"`
}

// PromoRuleConfig 静态优惠码规则
type PromoRuleConfig struct {
	Code   string `mapstructure:"code"`
	Kind   string `mapstructure:"kind"`   // valid / expired / invalid
	Amount string `mapstructure:"amount"` // 固定优惠金额
}

// CheckoutConfig 结账配置
type CheckoutConfig struct {
	Submitter     string `mapstructure:"submitter"` // mock / database
	MockLatencyMS int    `mapstructure:"mock_latency_ms"`
	MockFail      bool   `mapstructure:"mock_fail"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	PromoRateLimit RateLimitConfig `mapstructure:"promo_rate_limit"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	v := viper.GetViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")     // 从当前目录查找
	v.AddConfigPath("../")   // 如果从 cmd/server 运行
	v.AddConfigPath("./etc") // etc 文件夹

	SetDefaults(v)

	// 环境变量支持
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // server.port -> SERVER_PORT

	if err := v.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	cfg, err := Decode(v)
	if err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	return cfg
}

// Decode 将 viper 实例解析为配置结构
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults 写入默认值
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/storefront.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "sf")
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.queues", map[string]int{
		"default":  10,
		"critical": 5,
	})
	v.SetDefault("session.secret", "session-change-me-in-production")
	v.SetDefault("session.cookie_name", "sf_session")
	v.SetDefault("session.cookie_secure", false)
	v.SetDefault("session.expire_hours", 720)
	v.SetDefault("session.idle_ttl_minutes", 30)
	v.SetDefault("session.sweep_seconds", 60)
	v.SetDefault("cart.shipping_fee", "0")
	v.SetDefault("cart.persistence.driver", "database")
	v.SetDefault("cart.persistence.namespace", "storefront:cart_items")
	v.SetDefault("cart.persistence.ttl_hours", 720)
	v.SetDefault("cart.persistence.write_timeout_ms", 2000)
	v.SetDefault("cart.persistence.flush_timeout_ms", 5000)
	v.SetDefault("promo.source", "static")
	v.SetDefault("promo.validation_delay_ms", 800)
	v.SetDefault("promo.rules", []map[string]interface{}{
		{"code": "EXPIRED", "kind": "expired", "amount": "0"},
		{"code": "INVALID", "kind": "invalid", "amount": "0"},
		{"code": "SAVE40", "kind": "valid", "amount": "40"},
	})
	v.SetDefault("checkout.submitter", "database")
	v.SetDefault("checkout.mock_latency_ms", 500)
	v.SetDefault("checkout.mock_fail", false)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.promo_rate_limit.window_seconds", 300)
	v.SetDefault("security.promo_rate_limit.max_attempts", 10)
}
