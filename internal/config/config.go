// Package config 讀取服務設定：.env → YAML (CONFIG_FILE) → 環境變數，後者覆寫前者
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	LayoutPath = "path"
	LayoutBody = "body"

	GuardKey     = "key"
	GuardSession = "session"

	ErrorStyleStatus = "status"
	ErrorStyleInband = "inband"
)

type Config struct {
	HTTPAddr      string        `yaml:"http_addr"`
	DatabaseURL   string        `yaml:"database_url"`
	RunMigrations bool          `yaml:"run_migrations"`
	StoreTimeout  time.Duration `yaml:"store_timeout"`
	WorkerCount   int           `yaml:"worker_count"`

	Redis   RedisConfig   `yaml:"redis"`
	Session SessionConfig `yaml:"session"`
	Tables  TablesConfig  `yaml:"tables"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Influx  InfluxConfig  `yaml:"influx"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type SessionConfig struct {
	// TTL 0 表示 session 永不過期
	TTL          time.Duration `yaml:"ttl"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
	CookieSecure bool          `yaml:"cookie_secure"`
}

// TablesConfig 通用資料表 API 的部署方式
type TablesConfig struct {
	Layout     string `yaml:"layout"`
	Guard      string `yaml:"guard"`
	ErrorStyle string `yaml:"error_style"`
	APIKey     string `yaml:"api_key"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type InfluxConfig struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

var dotenvLoad = godotenv.Load

func defaults() *Config {
	return &Config{
		HTTPAddr:     ":8080",
		StoreTimeout: 5 * time.Second,
		WorkerCount:  1,
		Session:      SessionConfig{CacheTTL: 10 * time.Minute},
		Tables: TablesConfig{
			Layout:     LayoutPath,
			Guard:      GuardKey,
			ErrorStyle: ErrorStyleStatus,
		},
		MQTT:   MQTTConfig{ClientID: "smart-home-portal"},
		Influx: InfluxConfig{Bucket: "home"},
	}
}

// Load 組合設定並檢查必要欄位
func Load() (*Config, error) {
	// .env 不存在時忽略
	_ = dotenvLoad()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("讀取設定檔失敗: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("解析設定檔失敗: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Tables.Layout, "TABLE_API_LAYOUT")
	setString(&cfg.Tables.Guard, "TABLE_API_GUARD")
	setString(&cfg.Tables.ErrorStyle, "ERROR_STYLE")
	setString(&cfg.MQTT.Broker, "MQTT_BROKER")
	setString(&cfg.MQTT.ClientID, "MQTT_CLIENT_ID")
	setString(&cfg.MQTT.Username, "MQTT_USERNAME")
	setString(&cfg.MQTT.Password, "MQTT_PASSWORD")
	setString(&cfg.Influx.URL, "INFLUX_URL")
	setString(&cfg.Influx.Token, "INFLUX_TOKEN")
	setString(&cfg.Influx.Org, "INFLUX_ORG")
	setString(&cfg.Influx.Bucket, "INFLUX_BUCKET")

	// API_KEY 未設定時保持空字串，代表拒絕所有請求
	if v, ok := os.LookupEnv("API_KEY"); ok {
		cfg.Tables.APIKey = v
	}

	if err := setInt(&cfg.Redis.DB, "REDIS_DB"); err != nil {
		return err
	}
	if err := setInt(&cfg.WorkerCount, "WORKER_COUNT"); err != nil {
		return err
	}
	if err := setBool(&cfg.RunMigrations, "RUN_MIGRATIONS"); err != nil {
		return err
	}
	if err := setBool(&cfg.Session.CookieSecure, "COOKIE_SECURE"); err != nil {
		return err
	}
	if err := setDuration(&cfg.StoreTimeout, "STORE_TIMEOUT"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Session.TTL, "SESSION_TTL"); err != nil {
		return err
	}
	return setDuration(&cfg.Session.CacheTTL, "SESSION_CACHE_TTL")
}

// Validate 檢查設定是否完整且合法
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("環境變數 DATABASE_URL 未設定")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("環境變數 REDIS_ADDR 未設定")
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("無效的 WORKER_COUNT: %d", c.WorkerCount)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("無效的 STORE_TIMEOUT: %v", c.StoreTimeout)
	}
	if c.Session.TTL < 0 || c.Session.CacheTTL < 0 {
		return fmt.Errorf("無效的 session TTL")
	}
	switch c.Tables.Layout {
	case LayoutPath, LayoutBody:
	default:
		return fmt.Errorf("無效的 TABLE_API_LAYOUT: %q", c.Tables.Layout)
	}
	switch c.Tables.Guard {
	case GuardKey, GuardSession:
	default:
		return fmt.Errorf("無效的 TABLE_API_GUARD: %q", c.Tables.Guard)
	}
	switch c.Tables.ErrorStyle {
	case ErrorStyleStatus, ErrorStyleInband:
	default:
		return fmt.Errorf("無效的 ERROR_STYLE: %q", c.Tables.ErrorStyle)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("無效的 %s: %v", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("無效的 %s: %v", key, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("無效的 %s: %v", key, err)
	}
	*dst = d
	return nil
}
