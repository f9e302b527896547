package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 配置加载（API密钥、数据库、日志等）

const (
	KalshiEnvDemo  = "demo"
	KalshiEnvProd  = "prod"
	KalshiEnvPaper = "paper"

	kalshiProdURL = "https://trading.kalshi.com/trade-api/v2"
	kalshiDemoURL = "https://demo-api.kalshi.co/trade-api/v2"
)

type Kalshi struct {
	Env        string        `yaml:"env"` // demo / prod / paper
	BaseURL    string        `yaml:"base-url"`
	ApiKeyID   string        `yaml:"api-key-id"`
	ApiKey     string        `yaml:"api-key"`      // PEM 文本或 base64 编码的 PEM
	ApiKeyPath string        `yaml:"api-key-path"` // 优先级低于 ApiKey
	Timeout    time.Duration `yaml:"timeout"`
	RateLimit  float64       `yaml:"rate-limit"` // 每秒请求数，0 表示不限制
	RateBurst  int           `yaml:"rate-burst"`

	PaperBalance int64 `yaml:"paper-balance"` // paper 模式初始资金，单位美分
}

// URL 根据环境选择接口地址
func (k Kalshi) URL() string {
	if k.BaseURL != "" {
		return strings.TrimRight(k.BaseURL, "/")
	}
	if k.Env == KalshiEnvProd {
		return kalshiProdURL
	}
	return kalshiDemoURL
}

// PrivateKey 返回私钥内容，未配置时尝试读取文件
func (k Kalshi) PrivateKey() (string, error) {
	if k.ApiKey != "" || k.ApiKeyPath == "" {
		return k.ApiKey, nil
	}
	data, err := os.ReadFile(k.ApiKeyPath)
	if err != nil {
		return "", fmt.Errorf("read kalshi private key %s: %w", k.ApiKeyPath, err)
	}
	return string(data), nil
}

type Db struct {
	Driver   string `yaml:"driver"` // postgres / mysql
	DSN      string `yaml:"dsn"`
	DbName   string `yaml:"dbname"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	Migrate  bool   `yaml:"migrate"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	FileName   string `yaml:"file-name"`
	TimeFormat string `yaml:"time-format"`
	MaxSize    int    `yaml:"max-size"`
	MaxBackups int    `yaml:"max-backups"`
	MaxAge     int    `yaml:"max-age"`
	Compress   bool   `yaml:"compress"`
	LocalTime  bool   `yaml:"local-time"`
	Console    bool   `yaml:"console"`
}

// RedisConfig is used to configure redis
type RedisConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Addr         string `yaml:"address"`
	Password     string `yaml:"password"`
	Db           int    `yaml:"db"`
	PoolSize     int    `yaml:"pool-size"`
	MinIdleConns int    `yaml:"min-idle-conns"`
	IdleTimeout  int    `yaml:"idle-timeout"`
	MarketKey    string `yaml:"market-key"`
}

type KafkaConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Broker        string `yaml:"broker"`
	DecisionTopic string `yaml:"decision-topic"`
}

type EngineConfig struct {
	SnapshotInterval time.Duration `yaml:"snapshot-interval"`
	SeedDefault      bool          `yaml:"seed-default"`
	DecisionLog      string        `yaml:"decision-log"` // 决策 JSON 行日志，kafka 关闭时使用
}

type Config struct {
	AppName      string `yaml:"app_name"`
	Listen       string `yaml:"listen"`
	Mode         string `yaml:"mode"`
	MaxPingCount int    `yaml:"max-ping-count"`

	Kalshi Kalshi       `yaml:"kalshi"`
	Db     `yaml:"database"`
	Log    LogConfig    `yaml:"log"`
	Redis  RedisConfig  `yaml:"redis"`
	Kafka  KafkaConfig  `yaml:"kafka"`
	Engine EngineConfig `yaml:"engine"`
}

var AppConfig Config

// LoadConfig 读取 yaml 配置，随后使用环境变量（含 .env）覆盖
func LoadConfig(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	AppConfig = *cfg
	return nil
}

// Load 读取配置但不修改全局变量，方便测试
func Load(path string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Read config file error %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("Unmarshal config yaml error: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Kalshi.Env, "KALSHI_ENV")
	setString(&c.Kalshi.ApiKeyID, "KALSHI_API_KEY_ID")
	setString(&c.Kalshi.ApiKey, "KALSHI_API_KEY")
	setString(&c.Kalshi.ApiKeyPath, "KALSHI_API_KEY_PATH")

	setString(&c.Db.Driver, "DB_DRIVER")
	setString(&c.Db.DSN, "DATABASE_URL")
	setString(&c.Db.Username, "DB_USER")
	setString(&c.Db.Password, "DB_PASSWORD")
	setString(&c.Db.Host, "DB_HOST")
	setString(&c.Db.Port, "DB_PORT")
	setString(&c.Db.DbName, "DB_NAME")

	redisHost, redisPort := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")
	if redisHost != "" && redisPort != "" {
		c.Redis.Addr = fmt.Sprintf("%s:%s", redisHost, redisPort)
	}
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Kafka.Broker, "KAFKA_BROKER")

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ENGINE_SEED_DEFAULT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Engine.SeedDefault = b
		}
	}
}

func (c *Config) applyDefaults() {
	if c.AppName == "" {
		c.AppName = "kalshi-trader"
	}
	if c.Listen == "" {
		c.Listen = ":8000"
	}
	if c.MaxPingCount <= 0 {
		c.MaxPingCount = 10
	}
	c.Kalshi.Env = strings.ToLower(strings.TrimSpace(c.Kalshi.Env))
	if c.Kalshi.Env == "" {
		c.Kalshi.Env = KalshiEnvDemo
	}
	if c.Kalshi.Timeout <= 0 {
		c.Kalshi.Timeout = 10 * time.Second
	}
	if c.Kalshi.PaperBalance <= 0 {
		c.Kalshi.PaperBalance = 100000
	}
	if c.Kalshi.RateBurst <= 0 {
		c.Kalshi.RateBurst = 1
	}
	if c.Db.Driver == "" {
		c.Db.Driver = "postgres"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Redis.MarketKey == "" {
		c.Redis.MarketKey = "kalshi:market_state"
	}
	if c.Kafka.DecisionTopic == "" {
		c.Kafka.DecisionTopic = "trading.decisions"
	}
	if c.Engine.SnapshotInterval <= 0 {
		c.Engine.SnapshotInterval = 60 * time.Second
	}
}

// Validate 检查枚举类配置
func (c *Config) Validate() error {
	switch c.Kalshi.Env {
	case KalshiEnvDemo, KalshiEnvProd, KalshiEnvPaper:
	default:
		return fmt.Errorf("unsupported kalshi env %q (want demo, prod or paper)", c.Kalshi.Env)
	}
	switch c.Db.Driver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Db.Driver)
	}
	if c.Kafka.Enabled && c.Kafka.Broker == "" {
		return fmt.Errorf("kafka enabled but broker is empty")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
