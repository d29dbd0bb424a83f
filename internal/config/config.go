package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MQTTConfig MQTT配置
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
}

// Config demohub 配置
type Config struct {
	HTTP struct {
		Addr string
	}
	Log struct {
		Level  string
		Format string
	}

	RedisEnabled bool
	Redis        RedisConfig

	DBEnabled bool
	Database  DatabaseConfig

	MQTTEnabled bool
	MQTT        MQTTConfig

	Market struct {
		Interval     time.Duration
		Capacity     int
		StartBTC     float64
		StartETH     float64
		Cash         float64
		BTC          float64
		ETH          float64
		Stream       string // Redis stream 名称，空则不写 stream
		StreamMaxLen int64
		Topic        string // MQTT 主题
	}

	Car struct {
		Budget int
	}

	Mesh struct {
		ConverterURL string // 空则不支持 FBX
		Timeout      time.Duration
		Retries      int
		MaxBytes     int64
		Scale        float64
	}

	Search struct {
		ProductsFile string
	}

	House struct {
		HistoryKeyPrefix string
		HistoryTTL       time.Duration
	}

	// Session 空闲会话回收
	Session struct {
		IdleTimeout  time.Duration
		ReapInterval time.Duration
	}
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")
	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.RedisEnabled = getEnv("REDIS_ENABLED", "false") == "true"
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.DBEnabled = getEnv("DB_ENABLED", "false") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "demohub")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "2"), 2)

	cfg.MQTTEnabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "demohub")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	qos := parseInt(getEnv("MQTT_QOS", "0"), 0)
	if qos < 0 || qos > 2 {
		return nil, fmt.Errorf("MQTT_QOS must be 0, 1 or 2, got %d", qos)
	}
	cfg.MQTT.QoS = byte(qos)

	cfg.Market.Interval = parseDuration(getEnv("MARKET_INTERVAL", "1s"), time.Second)
	cfg.Market.Capacity = parseInt(getEnv("MARKET_CAPACITY", "100"), 100)
	cfg.Market.StartBTC = parseFloat(getEnv("MARKET_START_BTC", "50000"), 50000)
	cfg.Market.StartETH = parseFloat(getEnv("MARKET_START_ETH", "3000"), 3000)
	cfg.Market.Cash = parseFloat(getEnv("MARKET_CASH", "10000"), 10000)
	cfg.Market.BTC = parseFloat(getEnv("MARKET_BTC", "0.5"), 0.5)
	cfg.Market.ETH = parseFloat(getEnv("MARKET_ETH", "5"), 5)
	cfg.Market.Stream = getEnv("MARKET_STREAM", "demohub:market:ticks")
	cfg.Market.StreamMaxLen = int64(parseInt(getEnv("MARKET_STREAM_MAXLEN", "10000"), 10000))
	cfg.Market.Topic = getEnv("MARKET_TOPIC", "demohub/market/ticks")

	cfg.Car.Budget = parseInt(getEnv("CAR_BUDGET", "50000"), 50000)

	cfg.Mesh.ConverterURL = getEnv("MESH_CONVERTER_URL", "")
	cfg.Mesh.Timeout = parseDuration(getEnv("MESH_CONVERTER_TIMEOUT", "30s"), 30*time.Second)
	cfg.Mesh.Retries = parseInt(getEnv("MESH_CONVERTER_RETRIES", "2"), 2)
	cfg.Mesh.MaxBytes = int64(parseInt(getEnv("MESH_MAX_UPLOAD_BYTES", "52428800"), 52428800))
	cfg.Mesh.Scale = parseFloat(getEnv("MESH_SCALE", "0.1"), 0.1)

	cfg.Search.ProductsFile = getEnv("SEARCH_PRODUCTS_FILE", "")

	cfg.House.HistoryKeyPrefix = getEnv("HOUSE_HISTORY_PREFIX", "demohub:house:history:")
	cfg.House.HistoryTTL = parseDuration(getEnv("HOUSE_HISTORY_TTL", "24h"), 24*time.Hour)

	cfg.Session.IdleTimeout = parseDuration(getEnv("SESSION_IDLE_TIMEOUT", "30m"), 30*time.Minute)
	cfg.Session.ReapInterval = parseDuration(getEnv("SESSION_REAP_INTERVAL", "1m"), time.Minute)

	if cfg.Market.Capacity <= 0 {
		return nil, fmt.Errorf("MARKET_CAPACITY must be positive, got %d", cfg.Market.Capacity)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseFloat(s string, def float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
