package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Port        string `mapstructure:"port"`
	AppName     string `mapstructure:"app_name"`
	StoreDriver string `mapstructure:"store_driver"`
	KeysFile    string `mapstructure:"keys_file"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`

	DB    DBConfig    `mapstructure:"db"`
	Redis RedisConfig `mapstructure:"redis"`

	// PortalURL and the timings below are read by the keyctl fetch client.
	PortalURL     string        `mapstructure:"portal_url"`
	Debounce      time.Duration `mapstructure:"debounce"`
	ToastLifetime time.Duration `mapstructure:"toast_lifetime"`
	HTTPTimeout   time.Duration `mapstructure:"http_timeout"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	Port     string `mapstructure:"port"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoadConfig reads .env, an optional config.yaml and the environment, in
// increasing order of precedence. DB_HOST overrides db.host and so on.
func LoadConfig() (*Config, error) {
	// a missing .env is fine, the real environment still applies
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// AutomaticEnv only resolves keys viper already knows about, so every key gets a default.
func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "4000")
	v.SetDefault("app_name", "keyportal")
	v.SetDefault("store_driver", StoreDriverPostgres)
	v.SetDefault("keys_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "keyportal")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("portal_url", "http://localhost:4000")
	v.SetDefault("debounce", 500*time.Millisecond)
	v.SetDefault("toast_lifetime", 5*time.Second)
	v.SetDefault("http_timeout", 10*time.Second)
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverRedis, StoreDriverMemory:
	default:
		return fmt.Errorf("unknown store_driver %q", c.StoreDriver)
	}
	if c.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	if c.Debounce < 0 || c.ToastLifetime <= 0 {
		return fmt.Errorf("debounce must be >= 0 and toast_lifetime > 0")
	}
	return nil
}

func (c DBConfig) DSN(dbName string) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, dbName, c.Port, c.SSLMode)
}
