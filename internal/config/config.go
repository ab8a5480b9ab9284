package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppName  string `mapstructure:"APP_NAME"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	HTTPPort string `mapstructure:"HTTP_PORT"`

	MySQLDSN  string `mapstructure:"MYSQL_DSN"`
	RedisAddr string `mapstructure:"REDIS_ADDR"`

	// Sweeper
	SweepInterval time.Duration `mapstructure:"SWEEP_INTERVAL"`

	// Per-channel hold windows
	OnlineHoldTTL    time.Duration `mapstructure:"ONLINE_HOLD_TTL"`
	CashHoldTTL      time.Duration `mapstructure:"CASH_HOLD_TTL"`
	BoxOfficeHoldTTL time.Duration `mapstructure:"BOX_OFFICE_HOLD_TTL"`

	// Stock-status thresholds (absolute unit counts)
	LowStockThreshold     int `mapstructure:"LOW_STOCK_THRESHOLD"`
	VeryLowStockThreshold int `mapstructure:"VERY_LOW_STOCK_THRESHOLD"`
	LowInventoryThreshold int `mapstructure:"LOW_INVENTORY_THRESHOLD"`
}

// Load reads configuration from an optional app.env file in path, overridden
// by the process environment, with sane local defaults for everything.
func Load(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.AutomaticEnv()

	v.SetDefault("APP_NAME", "steppers-inventory")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("MYSQL_DSN", "root:root@tcp(localhost:3306)/steppers?parseTime=true")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("SWEEP_INTERVAL", 2*time.Minute)
	v.SetDefault("ONLINE_HOLD_TTL", 15*time.Minute)
	v.SetDefault("CASH_HOLD_TTL", 4*time.Hour)
	v.SetDefault("BOX_OFFICE_HOLD_TTL", 30*time.Minute)
	v.SetDefault("LOW_STOCK_THRESHOLD", 25)
	v.SetDefault("VERY_LOW_STOCK_THRESHOLD", 5)
	v.SetDefault("LOW_INVENTORY_THRESHOLD", 10)

	// A missing config file is fine; env vars and defaults cover everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
