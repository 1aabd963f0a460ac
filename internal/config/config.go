package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Stock    StockConfig
	Menu     MenuConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type StockConfig struct {
	TxTimeout        time.Duration
	MaxRetryAttempts int
}

type MenuConfig struct {
	CacheTTL        time.Duration
	SnapshotVersion string
}

func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 3306)
	viper.SetDefault("DB_USER", "fogon")
	viper.SetDefault("DB_PASSWORD", "secret")
	viper.SetDefault("DB_NAME", "fogon")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STOCK_TX_TIMEOUT", "5s")
	viper.SetDefault("STOCK_MAX_RETRY_ATTEMPTS", 3)
	viper.SetDefault("MENU_CACHE_TTL", "5m")
	viper.SetDefault("MENU_SNAPSHOT_VERSION", "1")

	connMaxLifetime, err := time.ParseDuration(viper.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, err
	}

	txTimeout, err := time.ParseDuration(viper.GetString("STOCK_TX_TIMEOUT"))
	if err != nil {
		return nil, err
	}

	cacheTTL, err := time.ParseDuration(viper.GetString("MENU_CACHE_TTL"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Stock: StockConfig{
			TxTimeout:        txTimeout,
			MaxRetryAttempts: viper.GetInt("STOCK_MAX_RETRY_ATTEMPTS"),
		},
		Menu: MenuConfig{
			CacheTTL:        cacheTTL,
			SnapshotVersion: viper.GetString("MENU_SNAPSHOT_VERSION"),
		},
	}

	return cfg, nil
}
