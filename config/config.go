package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Vault      VaultConfig      `mapstructure:"vault"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Settlement SettlementConfig `mapstructure:"settlement"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

// VaultConfig holds the ledger's fixed parameters and the owner bootstrap
// credentials. BankCap and PerTxWithdrawLimit are in the smallest native
// denomination and must be non-zero; the ledger rejects zero values at
// construction.
type VaultConfig struct {
	BankCap            uint64 `mapstructure:"bank_cap"`
	PerTxWithdrawLimit uint64 `mapstructure:"per_tx_withdraw_limit"`
	OwnerUsername      string `mapstructure:"owner_username"`
	OwnerPassword      string `mapstructure:"owner_password"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// KafkaConfig holds the event feed settings. NotificationTopic carries the
// ledger's emitted events; CreditTopic is the inbound settlement-credit feed.
type KafkaConfig struct {
	Brokers           []string `mapstructure:"brokers"`
	NotificationTopic string   `mapstructure:"notification_topic"`
	CreditTopic       string   `mapstructure:"credit_topic"`
	ConsumerGroup     string   `mapstructure:"consumer_group"`
}

// SettlementConfig holds the outbound transfer endpoint settings.
type SettlementConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Secret   string        `mapstructure:"secret"` // HMAC signing key
	Timeout  time.Duration `mapstructure:"timeout"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: CVL_ (Custodial Vault
// Ledger). Nested keys use underscore: CVL_DATABASE_HOST, CVL_JWT_SECRET.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("vault.bank_cap", 0)
	v.SetDefault("vault.per_tx_withdraw_limit", 0)
	v.SetDefault("vault.owner_username", "owner")
	v.SetDefault("vault.owner_password", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "vault_ledger")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.notification_topic", "vault.notifications")
	v.SetDefault("kafka.credit_topic", "vault.credits")
	v.SetDefault("kafka.consumer_group", "vault-ledger")
	v.SetDefault("settlement.endpoint", "")
	v.SetDefault("settlement.secret", "")
	v.SetDefault("settlement.timeout", "10s")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "vault-ledger")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: CVL_DATABASE_HOST -> database.host
	v.SetEnvPrefix("CVL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
