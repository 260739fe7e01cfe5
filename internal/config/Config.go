// This file contains the configuration layer shared by the API server and the headless editor.
//
// Values are read from the process environment through viper. A .env file, when present, is loaded into the
// environment first with godotenv, so docker-compose style secrets files keep working.

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	// ErrMissingJWTSecret is returned when the server is started without a signing secret.
	ErrMissingJWTSecret = errors.New("JWT_SECRET_KEY is not set")
	// ErrUnknownStorageBackend is returned when STORAGE_BACKEND is neither mongo nor sql.
	ErrUnknownStorageBackend = errors.New("unknown storage backend")
)

const (
	StorageMongo = "mongo"
	StorageSQL   = "sql"
)

// Config holds every setting of both binaries. Keys are the lower-cased environment variable names.
type Config struct {
	WebserverIP   string        `mapstructure:"webserver_ip"`
	WebserverPort int           `mapstructure:"webserver_port"`
	JWTSecret     string        `mapstructure:"jwt_secret_key"`
	JWTTTL        time.Duration `mapstructure:"jwt_ttl"`

	StorageBackend string `mapstructure:"storage_backend"`

	MongoUser     string `mapstructure:"mongo_initdb_root_username"`
	MongoPassword string `mapstructure:"mongo_initdb_root_password"`
	MongoIP       string `mapstructure:"mongo_ip"`
	MongoPort     int    `mapstructure:"mongo_port"`
	MongoDatabase string `mapstructure:"mongo_database"`

	DBHost     string `mapstructure:"db_host"`
	DBPort     int    `mapstructure:"db_port"`
	DBUser     string `mapstructure:"db_user"`
	DBPassword string `mapstructure:"db_password"`
	DBName     string `mapstructure:"db_name"`
	SQLitePath string `mapstructure:"sqlite_path"`

	RabbitMQIP   string `mapstructure:"rabbitmq_ip"`
	RabbitMQUser string `mapstructure:"rabbitmq_default_user"`
	RabbitMQPass string `mapstructure:"rabbitmq_default_pass"`

	LogFile        string `mapstructure:"log_file"`
	LogDevelopment bool   `mapstructure:"log_development"`
	LogDebug       bool   `mapstructure:"log_debug"`

	EditorBaseURL     string `mapstructure:"editor_base_url"`
	EditorSaveWorkers int    `mapstructure:"editor_save_workers"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("webserver_ip", "0.0.0.0")
	v.SetDefault("webserver_port", 5000)
	v.SetDefault("jwt_secret_key", "")
	v.SetDefault("jwt_ttl", time.Hour)

	v.SetDefault("storage_backend", StorageMongo)

	v.SetDefault("mongo_initdb_root_username", "")
	v.SetDefault("mongo_initdb_root_password", "")
	v.SetDefault("mongo_ip", "localhost")
	v.SetDefault("mongo_port", 27017)
	v.SetDefault("mongo_database", "environmentdb")

	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "postgres")
	v.SetDefault("db_name", "environmentdb")
	v.SetDefault("sqlite_path", "environment-creator.db")

	v.SetDefault("rabbitmq_ip", "")
	v.SetDefault("rabbitmq_default_user", "guest")
	v.SetDefault("rabbitmq_default_pass", "guest")

	v.SetDefault("log_file", "environment-creator.log")
	v.SetDefault("log_development", true)
	v.SetDefault("log_debug", false)

	v.SetDefault("editor_base_url", "http://localhost:5000")
	v.SetDefault("editor_save_workers", 4)
}

// Load reads the optional .env file at envFile and then the process environment.
// A missing envFile is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	return &cfg, nil
}

// ValidateServer checks the settings the API server cannot start without.
func (c *Config) ValidateServer() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	switch c.StorageBackend {
	case StorageMongo, StorageSQL:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorageBackend, c.StorageBackend)
	}
	return nil
}

// MongoURI builds the connection string for the Mongo backend.
func (c *Config) MongoURI() string {
	if c.MongoUser == "" {
		return fmt.Sprintf("mongodb://%s:%d", c.MongoIP, c.MongoPort)
	}
	return fmt.Sprintf("mongodb://%s:%s@%s:%d", c.MongoUser, c.MongoPassword, c.MongoIP, c.MongoPort)
}

// PostgresDSN builds the DSN for the SQL backend.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

// ListenAddress is the host:port the API server binds to.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.WebserverIP, c.WebserverPort)
}
