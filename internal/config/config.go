package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	RepositoryInMemory = "inmemory"
	RepositoryPostgres = "postgres"

	envPrefix = "WISH"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Repository RepositoryConfig `mapstructure:"repository"`
	Tracker    TrackerConfig    `mapstructure:"tracker"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	RateLimitRPM    int           `mapstructure:"rate_limit_rpm"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConnections  int32         `mapstructure:"max_connections"`
	MinConnections  int32         `mapstructure:"min_connections"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ConnectAttempts uint64        `mapstructure:"connect_attempts"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

type RepositoryConfig struct {
	Type string `mapstructure:"type"` // "inmemory" or "postgres"
}

type TrackerConfig struct {
	Categories []string `mapstructure:"categories"`
	SeedFile   string   `mapstructure:"seed_file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.rate_limit_rpm", 100)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 2)
	v.SetDefault("database.idle_timeout", 5*time.Minute)
	v.SetDefault("database.connect_attempts", 5)

	v.SetDefault("logging.development", false)
	v.SetDefault("repository.type", RepositoryInMemory)

	v.SetDefault("tracker.categories", []string{"Travel", "Gadgets", "Personal", "Career"})
	v.SetDefault("tracker.seed_file", "")
}

// Load reads the YAML file at path. A missing file leaves the defaults in place;
// WISH_* environment variables override both, e.g. WISH_SERVER_PORT.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Repository.Type {
	case RepositoryInMemory:
	case RepositoryPostgres:
		if c.Database.URL == "" {
			return errors.New("config: database.url is required for the postgres repository")
		}
	default:
		return fmt.Errorf("config: unknown repository type %q", c.Repository.Type)
	}

	if c.Server.Port == "" {
		return errors.New("config: server.port is required")
	}
	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("config: database.min_connections (%d) exceeds max_connections (%d)",
			c.Database.MinConnections, c.Database.MaxConnections)
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
