package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. RUNEBOARD_SERVER_HOST.
const EnvPrefix = "RUNEBOARD"

// DefaultHost is used when neither the config nor the environment names one.
const DefaultHost = "localhost:8000"

// Config holds the client configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Player  PlayerConfig  `mapstructure:"player"`
	Client  ClientConfig  `mapstructure:"client"`
	Logging LoggingConfig `mapstructure:"logging"`
	Journal JournalConfig `mapstructure:"journal"`
}

// ServerConfig locates the match room.
type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Secure bool   `mapstructure:"secure"`
	Room   string `mapstructure:"room"`
	Path   string `mapstructure:"path"`
}

// URL returns the websocket URL of the room.
func (s ServerConfig) URL() string {
	scheme := "ws"
	if s.Secure {
		scheme = "wss"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   s.Host,
		Path:   strings.TrimRight(s.Path, "/") + "/" + s.Room,
	}
	return u.String()
}

// PlayerConfig identifies the local player.
type PlayerConfig struct {
	Username string `mapstructure:"username"`
}

// ClientConfig tunes the connection and the reconciler.
type ClientConfig struct {
	SettleDelay  time.Duration `mapstructure:"settle_delay"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PingInterval time.Duration `mapstructure:"ping_interval"`
	ReadLimit    int64         `mapstructure:"read_limit"`
	OutboxSize   int           `mapstructure:"outbox_size"`
}

// LoggingConfig selects the log level and encoding.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// JournalConfig says where finished match journals go. Both are optional.
type JournalConfig struct {
	Dir      string `mapstructure:"dir"`
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// Load reads configuration from path, a .env file in the working directory,
// and RUNEBOARD_ environment variables, in increasing precedence. An empty
// path skips the file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// API_HOST is what the browser client was configured with
	if cfg.Server.Host == "" {
		cfg.Server.Host = os.Getenv("API_HOST")
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultHost
	}
	if cfg.Player.Username == "" {
		cfg.Player.Username = "player-" + uuid.NewString()[:8]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.secure", false)
	v.SetDefault("server.room", "default")
	v.SetDefault("server.path", "/game")

	v.SetDefault("player.username", "")

	v.SetDefault("client.settle_delay", 300*time.Millisecond)
	v.SetDefault("client.write_timeout", 5*time.Second)
	v.SetDefault("client.ping_interval", 30*time.Second)
	v.SetDefault("client.read_limit", int64(1<<20))
	v.SetDefault("client.outbox_size", 16)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("journal.dir", "")
	v.SetDefault("journal.dsn", "")
	v.SetDefault("journal.max_conns", 4)
}

// Validate checks the values that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return errors.New("server.host is required")
	}
	if c.Server.Room == "" {
		return errors.New("server.room is required")
	}
	if c.Client.SettleDelay < 0 {
		return fmt.Errorf("client.settle_delay must not be negative, got %s", c.Client.SettleDelay)
	}
	if c.Client.WriteTimeout <= 0 {
		return fmt.Errorf("client.write_timeout must be positive, got %s", c.Client.WriteTimeout)
	}
	if c.Client.ReadLimit <= 0 {
		return fmt.Errorf("client.read_limit must be positive, got %d", c.Client.ReadLimit)
	}
	if c.Client.OutboxSize <= 0 {
		return fmt.Errorf("client.outbox_size must be positive, got %d", c.Client.OutboxSize)
	}
	return nil
}
