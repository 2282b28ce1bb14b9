package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
		Mode string
	}
	Database struct {
		Driver string
		Path   string
	}
	Auth struct {
		JWTSecret       string
		TokenTTLMinutes int
		SeedDemoUser    bool
		DemoEmail       string
		DemoAPIKey      string
		DemoPassword    string
	}
	Lock struct {
		Backend    string
		TTLSeconds int
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Receipts struct {
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
		Workers   int
	}
	AWS struct {
		Profile string
	}
	Log struct {
		Level string
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// existing environment wins over .env
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PARKING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/parking.db")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlminutes", 60)
	v.SetDefault("auth.seeddemouser", true)
	v.SetDefault("auth.demoemail", "demo@iberopuebla.mx")
	v.SetDefault("auth.demoapikey", "testkey")
	v.SetDefault("auth.demopassword", "")
	v.SetDefault("lock.backend", "local")
	v.SetDefault("lock.ttlseconds", 10)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("receipts.bucket", "")
	v.SetDefault("receipts.keyprefix", "parking-receipts")
	v.SetDefault("receipts.region", "us-east-1")
	v.SetDefault("receipts.endpoint", "")
	v.SetDefault("receipts.workers", 2)
	v.SetDefault("aws.profile", "")
	v.SetDefault("log.level", "info")
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Lock.Backend {
	case "local", "redis":
	default:
		return fmt.Errorf("unsupported lock backend %q", c.Lock.Backend)
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		return fmt.Errorf("auth token ttl must be positive")
	}
	return nil
}
