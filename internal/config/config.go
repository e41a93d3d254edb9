package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileEnvName = "STOREFRONT_CONFIG_FILE"
	envPrefix         = "STOREFRONT"
	minSecretLength   = 32
)

type backend struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type visitor struct {
	Secret     string        `mapstructure:"secret"`
	CookieName string        `mapstructure:"cookie_name"`
	TTL        time.Duration `mapstructure:"ttl"`
	IdleTTL    time.Duration `mapstructure:"idle_ttl"`
}

type redisStorage struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type postgresStorage struct {
	DSN string `mapstructure:"dsn"`
}

type storage struct {
	Driver   string          `mapstructure:"driver"`
	SealKey  string          `mapstructure:"seal_key"`
	Redis    redisStorage    `mapstructure:"redis"`
	Postgres postgresStorage `mapstructure:"postgres"`
}

type catalog struct {
	PageSize int `mapstructure:"page_size"`
	Window   int `mapstructure:"window"`
}

type blog struct {
	PageSize int `mapstructure:"page_size"`
	Latest   int `mapstructure:"latest"`
}

type bestSellers struct {
	TopN int `mapstructure:"top_n"`
}

type broker struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	Group   string   `mapstructure:"group"`
}

type features struct {
	ListingQuickAdd bool `mapstructure:"listing_quick_add"`
}

type cors struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Config struct {
	LogLevel       string      `mapstructure:"log_level"`
	HTTPServerAddr string      `mapstructure:"http_server_addr"`
	Backend        backend     `mapstructure:"backend"`
	Visitor        visitor     `mapstructure:"visitor"`
	Storage        storage     `mapstructure:"storage"`
	Catalog        catalog     `mapstructure:"catalog"`
	Blog           blog        `mapstructure:"blog"`
	BestSellers    bestSellers `mapstructure:"best_sellers"`
	Broker         broker      `mapstructure:"broker"`
	Features       features    `mapstructure:"features"`
	CORS           cors        `mapstructure:"cors"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_server_addr", ":8080")

	v.SetDefault("backend.base_url", "http://localhost:5000")
	v.SetDefault("backend.timeout", 0)

	v.SetDefault("visitor.secret", "")
	v.SetDefault("visitor.cookie_name", "sid")
	v.SetDefault("visitor.ttl", 7*24*time.Hour)
	v.SetDefault("visitor.idle_ttl", 2*time.Hour)

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.seal_key", "")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", "storefront")
	v.SetDefault("storage.postgres.dsn", "")

	v.SetDefault("catalog.page_size", 20)
	v.SetDefault("catalog.window", 5)
	v.SetDefault("blog.page_size", 9)
	v.SetDefault("blog.latest", 3)
	v.SetDefault("best_sellers.top_n", 8)

	v.SetDefault("broker.enabled", false)
	v.SetDefault("broker.brokers", []string{})
	v.SetDefault("broker.topic", "storefront-activity")
	v.SetDefault("broker.group", "storefront-activity-log")

	v.SetDefault("features.listing_quick_add", false)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
}

// Load reads defaults, then the config file chosen by --config or
// STOREFRONT_CONFIG_FILE, then STOREFRONT_* environment overrides.
func Load(args []string) (Config, error) {
	const op = "config.Load"

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := configFilepath(args)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}
	return cfg, nil
}

func configFilepath(args []string) (string, error) {
	cmdLine := pflag.NewFlagSet("storefront", pflag.ContinueOnError)
	arg := cmdLine.String("config", "", "config file")
	if err := cmdLine.Parse(args); err != nil {
		return "", err
	}
	if env, ok := os.LookupEnv(configFileEnvName); ok && *arg == "" {
		return env, nil
	}
	return *arg, nil
}

func (c Config) Validate() error {
	var errs []error

	if len(c.Visitor.Secret) < minSecretLength {
		errs = append(errs, fmt.Errorf("visitor.secret: at least %d characters required", minSecretLength))
	}
	if c.Visitor.CookieName == "" {
		errs = append(errs, errors.New("visitor.cookie_name: required"))
	}
	if c.Backend.BaseURL == "" {
		errs = append(errs, errors.New("backend.base_url: required"))
	}

	switch c.Storage.Driver {
	case "memory":
	case "redis":
		if c.Storage.Redis.Addr == "" {
			errs = append(errs, errors.New("storage.redis.addr: required for the redis driver"))
		}
	case "postgres":
		if c.Storage.Postgres.DSN == "" {
			errs = append(errs, errors.New("storage.postgres.dsn: required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver))
	}

	if c.Broker.Enabled && len(c.Broker.Brokers) == 0 {
		errs = append(errs, errors.New("broker.brokers: required when the broker is enabled"))
	}
	if c.Catalog.PageSize <= 0 || c.Blog.PageSize <= 0 {
		errs = append(errs, errors.New("page_size: must be positive"))
	}

	return errors.Join(errs...)
}
