package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-yaml/yaml"
	"github.com/pkg/errors"

	"github.com/totegamma/orderdemo/client"
	"github.com/totegamma/orderdemo/internal/domain"
)

const (
	EnvProfile        = "ORDERDEMO_PROFILE"
	EnvUserServiceURL = "ORDERDEMO_USER_SERVICE_URL"
	EnvPostgresDsn    = "ORDERDEMO_POSTGRES_DSN"
	EnvRedisAddr      = "ORDERDEMO_REDIS_ADDR"
)

type Config struct {
	Server       Server       `yaml:"server"`
	UserService  UserService  `yaml:"userService"`
	OrderService OrderService `yaml:"orderService"`
	BoardService BoardService `yaml:"boardService"`
}

type Server struct {
	LogFormat     string `yaml:"logFormat"` // json, text
	LogLevel      string `yaml:"logLevel"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type UserService struct {
	Listen      string `yaml:"listen"`
	Store       string `yaml:"store"` // memory, postgres, redis
	PostgresDsn string `yaml:"postgresDsn"`
	RedisAddr   string `yaml:"redisAddr"`
	RedisDB     int    `yaml:"redisDB"`
}

type OrderService struct {
	Listen     string     `yaml:"listen"`
	UserClient UserClient `yaml:"userClient"`
}

type UserClient struct {
	Type             string `yaml:"type"` // stub, rest
	URL              string `yaml:"url"`
	ConnectTimeoutMs int    `yaml:"connectTimeoutMs"`
	ReadTimeoutMs    int    `yaml:"readTimeoutMs"`
	FollowRedirects  *bool  `yaml:"followRedirects"`
	Retry            Retry  `yaml:"retry"`
}

type Retry struct {
	PeriodMs    int `yaml:"periodMs"`
	MaxPeriodMs int `yaml:"maxPeriodMs"`
	MaxAttempts int `yaml:"maxAttempts"`
}

type BoardService struct {
	Listen string `yaml:"listen"`
}

func Default() Config {
	follow := true
	return Config{
		Server: Server{
			LogFormat:     "json",
			LogLevel:      "info",
			TraceEndpoint: "localhost:4318",
		},
		UserService: UserService{
			Listen: ":8081",
			Store:  domain.UserStoreMemory,
		},
		OrderService: OrderService{
			Listen: ":8082",
			UserClient: UserClient{
				URL:              "http://localhost:8081",
				ConnectTimeoutMs: int(client.DefaultConnectTimeout / time.Millisecond),
				ReadTimeoutMs:    int(client.DefaultReadTimeout / time.Millisecond),
				FollowRedirects:  &follow,
				Retry: Retry{
					PeriodMs:    int(client.DefaultRetryPeriod / time.Millisecond),
					MaxPeriodMs: int(client.DefaultRetryMaxPeriod / time.Millisecond),
					MaxAttempts: client.DefaultMaxAttempts,
				},
			},
		},
		BoardService: BoardService{
			Listen: ":8083",
		},
	}
}

// Load reads the yaml file at path on top of Default. A missing file
// yields the defaults. Environment overrides are applied afterwards and
// the result is validated.
func Load(path string) (Config, error) {

	config := Default()

	if path != "" {
		file, err := os.Open(path)
		switch {
		case err == nil:
			defer file.Close()
			err = yaml.NewDecoder(file).Decode(&config)
			if err != nil {
				return Config{}, errors.Wrap(err, "failed to decode config")
			}
		case os.IsNotExist(err):
		default:
			return Config{}, errors.Wrap(err, "failed to open config")
		}
	}

	config.applyEnv()
	config.fillDefaults()

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvProfile); v != "" {
		c.OrderService.UserClient.Type = v
	}
	if v := os.Getenv(EnvUserServiceURL); v != "" {
		c.OrderService.UserClient.URL = v
	}
	if v := os.Getenv(EnvPostgresDsn); v != "" {
		c.UserService.PostgresDsn = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.UserService.RedisAddr = v
	}
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.UserService.Store == "" {
		c.UserService.Store = d.UserService.Store
	}
	uc := &c.OrderService.UserClient
	if uc.ConnectTimeoutMs <= 0 {
		uc.ConnectTimeoutMs = d.OrderService.UserClient.ConnectTimeoutMs
	}
	if uc.ReadTimeoutMs <= 0 {
		uc.ReadTimeoutMs = d.OrderService.UserClient.ReadTimeoutMs
	}
	if uc.FollowRedirects == nil {
		uc.FollowRedirects = d.OrderService.UserClient.FollowRedirects
	}
	if uc.Retry.PeriodMs <= 0 {
		uc.Retry.PeriodMs = d.OrderService.UserClient.Retry.PeriodMs
	}
	if uc.Retry.MaxPeriodMs <= 0 {
		uc.Retry.MaxPeriodMs = d.OrderService.UserClient.Retry.MaxPeriodMs
	}
	if uc.Retry.MaxAttempts <= 0 {
		uc.Retry.MaxAttempts = d.OrderService.UserClient.Retry.MaxAttempts
	}
}

// ErrNoUserClient is returned by UserClient.Validate when no client type
// was chosen by the file, ORDERDEMO_PROFILE or --profile.
var ErrNoUserClient = errors.New("no user client selected: set orderService.userClient.type, " + EnvProfile + " or --profile to stub or rest")

// Validate checks the sections shared by every service. An unset user
// client type passes here; order-service requires it through
// UserClient.Validate.
func (c Config) Validate() error {
	if c.OrderService.UserClient.Type != "" {
		if err := c.OrderService.UserClient.Validate(); err != nil {
			return err
		}
	}

	switch c.UserService.Store {
	case domain.UserStoreMemory:
	case domain.UserStorePostgres:
		if c.UserService.PostgresDsn == "" {
			return fmt.Errorf("userService.postgresDsn is required for the %q store", domain.UserStorePostgres)
		}
	case domain.UserStoreRedis:
		if c.UserService.RedisAddr == "" {
			return fmt.Errorf("userService.redisAddr is required for the %q store", domain.UserStoreRedis)
		}
	default:
		return fmt.Errorf("unknown user store %q", c.UserService.Store)
	}

	return nil
}

// Validate rejects a missing or unknown client type and a rest client
// without a url.
func (uc UserClient) Validate() error {
	switch uc.Type {
	case domain.UserClientStub:
	case domain.UserClientRest:
		if uc.URL == "" {
			return fmt.Errorf("orderService.userClient.url is required for the %q client", domain.UserClientRest)
		}
	case "":
		return ErrNoUserClient
	default:
		return fmt.Errorf("unknown user client type %q (want %q or %q)", uc.Type, domain.UserClientStub, domain.UserClientRest)
	}
	return nil
}

// ClientOptions converts the user client section into transport options.
func (uc UserClient) ClientOptions() client.Options {
	opts := client.DefaultOptions()
	opts.ConnectTimeout = time.Duration(uc.ConnectTimeoutMs) * time.Millisecond
	opts.ReadTimeout = time.Duration(uc.ReadTimeoutMs) * time.Millisecond
	if uc.FollowRedirects != nil {
		opts.FollowRedirects = *uc.FollowRedirects
	}
	opts.Retry = client.RetryPolicy{
		Period:      time.Duration(uc.Retry.PeriodMs) * time.Millisecond,
		MaxPeriod:   time.Duration(uc.Retry.MaxPeriodMs) * time.Millisecond,
		MaxAttempts: uc.Retry.MaxAttempts,
	}
	return opts
}
