package types

import (
	"errors"
	"time"
)

// Config holds backend selection and parameters for Store.Open.
type Config struct {
	Backend string      `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir string      `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	Redis   RedisConfig `json:"redis" yaml:"redis" mapstructure:"redis"`
}

// RedisConfig carries connection settings for the redis backend. Zero
// durations fall back to the defaults below.
type RedisConfig struct {
	Addr           string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	Username       string        `json:"username" yaml:"username" mapstructure:"username"`
	Password       string        `json:"password" yaml:"password" mapstructure:"password"`
	DB             int           `json:"db" yaml:"db" mapstructure:"db"`
	KeyPrefix      string        `json:"key_prefix" yaml:"key_prefix" mapstructure:"key_prefix"`
	ConnectTimeout time.Duration `json:"connect_timeout" yaml:"connect_timeout" mapstructure:"connect_timeout"`
	RetryInterval  time.Duration `json:"retry_interval" yaml:"retry_interval" mapstructure:"retry_interval"`
	MaxWait        time.Duration `json:"max_wait" yaml:"max_wait" mapstructure:"max_wait"`
	PingTimeout    time.Duration `json:"ping_timeout" yaml:"ping_timeout" mapstructure:"ping_timeout"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Redis defaults.
const (
	DefaultRedisKeyPrefix      = "focusflow"
	DefaultRedisConnectTimeout = 10 * time.Second
	DefaultRedisRetryInterval  = 500 * time.Millisecond
	DefaultRedisMaxWait        = 5 * time.Second
	DefaultRedisPingTimeout    = 2 * time.Second
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrRedisAddrEmpty = errors.New("redis address must not be empty")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
	BackendRedis:  true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend == BackendRedis && c.Redis.Addr == "" {
		return ErrRedisAddrEmpty
	}
	return nil
}

// WithDefaults returns a copy of the redis settings with zero values replaced
// by the package defaults.
func (r RedisConfig) WithDefaults() RedisConfig {
	if r.KeyPrefix == "" {
		r.KeyPrefix = DefaultRedisKeyPrefix
	}
	if r.ConnectTimeout <= 0 {
		r.ConnectTimeout = DefaultRedisConnectTimeout
	}
	if r.RetryInterval <= 0 {
		r.RetryInterval = DefaultRedisRetryInterval
	}
	if r.MaxWait <= 0 {
		r.MaxWait = DefaultRedisMaxWait
	}
	if r.PingTimeout <= 0 {
		r.PingTimeout = DefaultRedisPingTimeout
	}
	return r
}
