package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/focusflow/internal/paths"
	"github.com/mesh-intelligence/focusflow/internal/share"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	envPrefix = "FOCUSFLOW"

	defaultLogLevel = "warn"
)

// Config keys.
const (
	cfgKeyBackend   = "backend"
	cfgKeyDataDir   = "data_dir"
	cfgKeyLogLevel  = "log_level"
	cfgKeyPrettyLog = "pretty_log"
	cfgKeyShareAddr = "share.addr"
)

// Settings is the resolved CLI configuration.
type Settings struct {
	Backend   string            `mapstructure:"backend"`
	DataDir   string            `mapstructure:"data_dir"`
	LogLevel  string            `mapstructure:"log_level"`
	PrettyLog bool              `mapstructure:"pretty_log"`
	Redis     types.RedisConfig `mapstructure:"redis"`
	Share     ShareSettings     `mapstructure:"share"`
}

// ShareSettings configures the shared-note server.
type ShareSettings struct {
	Addr string `mapstructure:"addr"`
}

// configFile is the structure written to config.yaml by init.
type configFile struct {
	Backend  string `yaml:"backend"`
	DataDir  string `yaml:"data_dir,omitempty"`
	LogLevel string `yaml:"log_level"`
	Share    struct {
		Addr string `yaml:"addr"`
	} `yaml:"share"`
}

const configHeader = `# focusflow configuration
# Every key can be overridden with a FOCUSFLOW_* environment variable,
# e.g. FOCUSFLOW_BACKEND=redis or FOCUSFLOW_REDIS_ADDR=localhost:6379.
`

// loadSettings reads config.yaml and the optional .env file from configDir.
// Precedence, highest first: process environment, .env, config.yaml,
// defaults. A missing config.yaml or .env is not an error.
func loadSettings(configDir string) (Settings, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	if err := applyDotEnv(v, paths.EnvFile(configDir)); err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	return s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyDataDir, "")
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyPrettyLog, false)
	v.SetDefault(cfgKeyShareAddr, share.DefaultAddr)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.username", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", types.DefaultRedisKeyPrefix)
	v.SetDefault("redis.connect_timeout", types.DefaultRedisConnectTimeout)
	v.SetDefault("redis.retry_interval", types.DefaultRedisRetryInterval)
	v.SetDefault("redis.max_wait", types.DefaultRedisMaxWait)
	v.SetDefault("redis.ping_timeout", types.DefaultRedisPingTimeout)
}

// applyDotEnv overlays FOCUSFLOW_* values from a .env file. Variables already
// set in the process environment win. The process environment is not
// modified.
func applyDotEnv(v *viper.Viper, path string) error {
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	for _, key := range v.AllKeys() {
		name := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		val, ok := values[name]
		if !ok {
			continue
		}
		if os.Getenv(name) != "" {
			continue
		}
		v.Set(key, val)
	}
	return nil
}

// writeConfigIfMissing creates config.yaml with default values. An existing
// file is left alone.
func writeConfigIfMissing(configDir string) (bool, error) {
	path := paths.ConfigFile(configDir)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	cfg := configFile{
		Backend:  types.BackendSQLite,
		LogLevel: defaultLogLevel,
	}
	cfg.Share.Addr = share.DefaultAddr

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// storeConfig builds the Store configuration from the settings and the
// resolved data directory.
func (a *app) storeConfig() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.configDir, a.settings.DataDir)
	if err != nil {
		return types.Config{}, sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	return types.Config{
		Backend: a.settings.Backend,
		DataDir: dataDir,
		Redis:   a.settings.Redis,
	}, nil
}
