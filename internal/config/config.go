package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "EXPERTDESK"
	configName = "expertdesk"
)

// Config holds every runtime option of the program.
type Config struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	Endpoint    string  `mapstructure:"endpoint"`
	APIKey      string  `mapstructure:"api_key"`
	Temperature float64 `mapstructure:"temperature"`
	Mode        string  `mapstructure:"mode"`
	Addr        string  `mapstructure:"addr"`
	LogMode     string  `mapstructure:"log_mode"`
	LogFile     string  `mapstructure:"log_file"`
}

var defaults = map[string]any{
	"provider":    "openai",
	"model":       "",
	"endpoint":    "",
	"api_key":     "",
	"temperature": 0.5,
	"mode":        "stream",
	"addr":        ":8501",
	"log_mode":    "dev",
	"log_file":    "",
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"provider":    "provider",
	"model":       "model",
	"endpoint":    "endpoint",
	"temperature": "temperature",
	"mode":        "mode",
	"addr":        "addr",
	"log-file":    "log_file",
	"log-mode":    "log_mode",
}

// Options controls where Load looks for settings.
type Options struct {
	// Path is an explicit config file; empty means search the usual places.
	Path string
	// EnvFiles are dotenv files loaded before reading the environment.
	EnvFiles []string
	// Flags, when set, override file and environment values for flags the user changed.
	Flags *pflag.FlagSet
}

// Load resolves the configuration from defaults, dotenv files, an optional
// YAML file, EXPERTDESK_* variables and flags, in increasing precedence.
func Load(opts Options) (*Config, error) {
	if err := loadEnvFiles(opts.EnvFiles); err != nil {
		return nil, err
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.Path != "" {
		v.SetConfigFile(opts.Path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", opts.Path, err)
		}
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, configName))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			flag := opts.Flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.APIKey = expandEnv(cfg.APIKey)
	return &cfg, nil
}

// loadEnvFiles mirrors load_dotenv: missing files are fine, malformed ones are not.
// Variables already present in the environment win.
func loadEnvFiles(paths []string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// expandEnv expands ${VAR} or $VAR in a string
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}
	return s
}
