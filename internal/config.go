package internal

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/tuannm99/novaheap/internal/logger"
	"github.com/tuannm99/novaheap/internal/storage/common"
)

const (
	EnvPrefix        = "NOVAHEAP"
	DefaultDataDir   = "./data"
	DefaultPoolPages = 50
	DefaultSchema    = "schema.yaml"
)

type Config struct {
	AppName string `mapstructure:"app_name"`

	Storage struct {
		DataDir  string `mapstructure:"data_dir"`
		PageSize int    `mapstructure:"page_size"`
		// PoolPages is the buffer pool capacity in pages.
		PoolPages int `mapstructure:"pool_pages"`
		// SchemaFile is relative to DataDir unless absolute.
		SchemaFile string `mapstructure:"schema_file"`
	} `mapstructure:"storage"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
		Output string `mapstructure:"output"`
	} `mapstructure:"log"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("app_name", "novaheap")
	v.SetDefault("storage.data_dir", DefaultDataDir)
	v.SetDefault("storage.page_size", common.PageSize)
	v.SetDefault("storage.pool_pages", DefaultPoolPages)
	v.SetDefault("storage.schema_file", DefaultSchema)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stderr")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads path (YAML) on top of the defaults. An empty path or a
// missing file yields the defaults; NOVAHEAP_* env vars override both.
func LoadConfig(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WriteDefaultConfig writes the default settings to path, pointing the data
// directory at dataDir. An existing file is left alone.
func WriteDefaultConfig(path, dataDir string) error {
	v := newViper()
	if dataDir != "" {
		v.Set("storage.data_dir", dataDir)
	}
	if err := v.SafeWriteConfigAs(path); err != nil {
		var exists viper.ConfigFileAlreadyExistsError
		if errors.As(err, &exists) {
			return nil
		}
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Storage.PageSize != common.PageSize {
		return fmt.Errorf("config: page_size must be %d, got %d", common.PageSize, c.Storage.PageSize)
	}
	if c.Storage.PoolPages < 1 {
		return fmt.Errorf("config: pool_pages must be >= 1, got %d", c.Storage.PoolPages)
	}
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		return fmt.Errorf("config: data_dir is empty")
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: invalid log format %q (text or json)", c.Log.Format)
	}
	return nil
}
