package internal

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type SQLLabConfig struct {
	AppName string `mapstructure:"app_name"`

	Storage struct {
		Backend     string `mapstructure:"backend"` // file | memory
		Dir         string `mapstructure:"dir"`
		SnapshotKey string `mapstructure:"snapshot_key"`
	} `mapstructure:"storage"`

	Server struct {
		Addr  string `mapstructure:"addr"`
		Debug bool   `mapstructure:"debug"`
	} `mapstructure:"server"`

	Log struct {
		Level  string `mapstructure:"level"`
		SeqURL string `mapstructure:"seq_url"`
	} `mapstructure:"log"`

	Grader struct {
		Exercises string `mapstructure:"exercises"` // empty = built-in catalog
		Backend   string `mapstructure:"backend"`   // memory | sqlite
	} `mapstructure:"grader"`
}

var envReplacer = strings.NewReplacer(".", "_")

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "sqllab")
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.dir", "./data")
	v.SetDefault("storage.snapshot_key", "sql_playground_db")
	v.SetDefault("server.addr", "127.0.0.1:54321")
	v.SetDefault("server.debug", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.seq_url", "")
	v.SetDefault("grader.exercises", "")
	v.SetDefault("grader.backend", "memory")
}

// LoadConfig reads a YAML config file. An empty path yields the defaults.
// Keys may be overridden with SQLLAB_* environment variables, e.g.
// SQLLAB_STORAGE_DIR.
func LoadConfig(path string) (*SQLLabConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("sqllab")
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg SQLLabConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
