// Package config loads CLI and server configuration from flags, environment
// variables (VAPORETTO_ prefix), and an optional config file.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel  string          `mapstructure:"log_level"`
	Paths     PathsConfig     `mapstructure:"paths"`
	Tokenizer TokenizerConfig `mapstructure:"tokenizer"`
	Server    ServerConfig    `mapstructure:"server"`
}

type PathsConfig struct {
	ModelPath string `mapstructure:"model_path"`
}

type TokenizerConfig struct {
	PredictTags bool   `mapstructure:"predict_tags"`
	WsConst     string `mapstructure:"wsconst"`
	Normalize   bool   `mapstructure:"normalize"`
}

type ServerConfig struct {
	ListenAddr     string `mapstructure:"listen_addr"`
	MaxTextBytes   int    `mapstructure:"max_text_bytes"`
	RequestTimeout int    `mapstructure:"request_timeout"`
	Workers        int    `mapstructure:"workers"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Paths: PathsConfig{
			ModelPath: "models/model.zst",
		},
		Tokenizer: TokenizerConfig{
			PredictTags: false,
			WsConst:     "",
			Normalize:   true,
		},
		Server: ServerConfig{
			ListenAddr:     ":8080",
			MaxTextBytes:   65536,
			RequestTimeout: 10,
			Workers:        0,
		},
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
	fs.String("paths-model-path", defaults.Paths.ModelPath, "Path to the model artifact (raw, gzip, or zstd)")
	fs.Bool("tokenizer-predict-tags", defaults.Tokenizer.PredictTags, "Predict tag layers for each token")
	fs.String("tokenizer-wsconst", defaults.Tokenizer.WsConst, "Character classes kept unsplit (letters D|R|H|T|K|O|G)")
	fs.Bool("tokenizer-normalize", defaults.Tokenizer.Normalize, "Apply fullwidth normalization before scoring")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("server-max-text-bytes", defaults.Server.MaxTextBytes, "Maximum request text size in bytes")
	fs.Int("server-request-timeout", defaults.Server.RequestTimeout, "Per-request timeout in seconds")
	fs.Int("server-workers", defaults.Server.Workers, "Max concurrent tokenization requests (0 = unlimited)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("VAPORETTO")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("vaporetto")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("paths.model_path", c.Paths.ModelPath)
	v.SetDefault("tokenizer.predict_tags", c.Tokenizer.PredictTags)
	v.SetDefault("tokenizer.wsconst", c.Tokenizer.WsConst)
	v.SetDefault("tokenizer.normalize", c.Tokenizer.Normalize)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.max_text_bytes", c.Server.MaxTextBytes)
	v.SetDefault("server.request_timeout", c.Server.RequestTimeout)
	v.SetDefault("server.workers", c.Server.Workers)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("log_level", "log-level")
	v.RegisterAlias("paths.model_path", "paths-model-path")
	v.RegisterAlias("tokenizer.predict_tags", "tokenizer-predict-tags")
	v.RegisterAlias("tokenizer.wsconst", "tokenizer-wsconst")
	v.RegisterAlias("tokenizer.normalize", "tokenizer-normalize")
	v.RegisterAlias("server.listen_addr", "server-listen-addr")
	v.RegisterAlias("server.max_text_bytes", "server-max-text-bytes")
	v.RegisterAlias("server.request_timeout", "server-request-timeout")
	v.RegisterAlias("server.workers", "server-workers")
}
