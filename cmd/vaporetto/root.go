package main

import (
	"fmt"
	"log/slog"
	"os"

	vaporetto "github.com/example/go-vaporetto"
	"github.com/example/go-vaporetto/internal/config"
	"github.com/example/go-vaporetto/internal/server"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	activeCfg config.Config
)

func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "vaporetto",
		Short: "Pointwise word segmentation command line",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}
			activeCfg = loaded
			setupLogger(loaded.LogLevel)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newTokenizeCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newInspectCmd())
	cmd.AddCommand(newBenchCmd())

	return cmd
}

// setupLogger configures the process-wide slog default logger.
func setupLogger(levelStr string) {
	lvl, err := server.ParseLogLevel(levelStr)
	if err != nil {
		lvl = slog.LevelInfo
	}
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}

func requireConfig() (config.Config, error) {
	if activeCfg.Paths.ModelPath == "" {
		return config.Config{}, fmt.Errorf("configuration not loaded")
	}
	return activeCfg, nil
}

// loadTokenizer builds a tokenizer from the configured model artifact.
func loadTokenizer(cfg config.Config, predictTags bool, wsconst string, normalize bool) (*vaporetto.Tokenizer, error) {
	data, err := os.ReadFile(cfg.Paths.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}

	opts := []vaporetto.Option{
		vaporetto.WithWsConst(wsconst),
		vaporetto.WithNormalization(normalize),
	}
	if predictTags {
		opts = append(opts, vaporetto.WithTagPrediction())
	}
	tok, err := vaporetto.New(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", cfg.Paths.ModelPath, err)
	}
	return tok, nil
}
