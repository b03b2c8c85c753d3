package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/example/go-vaporetto/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tokenization HTTP server",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			tok, err := loadTokenizer(cfg, cfg.Tokenizer.PredictTags, cfg.Tokenizer.WsConst, cfg.Tokenizer.Normalize)
			if err != nil {
				return err
			}

			slog.Info("starting server",
				slog.String("addr", cfg.Server.ListenAddr),
				slog.String("model", cfg.Paths.ModelPath),
				slog.Int("tag_layers", tok.NumTags()),
			)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return server.New(cfg, tok).Start(ctx)
		},
	}

	return cmd
}
