package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the shape of the configured model artifact",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			if format != "table" && format != "json" {
				return fmt.Errorf("--format must be 'table' or 'json'")
			}

			tok, err := loadTokenizer(cfg, false, "", true)
			if err != nil {
				return err
			}
			info := tok.ModelInfo()

			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}

			fmt.Fprintf(out, "model:        %s\n", cfg.Paths.ModelPath)
			fmt.Fprintf(out, "char window:  %d\n", info.CharWindow)
			fmt.Fprintf(out, "type window:  %d\n", info.TypeWindow)
			fmt.Fprintf(out, "char n-grams: %d\n", info.CharNgrams)
			fmt.Fprintf(out, "type n-grams: %d\n", info.TypeNgrams)
			fmt.Fprintf(out, "dict words:   %d\n", info.DictWords)
			fmt.Fprintf(out, "tag layers:   %d\n", info.TagLayers)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}
