package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newTokenizeCmd() *cobra.Command {
	var (
		text        string
		predictTags bool
		wsconst     string
		noNormalize bool
	)

	cmd := &cobra.Command{
		Use:   "tokenize",
		Short: "Segment text into words",
		Long: "Segment text into words. Reads --text, or one sentence per line\n" +
			"from stdin when --text is not given.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			tags := predictTags || cfg.Tokenizer.PredictTags
			classes := cfg.Tokenizer.WsConst
			if wsconst != "" {
				classes = wsconst
			}
			normalize := cfg.Tokenizer.Normalize && !noNormalize

			tok, err := loadTokenizer(cfg, tags, classes, normalize)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if text != "" {
				_, err := fmt.Fprintln(out, tok.TokenizeToString(text))
				return err
			}
			return tokenizeLines(os.Stdin, out, tok.TokenizeToString)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to segment (defaults to stdin, line per sentence)")
	cmd.Flags().BoolVar(&predictTags, "tags", false, "Predict tag layers for each token")
	cmd.Flags().StringVar(&wsconst, "wsconst", "", "Character classes kept unsplit (letters D|R|H|T|K|O|G)")
	cmd.Flags().BoolVar(&noNormalize, "no-normalize", false, "Skip fullwidth normalization before scoring")

	return cmd
}

func tokenizeLines(r io.Reader, w io.Writer, render func(string) string) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if _, err := fmt.Fprintln(w, render(scanner.Text())); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
