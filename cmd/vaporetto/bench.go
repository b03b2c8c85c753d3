package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"
)

type benchResult struct {
	Runs       int     `json:"runs"`
	Sentences  int     `json:"sentences"`
	Chars      int     `json:"chars"`
	Tokens     int     `json:"tokens"`
	ElapsedMS  int64   `json:"elapsed_ms"`
	CharsPerS  float64 `json:"chars_per_s"`
	TokensPerS float64 `json:"tokens_per_s"`
}

func newBenchCmd() *cobra.Command {
	var (
		inputPath string
		runs      int
		format    string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark tokenization throughput over a sentence file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			if inputPath == "" {
				return fmt.Errorf("--input is required for bench")
			}
			if runs < 1 {
				return fmt.Errorf("--runs must be at least 1")
			}
			if format != "table" && format != "json" {
				return fmt.Errorf("--format must be 'table' or 'json'")
			}

			sentences, chars, err := readSentences(inputPath)
			if err != nil {
				return err
			}
			if len(sentences) == 0 {
				return fmt.Errorf("input %s contains no sentences", inputPath)
			}

			tok, err := loadTokenizer(cfg, cfg.Tokenizer.PredictTags, cfg.Tokenizer.WsConst, cfg.Tokenizer.Normalize)
			if err != nil {
				return err
			}

			tokens := 0
			start := time.Now()
			for r := 0; r < runs; r++ {
				tokens = 0
				for _, s := range sentences {
					list := tok.Tokenize(s)
					tokens += list.Len()
				}
			}
			elapsed := time.Since(start)

			secs := elapsed.Seconds()
			result := benchResult{
				Runs:      runs,
				Sentences: len(sentences),
				Chars:     chars,
				Tokens:    tokens,
				ElapsedMS: elapsed.Milliseconds(),
			}
			if secs > 0 {
				result.CharsPerS = float64(chars*runs) / secs
				result.TokensPerS = float64(tokens*runs) / secs
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Fprintf(out, "runs:       %d\n", result.Runs)
			fmt.Fprintf(out, "sentences:  %d\n", result.Sentences)
			fmt.Fprintf(out, "chars:      %d\n", result.Chars)
			fmt.Fprintf(out, "tokens:     %d\n", result.Tokens)
			fmt.Fprintf(out, "elapsed:    %dms\n", result.ElapsedMS)
			fmt.Fprintf(out, "chars/s:    %.0f\n", result.CharsPerS)
			fmt.Fprintf(out, "tokens/s:   %.0f\n", result.TokensPerS)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "File with one sentence per line")
	cmd.Flags().IntVar(&runs, "runs", 1, "Number of passes over the input")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}

func readSentences(path string) ([]string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	var (
		sentences []string
		chars     int
	)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		sentences = append(sentences, line)
		chars += utf8.RuneCountInString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read input: %w", err)
	}
	return sentences, chars, nil
}
