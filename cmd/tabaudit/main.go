// Package main provides the CLI entry point for tabaudit-go.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ukaji3/tabaudit-go/pkg/tabaudit"
	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/model"
	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/oracle"
)

var (
	outputPath  string
	jsonOutput  bool
	levels      []string
	sheet       string
	headerStart int
	headerEnd   int
	dataStart   int
	dataEnd     int
	rulesDir    string
	workers     int
	stdinFormat string
	strict      bool
	verbose     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tabaudit [input file]",
		Short: "Audit tabular files for machine readability",
		Long: `tabaudit-go checks CSV and Excel files against machine-readability
rules (merged cells, hidden rows, mixed columns, missing codebooks, ...)
and reports one outcome per rule, grouped by level.

Pass "-" as the input to read from stdin. An LLM endpoint, configured via
flags or TABAUDIT_* environment variables, improves structure detection;
without one the audit runs fully offline on built-in heuristics.`,
		Args:          cobra.ExactArgs(1),
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the report as JSON")
	rootCmd.Flags().StringSliceVar(&levels, "levels", nil, "Levels to run: level1, level2, level3 (default: all)")
	rootCmd.Flags().StringVar(&sheet, "sheet", "", "Sheet to audit (default: auto-select)")
	rootCmd.Flags().IntVar(&headerStart, "header-start", 0, "First header row (1-based)")
	rootCmd.Flags().IntVar(&headerEnd, "header-end", 0, "Last header row (1-based)")
	rootCmd.Flags().IntVar(&dataStart, "data-start", 0, "First data row (1-based)")
	rootCmd.Flags().IntVar(&dataEnd, "data-end", 0, "Last data row (1-based)")
	rootCmd.Flags().StringVar(&rulesDir, "rules-dir", "", "Directory with per-level rule files overriding the built-ins")
	rootCmd.Flags().IntVar(&workers, "workers", 1, "Concurrent rule executions per level")
	rootCmd.Flags().StringVar(&stdinFormat, "stdin-format", "csv", "Input format when reading stdin: csv, xls, xlsx")
	rootCmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any rule fails")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log diagnostics to stderr")

	rootCmd.Flags().String("llm-url", "", "Base URL of an OpenAI-compatible endpoint")
	rootCmd.Flags().String("llm-model", oracle.DefaultModel, "Model name for structure inference")
	rootCmd.Flags().String("llm-api-key", "", "API key for the LLM endpoint")
	rootCmd.Flags().Duration("llm-timeout", oracle.DefaultTimeout, "Per-request LLM timeout")

	viper.SetEnvPrefix("TABAUDIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	for _, name := range []string{"llm-url", "llm-model", "llm-api-key", "llm-timeout"} {
		if err := viper.BindPFlag(name, rootCmd.Flags().Lookup(name)); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := zap.NewNop().Sugar()
	if verbose {
		zl, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer zl.Sync()
		log = zl.Sugar()
	}

	inputPath := args[0]
	if inputPath == "-" {
		path, cleanup, err := stdinToTemp(stdinFormat)
		if err != nil {
			return err
		}
		defer cleanup()
		inputPath = path
	} else if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	selected, err := parseLevels(levels)
	if err != nil {
		return err
	}

	opts := tabaudit.Options{
		Levels:   selected,
		RulesDir: rulesDir,
		Workers:  workers,
		Logger:   log,
	}
	if url := viper.GetString("llm-url"); url != "" {
		opts.Completer = oracle.NewClient(oracle.ClientConfig{
			BaseURL: url,
			APIKey:  viper.GetString("llm-api-key"),
			Model:   viper.GetString("llm-model"),
			Timeout: viper.GetDuration("llm-timeout"),
			Logger:  log,
		})
	}

	result, err := tabaudit.New(opts).Run(cmd.Context(), inputPath, tabaudit.Hints{
		Sheet:       sheet,
		HeaderStart: headerStart,
		HeaderEnd:   headerEnd,
		DataStart:   dataStart,
		DataEnd:     dataEnd,
	})
	if err != nil {
		return err
	}

	report, err := render(result, jsonOutput)
	if err != nil {
		return err
	}
	if outputPath != "" {
		if err := os.WriteFile(outputPath, report, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else {
		fmt.Print(string(report))
	}

	if strict && !result.Passed() {
		return fmt.Errorf("%s failed one or more rules", result.Path)
	}
	return nil
}

// stdinToTemp copies stdin into a temp file carrying the extension the
// loader needs. The caller must invoke cleanup; the file holds uploaded
// data and must not outlive the run.
func stdinToTemp(format string) (string, func(), error) {
	switch format {
	case "csv", "xls", "xlsx":
	default:
		return "", nil, fmt.Errorf("invalid stdin format: %s (must be csv, xls, or xlsx)", format)
	}

	f, err := os.CreateTemp("", "tabaudit-*."+format)
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.Remove(f.Name()) }

	_, err = io.Copy(f, os.Stdin)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to buffer stdin: %w", err)
	}
	return f.Name(), cleanup, nil
}

func parseLevels(names []string) ([]model.Level, error) {
	if len(names) == 0 {
		return model.Levels(), nil
	}
	var out []model.Level
	for _, name := range names {
		switch model.Level(strings.ToLower(strings.TrimSpace(name))) {
		case model.Level1:
			out = append(out, model.Level1)
		case model.Level2:
			out = append(out, model.Level2)
		case model.Level3:
			out = append(out, model.Level3)
		default:
			return nil, fmt.Errorf("invalid level: %s (must be level1, level2, or level3)", name)
		}
	}
	return out, nil
}

func render(result *tabaudit.Result, asJSON bool) ([]byte, error) {
	if asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (sheet %q, %s)\n", result.Path, result.Sheet, result.Format)
	for _, w := range result.Warnings {
		fmt.Fprintf(&b, "  warning: %s\n", w)
	}
	for _, s := range result.Summaries {
		fmt.Fprintf(&b, "\n[%s] %d/%d passed\n", s.Level, s.Passed, s.Total)
		for _, o := range s.Results {
			mark := "PASS"
			if !o.Passed {
				mark = "FAIL"
			}
			fmt.Fprintf(&b, "  %s  %-6s %s\n", mark, o.ID, o.Description)
			if o.Message != "" {
				fmt.Fprintf(&b, "         %s\n", o.Message)
			}
		}
	}
	return []byte(b.String()), nil
}
