package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dmaldon/resolutor/internal/assemble"
	"github.com/dmaldon/resolutor/internal/model"
	"github.com/dmaldon/resolutor/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rulesPath    string
	outJSON      string
	outAudit     string
	outMD        string
	parseTimeout time.Duration
	llmEnabled   bool
	llmProvider  string
	llmModel     string
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a single OCR document into a resolution record",
	Long: `Parse normalizes one OCR output file, applies the pattern library,
and emits the structured resolution record as JSON.

Input is plain text (.txt) or hOCR (.hocr, .html) as produced by the
OCR engine. Documents missing a resolution number or a parseable issue
date are rejected with a non-zero exit; route those to manual review,
since retrying the same input reproduces the same rejection.

Example:
  resolutor parse scans/resolucion-074-2025.txt
  resolutor parse scan.hocr --json record.json --audit report.json
  resolutor parse scan.txt --rules institucion.yaml --md review.md`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	// Output flags
	parseCmd.Flags().StringVar(&rulesPath, "rules", "", "pattern library YAML (default: builtin rules)")
	parseCmd.Flags().StringVar(&outJSON, "json", "-", "record JSON path (\"-\" for stdout)")
	parseCmd.Flags().StringVar(&outAudit, "audit", "", "audit report JSON path with per-field provenance (optional)")
	parseCmd.Flags().StringVar(&outMD, "md", "", "Markdown review summary path (optional)")
	parseCmd.Flags().DurationVar(&parseTimeout, "timeout", 2*time.Minute, "overall timeout (matters only with --llm)")

	// LLM flags
	parseCmd.Flags().BoolVar(&llmEnabled, "llm", false, "generate an LLM review note for uncertain results")
	parseCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	parseCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), parseTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	doc, err := pipeline.ReadDocument(path)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Parsing: %s\n", path)
		fmt.Fprintf(os.Stderr, "Rules:   %s\n", p.Library().Version())
		if mean, ok := doc.MeanConfidence(); ok {
			fmt.Fprintf(os.Stderr, "OCR:     mean confidence %.1f\n", mean)
		}
		fmt.Fprintln(os.Stderr)
	}

	report, parseErr := p.Parse(ctx, doc)

	renderer := pipeline.NewRenderer(verbose)
	if outAudit != "" {
		if err := renderer.RenderReportJSON(report, outAudit); err != nil {
			return fmt.Errorf("render audit report: %w", err)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(report, outMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
	}

	if parseErr != nil {
		renderer.RenderSummary(report)
		if ve, ok := assemble.AsValidation(parseErr); ok {
			return fmt.Errorf("document rejected: %w", ve)
		}
		return parseErr
	}

	if err := renderer.RenderRecordJSON(report.Record, outJSON); err != nil {
		return fmt.Errorf("render record: %w", err)
	}
	renderer.RenderSummary(report)
	return nil
}

// buildConfig merges defaults, the config file and flags; flags beat the
// config file, which beats defaults
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if path := viper.GetString("rules.path"); path != "" {
		cfg.Rules.Path = path
	}
	if rulesPath != "" {
		cfg.Rules.Path = rulesPath
	}
	cfg.Output.Verbose = verbose

	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel

		switch llmProvider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "ollama":
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	}

	return cfg, nil
}
