package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/dmaldon/resolutor/internal/cache"
	"github.com/dmaldon/resolutor/internal/pipeline"
	"github.com/dmaldon/resolutor/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency   int
	outputDir     string
	batchTimeout  time.Duration
	noCache       bool
	docsPerSecond float64
	withAudit     bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir|manifest>",
	Short: "Parse many OCR documents in parallel",
	Long: `Batch parses a directory of OCR documents (or a manifest file listing
one path per line) with a configurable worker count.

The pipeline is stateless, so documents are processed independently;
results are cached by content hash and rule set version, letting reruns
over large scan archives skip documents already parsed. Rejected
documents are reported for manual review and do not stop the run.

Example:
  resolutor batch ./scans
  resolutor batch manifest.txt --concurrency 8 --output-dir ./records
  resolutor batch ./scans --rate 20 --no-cache`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./resolutor-records", "output directory for record JSON files")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache (force fresh parses)")
	batchCmd.Flags().Float64Var(&docsPerSecond, "rate", 0, "max documents per second (0 = unthrottled)")
	batchCmd.Flags().BoolVar(&withAudit, "audit", false, "also write per-document audit reports")
	batchCmd.Flags().StringVar(&rulesPath, "rules", "", "pattern library YAML (default: builtin rules)")

	// LLM flags
	batchCmd.Flags().BoolVar(&llmEnabled, "llm", false, "generate LLM review notes for uncertain results")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Cache.Enabled = !noCache
	cfg.Concurrency.Workers = concurrency
	cfg.RateLimiting.DocsPerSecond = docsPerSecond
	cfg.Output.Audit = withAudit

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	paths, err := worker.ListInputs(args[0])
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no documents found in %s", args[0])
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input:        %s (%d documents)\n", args[0], len(paths))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Rules:        %s\n", p.Library().Version())
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Cache:        %v\n", cfg.Cache.Enabled)
	fmt.Fprintf(os.Stderr, "\n")

	var store cache.Cache
	if cfg.Cache.Enabled {
		dir := cfg.Cache.Dir
		if dir == "" {
			base, err := configDir()
			if err != nil {
				return err
			}
			dir = filepath.Join(base, "cache")
		}
		store = cache.NewLayeredCache(cfg.Cache.MemoryTTL, dir, cfg.Cache.DiskTTL)
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.DocsPerSecond, cfg.RateLimiting.BurstSize)
	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers, limiter, store, p.Library().Version())

	outcomes := processor.Process(ctx, paths)

	renderer := pipeline.NewRenderer(verbose)
	accepted, rejected, failed := 0, 0, 0

	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", outcome.Path, outcome.Err)
			continue
		}

		slug := recordSlug(outcome.Path)
		if withAudit {
			auditPath := filepath.Join(outputDir, slug+".report.json")
			if err := renderer.RenderReportJSON(outcome.Report, auditPath); err != nil {
				fmt.Fprintf(os.Stderr, "✗ %s: write audit report: %v\n", outcome.Path, err)
			}
		}

		if outcome.Report.Rejected != "" {
			rejected++
			fmt.Fprintf(os.Stderr, "✗ %s: rejected (%s), route to manual review\n", outcome.Path, outcome.Report.Rejected)
			continue
		}

		jsonPath := filepath.Join(outputDir, slug+".json")
		if err := renderer.RenderRecordJSON(outcome.Report.Record, jsonPath); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: write record: %v\n", outcome.Path, err)
			continue
		}

		accepted++
		hit := ""
		if outcome.CacheHit {
			hit = " (cached)"
		}
		fmt.Fprintf(os.Stderr, "✓ %s: %s dated %s [%s]%s\n",
			outcome.Path, outcome.Report.Record.ResolutionNumber,
			outcome.Report.Record.IssueDate, outcome.Report.Record.SourceConfidence, hit)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d documents\n", len(outcomes))
	fmt.Fprintf(os.Stderr, "  Accepted:  %d\n", accepted)
	fmt.Fprintf(os.Stderr, "  Rejected:  %d\n", rejected)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failed)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// recordSlug derives an output file stem from the input path
func recordSlug(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
