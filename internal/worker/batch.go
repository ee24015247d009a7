package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dmaldon/resolutor/internal/cache"
	"github.com/dmaldon/resolutor/internal/model"
	"github.com/dmaldon/resolutor/internal/pipeline"
)

// Runner parses one document; satisfied by pipeline.Pipeline
type Runner interface {
	Parse(ctx context.Context, doc model.RawDocument) (*model.Report, error)
}

// ParseJob parses a single file
type ParseJob struct {
	Path    string
	Runner  Runner
	Limiter *Limiter
	Store   cache.Cache // nil disables caching
	RulesV  string      // Rule set version, part of the cache key
}

// ParseOutcome is the result of one batch document
type ParseOutcome struct {
	Path     string
	Report   *model.Report
	CacheHit bool
	Err      error // Read/processing failure; a validation rejection is in Report.Rejected
}

// GetError returns the processing error
func (o *ParseOutcome) GetError() error {
	return o.Err
}

// Execute reads, parses (or recalls) and returns the document's report
func (j *ParseJob) Execute(ctx context.Context) Result {
	if err := j.Limiter.Wait(ctx); err != nil {
		return &ParseOutcome{Path: j.Path, Err: err}
	}

	data, err := os.ReadFile(j.Path)
	if err != nil {
		return &ParseOutcome{Path: j.Path, Err: fmt.Errorf("read document: %w", err)}
	}

	var key string
	if j.Store != nil {
		key = cache.Key(data, j.RulesV)
		if cached, found := j.Store.Get(key); found {
			var report model.Report
			if err := json.Unmarshal(cached, &report); err == nil {
				return &ParseOutcome{Path: j.Path, Report: &report, CacheHit: true}
			}
			// A corrupt entry falls through to a fresh parse
		}
	}

	doc, err := pipeline.DocumentFromBytes(j.Path, data)
	if err != nil {
		return &ParseOutcome{Path: j.Path, Err: err}
	}

	report, _ := j.Runner.Parse(ctx, doc) // Rejections travel inside the report

	if j.Store != nil {
		if encoded, err := json.Marshal(report); err == nil {
			_ = j.Store.Set(key, encoded, 0)
		}
	}

	return &ParseOutcome{Path: j.Path, Report: report}
}

// BatchProcessor parses many documents concurrently
type BatchProcessor struct {
	runner       Runner
	concurrency  int
	limiter      *Limiter
	store        cache.Cache
	rulesVersion string
}

// NewBatchProcessor creates a batch processor. store may be nil to disable
// caching; limiter may be nil to disable throttling.
func NewBatchProcessor(runner Runner, concurrency int, limiter *Limiter, store cache.Cache, rulesVersion string) *BatchProcessor {
	return &BatchProcessor{
		runner:       runner,
		concurrency:  concurrency,
		limiter:      limiter,
		store:        store,
		rulesVersion: rulesVersion,
	}
}

// Process parses the given paths and returns one outcome per path
func (b *BatchProcessor) Process(ctx context.Context, paths []string) []*ParseOutcome {
	if len(paths) == 0 {
		return []*ParseOutcome{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	// Submit concurrently with draining so a batch larger than the pool's
	// channel buffers cannot wedge on a full queue
	go func() {
		for _, path := range paths {
			pool.Submit(&ParseJob{
				Path:    path,
				Runner:  b.runner,
				Limiter: b.limiter,
				Store:   b.store,
				RulesV:  b.rulesVersion,
			})
		}
		pool.Close()
	}()

	outcomes := make([]*ParseOutcome, 0, len(paths))
	for result := range pool.Results() {
		outcomes = append(outcomes, result.(*ParseOutcome))
	}

	// Pool completion order is scheduling-dependent; sort for stable output
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Path < outcomes[j].Path })
	return outcomes
}

// documentExts are the inputs a batch run picks up from a directory
var documentExts = map[string]bool{
	".txt":  true,
	".text": true,
	".hocr": true,
	".html": true,
	".htm":  true,
}

// ListInputs expands a batch argument into document paths: a directory is
// walked for document files; a manifest file lists one path per line
// (# comments allowed); a document file stands alone.
func ListInputs(arg string) ([]string, error) {
	info, err := os.Stat(arg)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}

	if info.IsDir() {
		var paths []string
		err := filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && documentExts[strings.ToLower(filepath.Ext(path))] {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk input dir: %w", err)
		}
		sort.Strings(paths)
		return paths, nil
	}

	if documentExts[strings.ToLower(filepath.Ext(arg))] {
		return []string{arg}, nil
	}

	return readManifest(arg)
}

// readManifest reads document paths from a list file, one per line
func readManifest(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan manifest: %w", err)
	}
	return paths, nil
}
