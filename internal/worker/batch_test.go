package worker

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmaldon/resolutor/internal/model"
)

// fakeRunner records how many documents it actually parsed
type fakeRunner struct {
	calls atomic.Int64
}

func (f *fakeRunner) Parse(ctx context.Context, doc model.RawDocument) (*model.Report, error) {
	f.calls.Add(1)
	return &model.Report{
		Source:   doc.Source,
		ParsedAt: time.Now().UTC(),
		Record: &model.ResolutionRecord{
			ResolutionNumber: "045-2024",
			IssueDate:        "2024-03-12",
			SourceConfidence: model.ConfidenceExact,
		},
	}, nil
}

// mapCache is an in-memory cache.Cache for tests
type mapCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]byte)}
}

func (c *mapCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *mapCache) Set(key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *mapCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *mapCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
	return nil
}

func writeDocs(t *testing.T, names ...string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		if err := os.WriteFile(paths[i], []byte("RESOLUCIÓN No. 045-2024\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir, paths
}

func TestBatchProcess_OutcomesSortedByPath(t *testing.T) {
	_, paths := writeDocs(t, "c.txt", "a.txt", "b.txt")
	runner := &fakeRunner{}

	outcomes := NewBatchProcessor(runner, 4, nil, nil, "v1").Process(context.Background(), paths)

	if len(outcomes) != 3 {
		t.Fatalf("Got %d outcomes, want 3", len(outcomes))
	}
	for i := 1; i < len(outcomes); i++ {
		if outcomes[i-1].Path > outcomes[i].Path {
			t.Errorf("Outcomes not sorted: %q before %q", outcomes[i-1].Path, outcomes[i].Path)
		}
	}
	for _, o := range outcomes {
		if o.Err != nil {
			t.Errorf("%s: unexpected error %v", o.Path, o.Err)
		}
		if o.Report == nil || o.Report.Source != o.Path {
			t.Errorf("%s: report missing or mis-sourced", o.Path)
		}
	}
	if runner.calls.Load() != 3 {
		t.Errorf("Runner parsed %d documents, want 3", runner.calls.Load())
	}
}

func TestBatchProcess_CacheSkipsReparse(t *testing.T) {
	_, paths := writeDocs(t, "doc.txt")
	runner := &fakeRunner{}
	store := newMapCache()
	processor := NewBatchProcessor(runner, 1, nil, store, "v1")

	first := processor.Process(context.Background(), paths)
	if first[0].CacheHit {
		t.Error("First run should not hit the cache")
	}

	second := processor.Process(context.Background(), paths)
	if !second[0].CacheHit {
		t.Error("Second run should hit the cache")
	}
	if runner.calls.Load() != 1 {
		t.Errorf("Runner parsed %d times, want 1", runner.calls.Load())
	}
	if second[0].Report.Record.ResolutionNumber != "045-2024" {
		t.Errorf("Cached report lost data: %+v", second[0].Report.Record)
	}
}

func TestBatchProcess_RuleVersionPartitionsCache(t *testing.T) {
	_, paths := writeDocs(t, "doc.txt")
	runner := &fakeRunner{}
	store := newMapCache()

	NewBatchProcessor(runner, 1, nil, store, "v1").Process(context.Background(), paths)
	outcomes := NewBatchProcessor(runner, 1, nil, store, "v2").Process(context.Background(), paths)

	if outcomes[0].CacheHit {
		t.Error("Results from different rule versions must not serve each other")
	}
	if runner.calls.Load() != 2 {
		t.Errorf("Runner parsed %d times, want 2", runner.calls.Load())
	}
}

func TestBatchProcess_UnreadableFileReportsError(t *testing.T) {
	runner := &fakeRunner{}
	outcomes := NewBatchProcessor(runner, 1, nil, nil, "v1").Process(context.Background(), []string{"/nonexistent/doc.txt"})

	if len(outcomes) != 1 {
		t.Fatalf("Got %d outcomes, want 1", len(outcomes))
	}
	if outcomes[0].Err == nil {
		t.Error("Expected a read error")
	}
	if outcomes[0].GetError() == nil {
		t.Error("GetError should surface the read error")
	}
}

func TestBatchProcess_EmptyInput(t *testing.T) {
	outcomes := NewBatchProcessor(&fakeRunner{}, 4, nil, nil, "v1").Process(context.Background(), nil)
	if len(outcomes) != 0 {
		t.Errorf("Got %d outcomes for empty input", len(outcomes))
	}
}

func TestListInputs_Directory(t *testing.T) {
	dir, _ := writeDocs(t, "b.txt", "a.hocr", "notes.md")

	paths, err := ListInputs(dir)
	if err != nil {
		t.Fatalf("ListInputs failed: %v", err)
	}
	want := []string{filepath.Join(dir, "a.hocr"), filepath.Join(dir, "b.txt")}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("ListInputs = %v, want %v", paths, want)
	}
}

func TestListInputs_SingleDocument(t *testing.T) {
	_, docs := writeDocs(t, "doc.txt")
	paths, err := ListInputs(docs[0])
	if err != nil {
		t.Fatalf("ListInputs failed: %v", err)
	}
	if !reflect.DeepEqual(paths, docs) {
		t.Errorf("ListInputs = %v, want %v", paths, docs)
	}
}

func TestListInputs_Manifest(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "batch.list")
	content := "# archive batch\ndocs/a.txt\n\ndocs/b.txt\ndocs/a.txt\n"
	if err := os.WriteFile(manifest, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	paths, err := ListInputs(manifest)
	if err != nil {
		t.Fatalf("ListInputs failed: %v", err)
	}
	want := []string{"docs/a.txt", "docs/b.txt"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("ListInputs = %v, want %v", paths, want)
	}
}

func TestListInputs_MissingPath(t *testing.T) {
	if _, err := ListInputs("/nonexistent/archive"); err == nil {
		t.Error("Expected error for a missing input path")
	}
}
