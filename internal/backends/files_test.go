package backends

import (
	"context"
	"dataweave/internal/models"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// fixedExecutor is a minimal Executor for registry tests.
type fixedExecutor struct {
	name      string
	available bool
}

func (f *fixedExecutor) Name() string    { return f.name }
func (f *fixedExecutor) Available() bool { return f.available }
func (f *fixedExecutor) Execute(ctx context.Context, query string) models.ExecutionResult {
	return models.ExecutionResult{Success: true}
}

// stubTranslator returns a canned native command.
type stubTranslator struct {
	native string
	calls  int
}

func (s *stubTranslator) Translate(ctx context.Context, query, schemaContext string) (string, error) {
	s.calls++
	return s.native, nil
}

func newArchive(t *testing.T) (string, *FileExecutor) {
	t.Helper()
	root := t.TempDir()

	mustWrite := func(rel, content string) {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite("notes.txt", "meeting notes")
	mustWrite("budget_2025.csv", "dept,amount\nsales,100")
	mustWrite("reports/q1_report.txt", "quarterly report body")

	e, err := NewFileExecutor(root, &stubTranslator{}, time.Minute)
	if err != nil {
		t.Fatalf("NewFileExecutor: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return root, e
}

func TestFileExecutorRejectsBadRoot(t *testing.T) {
	if _, err := NewFileExecutor(filepath.Join(t.TempDir(), "missing"), &stubTranslator{}, time.Minute); err == nil {
		t.Error("missing root must be rejected")
	}
	file := filepath.Join(t.TempDir(), "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileExecutor(file, &stubTranslator{}, time.Minute); err == nil {
		t.Error("non-directory root must be rejected")
	}
}

func TestFileExecutorList(t *testing.T) {
	_, e := newArchive(t)

	result := e.Execute(context.Background(), "list")
	if !result.Success {
		t.Fatalf("list failed: %s", result.Error)
	}
	if result.RowCount != 3 {
		t.Errorf("root listing rows = %d, want 3", result.RowCount)
	}

	result = e.Execute(context.Background(), "list reports")
	if !result.Success || result.RowCount != 1 {
		t.Fatalf("folder listing = %+v", result)
	}
	if result.Data[0]["name"] != "q1_report.txt" {
		t.Errorf("folder entry = %v", result.Data[0])
	}

	result = e.Execute(context.Background(), "list nowhere")
	if result.Success {
		t.Error("listing a missing folder must fail")
	}
}

func TestFileExecutorSearch(t *testing.T) {
	_, e := newArchive(t)

	result := e.Execute(context.Background(), "search report")
	if !result.Success || result.RowCount != 1 {
		t.Fatalf("search = %+v", result)
	}
	if result.Data[0]["path"] != filepath.Join("reports", "q1_report.txt") {
		t.Errorf("search hit path = %v", result.Data[0]["path"])
	}

	if result := e.Execute(context.Background(), "search REPORT"); result.RowCount != 1 {
		t.Error("search must be case-insensitive")
	}
}

func TestFileExecutorRead(t *testing.T) {
	_, e := newArchive(t)

	result := e.Execute(context.Background(), "read notes.txt")
	if !result.Success || result.RowCount != 1 {
		t.Fatalf("read = %+v", result)
	}
	if result.Data[0]["content"] != "meeting notes" {
		t.Errorf("content = %v", result.Data[0]["content"])
	}

	// Bare file name finds the file anywhere under the root.
	result = e.Execute(context.Background(), "read q1_report.txt")
	if !result.Success {
		t.Fatalf("nested read failed: %s", result.Error)
	}

	if result := e.Execute(context.Background(), "read ghost.txt"); result.Success {
		t.Error("reading a missing file must fail")
	}
}

func TestFileExecutorStat(t *testing.T) {
	_, e := newArchive(t)

	result := e.Execute(context.Background(), "stat budget_2025.csv")
	if !result.Success || result.RowCount != 1 {
		t.Fatalf("stat = %+v", result)
	}
	row := result.Data[0]
	if row["name"] != "budget_2025.csv" || row["is_dir"] != false {
		t.Errorf("stat row = %v", row)
	}
	if row["size"].(int64) <= 0 {
		t.Errorf("stat size = %v", row["size"])
	}
}

func TestFileExecutorBlocksTraversal(t *testing.T) {
	root, e := newArchive(t)

	outside := filepath.Join(filepath.Dir(root), "secret.txt")
	if err := os.WriteFile(outside, []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}
	defer os.Remove(outside)

	result := e.Execute(context.Background(), "read ../secret.txt")
	if result.Success {
		t.Fatal("path traversal must not succeed")
	}
	if result := e.Execute(context.Background(), "list ../"); result.RowCount > 0 {
		for _, row := range result.Data {
			if row["name"] == "secret.txt" {
				t.Fatal("listing escaped the archive root")
			}
		}
	}
}

func TestFileExecutorTranslatesFreeText(t *testing.T) {
	_, e := newArchive(t)
	tr := &stubTranslator{native: "search budget"}
	e.translator = tr

	result := e.Execute(context.Background(), "find the budget spreadsheet")
	if !result.Success || result.RowCount != 1 {
		t.Fatalf("translated execute = %+v", result)
	}
	if tr.calls != 1 {
		t.Errorf("translator calls = %d, want 1", tr.calls)
	}
	if result.NativeQuery != "search budget" {
		t.Errorf("native query = %q", result.NativeQuery)
	}
}

func TestFileExecutorCachesListings(t *testing.T) {
	root, e := newArchive(t)
	if e.watcher != nil {
		// Detach the watcher so the cache is exercised without invalidation.
		e.watcher.Close()
		e.watcher = nil
	}

	first := e.Execute(context.Background(), "list")
	if first.RowCount != 3 {
		t.Fatalf("first listing rows = %d", first.RowCount)
	}

	if err := os.WriteFile(filepath.Join(root, "new.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	second := e.Execute(context.Background(), "list")
	if second.RowCount != 3 {
		t.Errorf("cached listing rows = %d, want the cached 3", second.RowCount)
	}
}
