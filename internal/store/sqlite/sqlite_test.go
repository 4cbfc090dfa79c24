package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/coderoom-server/internal/store"
)

func TestSaveAndListRuns(t *testing.T) {
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		language string
		result   string
	}{
		{language: "python", result: "ok"},
		{language: "cpp", result: "execution_service_error"},
		{language: "cobol", result: "unsupported_language"},
	}
	for i, tt := range tests {
		rec := &store.RunRecord{
			Language:   tt.language,
			Result:     tt.result,
			DurationMs: int64(i * 10),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.SaveRun(ctx, rec); err != nil {
			t.Fatalf("save run %d: %v", i, err)
		}
		if rec.ID == 0 {
			t.Fatalf("record %d has no id", i)
		}
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Language != "cobol" || runs[1].Language != "cpp" {
		t.Fatalf("unexpected order: %s, %s", runs[0].Language, runs[1].Language)
	}
	if runs[0].Result != "unsupported_language" || runs[1].DurationMs != 10 {
		t.Fatalf("unexpected record: %+v %+v", runs[0], runs[1])
	}
}

func TestNewCreatesFileAndDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "audit.db")

	s, err := New(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.SaveRun(context.Background(), &store.RunRecord{Language: "go", Result: "ok"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.Close()

	// Reopening applies the schema again without error and keeps the data.
	s, err = New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	runs, err := s.ListRuns(context.Background(), 10)
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected persisted run, got %v (%v)", runs, err)
	}
}
