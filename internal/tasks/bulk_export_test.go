package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/setlistx/internal/formatter"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/setlist"
	tu "github.com/desertthunder/setlistx/internal/testing"
)

type mockLoader struct {
	mu     sync.Mutex
	sheets map[string]formatter.Sheet
	calls  int
}

func (m *mockLoader) Detail(eventID string) (formatter.Sheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	sheet, ok := m.sheets[eventID]
	if !ok {
		return formatter.Sheet{}, fmt.Errorf("event not found: %s", eventID)
	}
	return sheet, nil
}

func newLoader(t *testing.T, n int) (*mockLoader, []string) {
	t.Helper()

	band := models.NewBand("Worship Team", "")
	band.SetID("b1")

	loader := &mockLoader{sheets: map[string]formatter.Sheet{}}
	var ids []string
	for i := range n {
		id := fmt.Sprintf("ev%d", i+1)
		event := tu.Event(t, "b1", fmt.Sprintf("Service %d", i+1), fmt.Sprintf("2025-03-%02d", i+1))
		event.SetID(id)
		entries := []models.SetlistEntry{tu.Entry("x1", id, "s1", 1), tu.Entry("x2", id, "s2", 2)}
		loader.sheets[id] = formatter.Sheet{Event: event, Band: band, Setlist: setlist.New(id, entries)}
		ids = append(ids, id)
	}
	return loader, ids
}

func TestBulkExport(t *testing.T) {
	t.Run("Formats", func(t *testing.T) {
		for _, format := range formatter.Formats {
			t.Run(string(format), func(t *testing.T) {
				dir := t.TempDir()
				loader, ids := newLoader(t, 3)

				result, err := NewExporter(loader, nil).BulkExport(context.Background(), nil, ids,
					BulkExportOpts{Format: format, OutputDir: dir, NumWorkers: 2})
				if err != nil {
					t.Fatalf("BulkExport failed: %v", err)
				}
				if result.SuccessfulExports != 3 || result.FailedExports != 0 {
					t.Fatalf("expected 3 successes, got %+v", result)
				}
				for _, res := range result.Results {
					tu.AssertFileExists(t, res.File)
					if filepath.Dir(res.File) != filepath.Join(dir, "worship-team") {
						t.Errorf("expected file under band directory, got %s", res.File)
					}
					if !strings.HasSuffix(res.File, format.Extension()) {
						t.Errorf("expected %s file, got %s", format, res.File)
					}
					if res.Songs != 2 {
						t.Errorf("expected 2 songs, got %d", res.Songs)
					}
				}
			})
		}
	})

	t.Run("PartialFailure", func(t *testing.T) {
		dir := t.TempDir()
		loader, ids := newLoader(t, 2)
		ids = append(ids, "missing")

		result, err := NewExporter(loader, nil).BulkExport(context.Background(), nil, ids,
			BulkExportOpts{Format: formatter.JSON, OutputDir: dir})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		if result.SuccessfulExports != 2 || result.FailedExports != 1 {
			t.Errorf("expected 2 ok / 1 failed, got %d / %d", result.SuccessfulExports, result.FailedExports)
		}

		var failures []EventExportResult
		for _, r := range result.Results {
			if !r.Success {
				failures = append(failures, r)
			}
		}
		if len(failures) != 1 || failures[0].EventID != "missing" || failures[0].Error == nil {
			t.Errorf("unexpected failures %+v", failures)
		}
	})

	t.Run("Manifest", func(t *testing.T) {
		dir := t.TempDir()
		loader, ids := newLoader(t, 2)
		ids = append(ids, "missing")

		result, err := NewExporter(loader, nil).BulkExport(context.Background(), nil, ids,
			BulkExportOpts{Format: formatter.CSV, OutputDir: dir})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		if result.ManifestPath != filepath.Join(dir, "manifest.json") {
			t.Fatalf("unexpected manifest path %s", result.ManifestPath)
		}

		var manifest struct {
			Format            string `json:"format"`
			TotalEvents       int    `json:"total_events"`
			SuccessfulExports int    `json:"successful_exports"`
			FailedExports     int    `json:"failed_exports"`
			Results           []struct {
				EventID string `json:"event_id"`
				Success bool   `json:"success"`
				Error   string `json:"error"`
			} `json:"results"`
		}
		if err := json.Unmarshal([]byte(tu.MustReadFile(t, result.ManifestPath)), &manifest); err != nil {
			t.Fatalf("manifest is not valid JSON: %v", err)
		}
		if manifest.Format != "csv" || manifest.TotalEvents != 3 || manifest.SuccessfulExports != 2 || manifest.FailedExports != 1 {
			t.Errorf("unexpected manifest %+v", manifest)
		}
		for _, r := range manifest.Results {
			if !r.Success && !strings.Contains(r.Error, "failed to load event") {
				t.Errorf("expected failure message in manifest, got %q", r.Error)
			}
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		t.Chdir(t.TempDir())
		loader, ids := newLoader(t, 1)

		result, err := NewExporter(loader, nil).BulkExport(context.Background(), nil, ids, BulkExportOpts{NumWorkers: 50})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		if result.Format != formatter.Markdown {
			t.Errorf("expected markdown default, got %s", result.Format)
		}
		if !strings.HasPrefix(result.OutputDirectory, "setlists_") {
			t.Errorf("expected default output directory, got %s", result.OutputDirectory)
		}
		tu.AssertDirExists(t, result.OutputDirectory)
	})

	t.Run("Progress", func(t *testing.T) {
		loader, ids := newLoader(t, 3)
		prog := make(chan ProgressUpdate, 100)

		_, err := NewExporter(loader, nil).BulkExport(context.Background(), prog, ids,
			BulkExportOpts{Format: formatter.Text, OutputDir: t.TempDir()})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		close(prog)

		phases := map[Phase]int{}
		for u := range prog {
			phases[u.Phase]++
		}
		if phases[LoadEvents] != 3 || phases[ExportEvent] != 3 || phases[WriteManifest] != 1 {
			t.Errorf("unexpected progress counts %v", phases)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		loader, ids := newLoader(t, 5)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := NewExporter(loader, nil).BulkExport(ctx, nil, ids,
			BulkExportOpts{Format: formatter.JSON, OutputDir: t.TempDir()})
		if !IsCancelled(err) {
			t.Fatalf("expected cancellation error, got %v", err)
		}
		if result == nil || result.SuccessfulExports != 0 {
			t.Errorf("expected empty partial result, got %+v", result)
		}
		if loader.calls != 0 {
			t.Errorf("no events should be loaded after cancellation, got %d", loader.calls)
		}
	})

	t.Run("BadOutputDir", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		loader, ids := newLoader(t, 1)

		_, err := NewExporter(loader, nil).BulkExport(context.Background(), nil, ids,
			BulkExportOpts{OutputDir: filepath.Join(file, "sub")})
		if err == nil {
			t.Error("expected error creating output directory under a file")
		}
	})

	t.Run("NilLoader", func(t *testing.T) {
		_, err := NewExporter(nil, nil).BulkExport(context.Background(), nil, nil, BulkExportOpts{})
		if err == nil || errors.Is(err, context.Canceled) {
			t.Errorf("expected setup error, got %v", err)
		}
	})
}
