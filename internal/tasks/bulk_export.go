package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlistx/internal/formatter"
	"github.com/desertthunder/setlistx/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultWorkers = 4
	maxWorkers     = 10
	manifestName   = "manifest.json"
)

// SheetLoader loads everything rendered about one event.
type SheetLoader interface {
	Detail(eventID string) (formatter.Sheet, error)
}

// BulkExportOpts contains configuration for bulk setlist exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format (default: markdown)
	OutputDir  string           // Base output directory (default: setlists_{epoch})
	NumWorkers int              // Concurrent workers (default: 4, max: 10)
	RateLimit  float64          // Event loads per second; 0 means unlimited
}

// EventExportResult is the outcome for a single event.
type EventExportResult struct {
	EventID   string `json:"event_id"`
	EventName string `json:"event_name"`
	File      string `json:"file,omitempty"`
	Songs     int    `json:"songs"`
	Success   bool   `json:"success"`
	Error     error  `json:"-"`
	Message   string `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export and is written as the manifest.
type BulkExportResult struct {
	Format            formatter.Format    `json:"format"`
	ExportedAt        time.Time           `json:"exported_at"`
	OutputDirectory   string              `json:"output_directory"`
	TotalEvents       int                 `json:"total_events"`
	SuccessfulExports int                 `json:"successful_exports"`
	FailedExports     int                 `json:"failed_exports"`
	Results           []EventExportResult `json:"results"`
	ManifestPath      string              `json:"-"`
}

type exportJob struct {
	eventID string
	sheet   formatter.Sheet
}

// Exporter runs bulk exports over a [SheetLoader].
type Exporter struct {
	loader SheetLoader
	logger *log.Logger
}

// NewExporter creates an Exporter. A nil logger falls back to [log.Default].
func NewExporter(loader SheetLoader, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.Default()
	}
	return &Exporter{loader: loader, logger: shared.WithLogger(logger, "task", "export")}
}

// BulkExport exports the setlists of the given events concurrently and writes a manifest.
//
// Loads are throttled by opts.RateLimit and files are written by a worker pool. Failures are recorded per event;
// only setup errors or a manifest write failure are returned as errors. Cancelling ctx stops scheduling new
// events and returns the partial result with ctx's error.
func (e *Exporter) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	eventIDs []string,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if e.loader == nil {
		return nil, fmt.Errorf("%w: exporter has no loader", shared.ErrMissingArgument)
	}

	if opts.Format == "" {
		opts.Format = formatter.Markdown
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("setlists_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	if opts.NumWorkers > maxWorkers {
		opts.NumWorkers = maxWorkers
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		Format:          opts.Format,
		ExportedAt:      time.Now(),
		OutputDirectory: opts.OutputDir,
		TotalEvents:     len(eventIDs),
		Results:         make([]EventExportResult, 0, len(eventIDs)),
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	limiter := rate.NewLimiter(limit, 1)

	jobs := make(chan exportJob, len(eventIDs))
	results := make(chan EventExportResult, len(eventIDs))

	// results closes once the producer and every worker are done
	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)
		for i, id := range eventIDs {
			if ctx.Err() != nil {
				return
			}
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			sheet, err := e.loader.Detail(id)
			if err != nil {
				results <- failed(EventExportResult{EventID: id, EventName: fmt.Sprintf("Unknown (%s)", id)},
					fmt.Errorf("failed to load event: %w", err))
				continue
			}

			sendProgress(prog, loadingEventUpdate(i+1, len(eventIDs), sheet.Event.Name))
			jobs <- exportJob{eventID: id, sheet: sheet}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, len(eventIDs), res.EventName, res.File))
		} else {
			result.FailedExports++
			e.logger.Warn("event export failed", "event", res.EventID, "error", res.Error)
			sendProgress(prog, exportFailedUpdate(completed, len(eventIDs), res.EventName, res.Error))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, manifestName)
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	sendProgress(prog, manifestUpdate(manifestPath))

	e.logger.Info("bulk export finished",
		"dir", opts.OutputDir, "format", opts.Format,
		"ok", result.SuccessfulExports, "failed", result.FailedExports,
	)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// exportWorker renders jobs until the channel closes or ctx is cancelled.
func (e *Exporter) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan exportJob,
	results chan<- EventExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		results <- exportSingleEvent(job, opts)
	}
}

func exportSingleEvent(j exportJob, opts BulkExportOpts) EventExportResult {
	res := EventExportResult{
		EventID:   j.eventID,
		EventName: j.sheet.Event.Name,
		Songs:     j.sheet.Setlist.Len(),
	}

	dir := opts.OutputDir
	if j.sheet.Band != nil {
		dir = filepath.Join(dir, formatter.Slug(j.sheet.Band.Name))
	}

	path, err := formatter.WriteExport(j.sheet, opts.Format, dir)
	if err != nil {
		return failed(res, fmt.Errorf("%s export failed: %w", opts.Format, err))
	}
	res.File = path
	res.Success = true
	return res
}

func failed(res EventExportResult, err error) EventExportResult {
	res.Success = false
	res.Error = err
	res.Message = err.Error()
	return res
}

func writeManifest(result *BulkExportResult, path string) error {
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// IsCancelled reports whether err came from a cancelled or expired context.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
