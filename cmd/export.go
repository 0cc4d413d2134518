package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/setlistx/internal/formatter"
	"github.com/desertthunder/setlistx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Export writes the setlists of every matching event into one directory, with a manifest.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	from, err := optionalDate(cmd, "from")
	if err != nil {
		return err
	}
	to, err := optionalDate(cmd, "to")
	if err != nil {
		return err
	}

	formatName := cmd.String("format")
	if formatName == "" {
		formatName = r.config.Export.Format
	}
	format, err := formatter.ParseFormat(formatName)
	if err != nil {
		return err
	}

	opts := tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	}
	if opts.OutputDir == "" {
		opts.OutputDir = r.config.Export.Dir
	}
	if opts.NumWorkers == 0 {
		opts.NumWorkers = r.config.Export.Workers
	}

	if err := r.open(); err != nil {
		return err
	}

	criteria := map[string]any{"from": from, "to": to}
	if ref := cmd.String("band"); ref != "" {
		band, err := r.resolveBand(ref)
		if err != nil {
			return err
		}
		criteria["band_id"] = band.ID()
	}
	events, err := r.events.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}
	if len(events) == 0 {
		return r.writePlain("No events to export.\n")
	}

	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID()
	}

	r.logger.Info("starting bulk export", "events", len(ids), "format", format)
	r.writePlain("Exporting %d setlists as %s...\n\n", len(ids), format)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.LoadEvents:
				r.logger.Debug(update.Message)
			case tasks.ExportEvent:
				r.writePlain("   %s\n", update.Message)
			case tasks.WriteManifest:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()

	result, err := tasks.NewExporter(r.service, r.logger).BulkExport(ctx, progressCh, ids, opts)
	close(progressCh)
	<-done

	if tasks.IsCancelled(err) {
		r.writePlain("\nExport cancelled.\n")
	}
	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Exported: %d/%d\n", result.SuccessfulExports, result.TotalEvents)

	if result.FailedExports > 0 {
		r.writePlain("\nFailed to export %d events:\n", result.FailedExports)
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  - %s: %s\n", res.EventName, res.Message)
			}
		}
	}
	return nil
}
