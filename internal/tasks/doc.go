// Package tasks computes event reports and runs long-running exports with progress reporting.
//
// # Reports
//
// [FilterEvents], [Partition], [Stats] and [SongStats] are pure functions over loaded events and play
// counts. They back the event list, the stats command and the dashboard numbers (total, upcoming, this month).
//
// # Bulk Export
//
// [Exporter.BulkExport] writes one file per event setlist using a bounded worker pool:
//   - a producer loads each event's [formatter.Sheet], throttled by a [rate.Limiter]
//   - workers render and write files concurrently
//   - a manifest.json summarizing successes and failures is written last
//
// One failed event never aborts the batch; it is recorded in the result.
//
// # Progress Reporting
//
// Operations send [ProgressUpdate] values on an optional channel. Sends use select with default so a slow or
// absent reader never blocks the export.
package tasks
