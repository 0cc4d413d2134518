// Package server provides the HTTP API for browsing events and editing setlists.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /songs"), so a wrong method gets
// 405 and path wildcards are read with [http.Request.PathValue].
//
// # Middleware
//
//   - [Logging] : one structured log line per request with status and duration
//   - [RateLimit] : token bucket from golang.org/x/time/rate, 429 when exhausted
//   - [Recover] : turns handler panics into 500 responses
//
// # Handlers
//
// [API] serves JSON for bands, songs, tags, events and setlists. Setlist edits go through an [Editor], which
// services.SetlistService implements; band, song and event edits go straight to the [Catalog] repositories.
// PUT bodies only change the fields they carry, and DELETE answers 204. Domain errors map to status codes:
//   - duplicate song, song still in a setlist, band with events, tag name taken : 409
//   - unknown medley group : 422
//   - index out of range, unknown event, song, band or tag : 404
//   - bad input, QR size above 1024 : 400
//
// Requests that match no route still get a JSON {"error": ...} body for their 404 or 405.
//
// [RedirectHandler] implements the [Handler] interface and serves the WhatsApp share redirect. It only ever
// redirects to https://wa.me or https://api.whatsapp.com.
package server
