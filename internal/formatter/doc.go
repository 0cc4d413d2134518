// Package formatter renders event setlists for people: export files, WhatsApp share messages, QR codes and
// terminal tables.
//
// Every renderer works from a [Sheet], the event plus its band, setlist and roster.
//
// # Exports
//
// [Export] produces one of the [Format] values:
//   - csv : one row per entry with order, song, key and medley group
//   - markdown : headings for details, setlist, medleys and roster
//   - txt : plain numbered list
//   - html : the markdown rendered with goldmark inside a minimal page
//   - json : the sheet with entries and medley labels
//
// # Sharing
//
// [ShareMessage] formats the sheet with WhatsApp markup (*bold* and _italic_). [ShareURL] wraps it in a
// wa.me link and [ValidateRedirect] guards the redirect endpoint so only WhatsApp hosts are reachable.
package formatter
