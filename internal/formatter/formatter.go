package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/setlist"
	"github.com/desertthunder/setlistx/internal/shared"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// Sheet is everything rendered about one event.
type Sheet struct {
	Event        *models.Event
	Band         *models.Band
	Setlist      setlist.Setlist
	Participants []*models.Participant
}

// BandName returns the band's name or "" when the band is unknown.
func (s Sheet) BandName() string {
	if s.Band == nil {
		return ""
	}
	return s.Band.Name
}

// MedleyCount is the number of medley groups in the setlist.
func (s Sheet) MedleyCount() int {
	return len(s.Setlist.MedleyGroups())
}

// Format names an export file type.
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "txt"
	HTML     Format = "html"
	JSON     Format = "json"
)

// Formats lists every supported [Format].
var Formats = []Format{CSV, Markdown, Text, HTML, JSON}

// ParseFormat accepts a format name or a common alias ("md", "text"). Empty input yields [Markdown].
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return Markdown, nil
	case "csv":
		return CSV, nil
	case "txt", "text":
		return Text, nil
	case "html":
		return HTML, nil
	case "json":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, s)
	}
}

// Extension is the file extension for the format, including the dot.
func (f Format) Extension() string {
	switch f {
	case Markdown:
		return ".md"
	default:
		return "." + string(f)
	}
}

// mdRenderer escapes raw HTML in names and notes.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Export renders the sheet in the given format.
func Export(sheet Sheet, format Format) ([]byte, error) {
	switch format {
	case CSV:
		return ExportToCSV(sheet)
	case Markdown:
		return ExportToMarkdown(sheet)
	case Text:
		return ExportToText(sheet)
	case HTML:
		return ExportToHTML(sheet)
	case JSON:
		return ExportToJSON(sheet)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, format)
	}
}

// ExportToCSV writes one row per entry with columns: Order, Song, Original Key, Key Played, Medley
func ExportToCSV(sheet Sheet) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Order", "Song", "Original Key", "Key Played", "Medley"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, e := range sheet.Setlist.Entries() {
		medley := ""
		if e.IsMedley {
			medley = strconv.Itoa(e.MedleyGroup)
		}
		record := []string{strconv.Itoa(e.Order), e.Song.Name, e.Song.OriginalKey, e.KeyPlayed, medley}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToMarkdown renders event details, the numbered setlist, medley groups, roster and notes.
func ExportToMarkdown(sheet Sheet) ([]byte, error) {
	var buf bytes.Buffer
	event := sheet.Event

	fmt.Fprintf(&buf, "# %s\n\n", event.Name)
	if name := sheet.BandName(); name != "" {
		fmt.Fprintf(&buf, "**Band**: %s\n", name)
	}
	fmt.Fprintf(&buf, "**Date**: %s (%s)\n", event.DateString(), event.Kind)
	if event.Leader != "" {
		fmt.Fprintf(&buf, "**Leader**: %s\n", event.Leader)
	}
	if event.YouTubeLink != "" {
		fmt.Fprintf(&buf, "**YouTube**: <%s>\n", event.YouTubeLink)
	}
	fmt.Fprintf(&buf, "**Songs**: %d\n\n", sheet.Setlist.Len())

	buf.WriteString("## Setlist\n\n")
	if sheet.Setlist.Len() == 0 {
		buf.WriteString("_No songs yet._\n")
	}
	for _, e := range sheet.Setlist.Entries() {
		fmt.Fprintf(&buf, "%d. %s", e.Order, e.Song.Name)
		if key := e.Key(); key != "" {
			fmt.Fprintf(&buf, " (%s)", key)
		}
		if e.IsMedley {
			fmt.Fprintf(&buf, " _medley %d_", e.MedleyGroup)
		}
		buf.WriteString("\n")
	}

	if groups := sheet.Setlist.MedleyGroups(); len(groups) > 0 {
		buf.WriteString("\n## Medleys\n\n")
		for _, g := range groups {
			fmt.Fprintf(&buf, "- Medley %d: %s\n", g.Number, g.Label())
		}
	}

	if len(sheet.Participants) > 0 {
		buf.WriteString("\n## Roster\n\n")
		for _, p := range sheet.Participants {
			fmt.Fprintf(&buf, "- %s\n", participantLabel(p))
		}
	}

	if event.Notes != "" {
		fmt.Fprintf(&buf, "\n## Notes\n\n%s\n", event.Notes)
	}
	return buf.Bytes(), nil
}

// ExportToText renders a plain numbered setlist.
func ExportToText(sheet Sheet) ([]byte, error) {
	var buf bytes.Buffer
	event := sheet.Event

	fmt.Fprintf(&buf, "Event: %s\n", event.Name)
	if name := sheet.BandName(); name != "" {
		fmt.Fprintf(&buf, "Band: %s\n", name)
	}
	fmt.Fprintf(&buf, "Date: %s\n", event.DateString())
	fmt.Fprintf(&buf, "Songs: %d\n\n", sheet.Setlist.Len())

	for _, e := range sheet.Setlist.Entries() {
		fmt.Fprintf(&buf, "%d. %s", e.Order, e.Song.Name)
		if key := e.Key(); key != "" {
			fmt.Fprintf(&buf, " [%s]", key)
		}
		if e.IsMedley {
			fmt.Fprintf(&buf, " (medley %d)", e.MedleyGroup)
		}
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// ExportToHTML renders the markdown export to a standalone HTML page.
func ExportToHTML(sheet Sheet) ([]byte, error) {
	md, err := ExportToMarkdown(sheet)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	if err := mdRenderer.Convert(md, &body); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", html.EscapeString(sheet.Event.Name))
	buf.WriteString("</head>\n<body>\n")
	buf.Write(body.Bytes())
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}

type medleyJSON struct {
	Number int    `json:"number"`
	Label  string `json:"label"`
}

type sheetJSON struct {
	Event        *models.Event         `json:"event"`
	Band         *models.Band          `json:"band,omitempty"`
	Setlist      []models.SetlistEntry `json:"setlist"`
	Medleys      []medleyJSON          `json:"medleys"`
	Participants []*models.Participant `json:"participants"`
}

// ExportToJSON writes the sheet with its entries and medley labels.
func ExportToJSON(sheet Sheet) ([]byte, error) {
	medleys := []medleyJSON{}
	for _, g := range sheet.Setlist.MedleyGroups() {
		medleys = append(medleys, medleyJSON{Number: g.Number, Label: g.Label()})
	}

	participants := sheet.Participants
	if participants == nil {
		participants = []*models.Participant{}
	}

	entries := sheet.Setlist.Entries()
	if entries == nil {
		entries = []models.SetlistEntry{}
	}

	return shared.MarshalJSON(sheetJSON{
		Event:        sheet.Event,
		Band:         sheet.Band,
		Setlist:      entries,
		Medleys:      medleys,
		Participants: participants,
	}, true)
}

// FileName is the export file name for the sheet: "{date}_{slug}{ext}".
func FileName(sheet Sheet, format Format) string {
	return fmt.Sprintf("%s_%s%s", sheet.Event.DateString(), Slug(sheet.Event.Name), format.Extension())
}

// WriteExport renders the sheet and writes it into dir, creating dir as needed. Returns the file path.
func WriteExport(sheet Sheet, format Format, dir string) (string, error) {
	data, err := Export(sheet, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	path := filepath.Join(dir, FileName(sheet, format))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return path, nil
}

// Slug lowercases s and keeps only letters and digits, joined by single dashes.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "event"
	}
	return out
}

func participantLabel(p *models.Participant) string {
	if p.Instrument == "" {
		return p.Name
	}
	return fmt.Sprintf("%s (%s)", p.Name, p.Instrument)
}
