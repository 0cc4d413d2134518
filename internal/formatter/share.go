package formatter

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/setlistx/internal/shared"
	"github.com/skip2/go-qrcode"
)

// redirectHosts are the only hosts the share redirect may send a browser to.
var redirectHosts = map[string]bool{
	"wa.me":            true,
	"api.whatsapp.com": true,
}

// ShareMessage formats the sheet as a WhatsApp message.
func ShareMessage(sheet Sheet) string {
	var b strings.Builder
	event := sheet.Event

	fmt.Fprintf(&b, "*%s*\n", event.Name)
	if name := sheet.BandName(); name != "" {
		fmt.Fprintf(&b, "_%s_\n", name)
	}
	fmt.Fprintf(&b, "Date: %s (%s)\n", event.DateString(), event.Kind)
	if event.Leader != "" {
		fmt.Fprintf(&b, "Leader: %s\n", event.Leader)
	}

	b.WriteString("\n*Setlist*\n")
	if sheet.Setlist.Len() == 0 {
		b.WriteString("_No songs yet_\n")
	}
	for _, e := range sheet.Setlist.Entries() {
		fmt.Fprintf(&b, "%d. %s", e.Order, e.Song.Name)
		if key := e.Key(); key != "" {
			fmt.Fprintf(&b, " (%s)", key)
		}
		if e.IsMedley {
			fmt.Fprintf(&b, " [Medley %d]", e.MedleyGroup)
		}
		b.WriteString("\n")
	}

	if groups := sheet.Setlist.MedleyGroups(); len(groups) > 0 {
		b.WriteString("\n*Medleys*\n")
		for _, g := range groups {
			fmt.Fprintf(&b, "Medley %d: %s\n", g.Number, g.Label())
		}
	}

	if len(sheet.Participants) > 0 {
		b.WriteString("\n*Roster*\n")
		for _, p := range sheet.Participants {
			fmt.Fprintf(&b, "- %s\n", participantLabel(p))
		}
	}

	if event.Notes != "" {
		fmt.Fprintf(&b, "\n*Notes*\n%s\n", event.Notes)
	}
	if event.YouTubeLink != "" {
		fmt.Fprintf(&b, "\nYouTube: %s\n", event.YouTubeLink)
	}
	return strings.TrimRight(b.String(), "\n")
}

// ShareURL builds a wa.me link that opens WhatsApp with message prefilled.
//
// When phone is set (any formatting; only digits are kept) the chat opens with that number.
func ShareURL(message, phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + digits + "?text=" + text
}

// RedirectPath is the local redirect endpoint path that forwards to target.
func RedirectPath(target string) string {
	return "/redirect?to=" + url.QueryEscape(target)
}

// ValidateRedirect parses raw and accepts it only as an https URL on a WhatsApp host.
// It returns the normalized URL to redirect to.
func ValidateRedirect(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: missing target", shared.ErrInvalidRedirect)
	}

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidRedirect, err)
	}
	if u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme %q is not https", shared.ErrInvalidRedirect, u.Scheme)
	}
	if u.User != nil || !redirectHosts[strings.ToLower(u.Host)] {
		return "", fmt.Errorf("%w: host %q is not allowed", shared.ErrInvalidRedirect, u.Host)
	}
	return u.String(), nil
}

// QR code sizes in pixels. Images grow with the square of the size, so it is capped.
const (
	DefaultQRSize = 256
	MaxQRSize     = 1024
)

// ShareQR encodes content as a PNG QR code of size pixels square. A size of 0 or less uses
// [DefaultQRSize]; sizes above [MaxQRSize] are rejected.
func ShareQR(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	if size > MaxQRSize {
		return nil, fmt.Errorf("%w: qr size %d exceeds %d", shared.ErrInvalidArgument, size, MaxQRSize)
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("%w: generating qr code: %v", shared.ErrInvalidInput, err)
	}
	return png, nil
}

// ShareQRTerminal renders content as a QR code made of half-block characters.
func ShareQRTerminal(content string) (string, error) {
	qr, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return "", fmt.Errorf("generating qr code: %w", err)
	}
	return qr.ToSmallString(false), nil
}
