package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/setlistx/internal/shared"
)

// DateLayout is the calendar-day format events are stored and parsed with.
const DateLayout = "2006-01-02"

// EventKind classifies an event.
type EventKind string

const (
	SundayService    EventKind = "sunday_service"
	WednesdayService EventKind = "wednesday_service"
	SpecialEvent     EventKind = "special"
)

// EventKinds lists every valid [EventKind].
var EventKinds = []EventKind{SundayService, WednesdayService, SpecialEvent}

// ParseEventKind converts user input into an [EventKind]. Empty input yields [SundayService].
func ParseEventKind(s string) (EventKind, error) {
	if s == "" {
		return SundayService, nil
	}
	for _, k := range EventKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown event kind %q", shared.ErrInvalidArgument, s)
}

func (k EventKind) String() string {
	switch k {
	case SundayService:
		return "Sunday service"
	case WednesdayService:
		return "Wednesday service"
	case SpecialEvent:
		return "Special"
	default:
		return string(k)
	}
}

// Event is a scheduled performance or service by a band.
type Event struct {
	Record
	BandID      string
	Name        string
	Date        time.Time
	Kind        EventKind
	Notes       string
	YouTubeLink string
	Leader      string
}

// NewEvent creates an unsaved [Event] of kind [SundayService].
func NewEvent(bandID, name string, date time.Time) *Event {
	return &Event{
		Record: newRecord(),
		BandID: bandID,
		Name:   strings.TrimSpace(name),
		Date:   Day(date),
		Kind:   SundayService,
	}
}

// Validate requires a band, a non-empty name and a known kind.
func (e *Event) Validate() error {
	if e.BandID == "" {
		return fmt.Errorf("%w: event band is required", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: event name is required", shared.ErrInvalidInput)
	}
	if _, err := ParseEventKind(string(e.Kind)); err != nil {
		return err
	}
	return nil
}

// DateString formats the event day as YYYY-MM-DD.
func (e *Event) DateString() string {
	return e.Date.Format(DateLayout)
}

// IsUpcoming reports whether the event falls after the day containing now.
func (e *Event) IsUpcoming(now time.Time) bool {
	return Day(e.Date).After(Day(now))
}

// ParseDate parses a YYYY-MM-DD calendar day in local time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD: %q", shared.ErrInvalidArgument, s)
	}
	return t, nil
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
