package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/setlistx/internal/shared"
)

// DefaultTagColor is used when a tag is created without a color.
const DefaultTagColor = "#3b82f6"

// TagColors names the preset palette offered when creating tags.
var TagColors = map[string]string{
	"red":     "#ef4444",
	"orange":  "#f97316",
	"amber":   "#f59e0b",
	"yellow":  "#eab308",
	"lime":    "#84cc16",
	"green":   "#22c55e",
	"teal":    "#14b8a6",
	"cyan":    "#06b6d4",
	"sky":     "#0ea5e9",
	"blue":    "#3b82f6",
	"indigo":  "#6366f1",
	"violet":  "#8b5cf6",
	"purple":  "#a855f7",
	"fuchsia": "#d946ef",
	"pink":    "#ec4899",
	"rose":    "#f43f5e",
}

// Tag labels songs by category, e.g. "Worship" or "Christmas".
type Tag struct {
	Record
	Name  string
	Color string
}

// NewTag creates an unsaved [Tag]. An empty color yields [DefaultTagColor].
func NewTag(name, color string) *Tag {
	if color == "" {
		color = DefaultTagColor
	}
	return &Tag{Record: newRecord(), Name: strings.TrimSpace(name), Color: color}
}

// Validate requires a non-empty name and a #rrggbb color.
func (t *Tag) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: tag name is required", shared.ErrInvalidInput)
	}
	if !isHexColor(t.Color) {
		return fmt.Errorf("%w: tag color must be #rrggbb, got %q", shared.ErrInvalidInput, t.Color)
	}
	return nil
}

// ParseTagColor accepts a preset name from [TagColors] or a #rrggbb value and returns it lowercased.
// Empty input yields [DefaultTagColor].
func ParseTagColor(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultTagColor, nil
	}
	if hex, ok := TagColors[s]; ok {
		return hex, nil
	}
	if !isHexColor(s) {
		return "", fmt.Errorf("%w: color must be a preset name or #rrggbb, got %q", shared.ErrInvalidArgument, s)
	}
	return s, nil
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
