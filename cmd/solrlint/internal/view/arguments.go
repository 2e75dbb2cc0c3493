package view

import (
	"fmt"
	"strings"
)

// ViewType represents which view layer to use.
type ViewType rune

const (
	ViewNone  ViewType = 0
	ViewHuman ViewType = 'H'
	ViewJSON  ViewType = 'J'
)

// String returns the string representation of the ViewType.
func (vt ViewType) String() string {
	switch vt {
	case ViewNone:
		return "none"
	case ViewHuman:
		return "human"
	case ViewJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ParseOutputFormat maps the -o flag value to a ViewType. An empty value
// selects the human view.
func ParseOutputFormat(s string) (ViewType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "human", "text":
		return ViewHuman, nil
	case "json":
		return ViewJSON, nil
	default:
		return ViewNone, fmt.Errorf("unknown output format %q", s)
	}
}
