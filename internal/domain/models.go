package domain

import (
	"errors"
	"strings"
	"time"
)

// Type is the presentation style of a banner.
type Type string

const (
	TypeInfo    Type = "info"
	TypeWarning Type = "warning"
	TypeSuccess Type = "success"
	TypeUrgent  Type = "urgent"
)

// Normalize maps unknown or empty types to info.
func (t Type) Normalize() Type {
	switch t {
	case TypeInfo, TypeWarning, TypeSuccess, TypeUrgent:
		return t
	}
	return TypeInfo
}

type Link struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// Announcement is one catalog record. Dates are kept as authored; see ParseDay.
type Announcement struct {
	ID          string `json:"id"`
	Active      bool   `json:"active"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Dismissible bool   `json:"dismissible"`
	Type        Type   `json:"type"`
	Message     string `json:"message"`
	Link        *Link  `json:"link,omitempty"`
}

var (
	ErrMissingID      = errors.New("announcement: missing id")
	ErrMissingMessage = errors.New("announcement: missing message")
)

// Validate reports records that can never be shown because a required field is absent.
func (a Announcement) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(a.Message) == "" {
		return ErrMissingMessage
	}
	return nil
}

// HasLink is false for a nil link or one without a URL.
func (a Announcement) HasLink() bool {
	return a.Link != nil && strings.TrimSpace(a.Link.URL) != ""
}

const dayLayout = "2006-01-02"

// ParseDay returns midnight of the calendar day named by s in loc.
// Accepts "2006-01-02" and RFC3339; anything else reports ok=false.
func ParseDay(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(dayLayout, s, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return StartOfDay(t, loc), true
	}
	return time.Time{}, false
}

// StartOfDay strips the time of day from t as seen in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// EndOfDay is the last representable millisecond of the day starting at day.
func EndOfDay(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), day.Location())
}
