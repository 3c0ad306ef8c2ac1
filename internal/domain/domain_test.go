package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAnnouncement_DecodesAuthoredJSON(t *testing.T) {
	raw := `{
		"id": "reg-open",
		"active": true,
		"startDate": "2025-01-01",
		"endDate": "2025-01-31",
		"dismissible": true,
		"type": "urgent",
		"message": "Registration closes Friday",
		"link": {"url": "/register", "text": "Register"}
	}`
	var a Announcement
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if a.ID != "reg-open" || !a.Active || !a.Dismissible || a.Type != TypeUrgent {
		t.Fatalf("unexpected decode: %+v", a)
	}
	if !a.HasLink() || a.Link.Text != "Register" {
		t.Fatalf("expected link, got %+v", a.Link)
	}
}

func TestAnnouncement_MissingLinkTolerated(t *testing.T) {
	var a Announcement
	if err := json.Unmarshal([]byte(`{"id":"a","message":"hi"}`), &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if a.HasLink() {
		t.Fatalf("expected no link")
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestAnnouncement_Validate(t *testing.T) {
	if err := (Announcement{Message: "x"}).Validate(); err != ErrMissingID {
		t.Fatalf("want ErrMissingID, got %v", err)
	}
	if err := (Announcement{ID: "a", Message: "  "}).Validate(); err != ErrMissingMessage {
		t.Fatalf("want ErrMissingMessage, got %v", err)
	}
}

func TestType_Normalize(t *testing.T) {
	cases := []struct {
		in, want Type
	}{
		{TypeWarning, TypeWarning},
		{TypeUrgent, TypeUrgent},
		{"", TypeInfo},
		{"party", TypeInfo},
	}
	for _, c := range cases {
		if got := c.in.Normalize(); got != c.want {
			t.Fatalf("Normalize(%q)=%q want %q", c.in, got, c.want)
		}
	}
}

func TestParseDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	cases := []struct {
		in   string
		ok   bool
		want time.Time
	}{
		{"2025-01-15", true, time.Date(2025, 1, 15, 0, 0, 0, 0, loc)},
		{" 2025-01-15 ", true, time.Date(2025, 1, 15, 0, 0, 0, 0, loc)},
		// 03:00Z is still the 14th five hours west of UTC
		{"2025-01-15T03:00:00Z", true, time.Date(2025, 1, 14, 0, 0, 0, 0, loc)},
		{"2025-13-40", false, time.Time{}},
		{"next tuesday", false, time.Time{}},
		{"", false, time.Time{}},
	}
	for _, c := range cases {
		got, ok := ParseDay(c.in, loc)
		if ok != c.ok {
			t.Fatalf("ParseDay(%q) ok=%v want %v", c.in, ok, c.ok)
		}
		if ok && !got.Equal(c.want) {
			t.Fatalf("ParseDay(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

func TestEndOfDay(t *testing.T) {
	day := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	got := EndOfDay(day)
	want := time.Date(2025, 1, 31, 23, 59, 59, 999_000_000, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("EndOfDay=%v want %v", got, want)
	}
}
