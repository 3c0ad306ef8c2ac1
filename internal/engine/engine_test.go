package engine

import (
	"testing"
	"time"

	"github.com/hamed0406/announcer/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func rec(id string) domain.Announcement {
	return domain.Announcement{
		ID:        id,
		Active:    true,
		StartDate: "2025-01-01",
		EndDate:   "2025-01-31",
		Type:      domain.TypeInfo,
		Message:   "message " + id,
	}
}

func ids(as []domain.Announcement) []string {
	out := make([]string, 0, len(as))
	for _, a := range as {
		out = append(out, a.ID)
	}
	return out
}

func sameIDs(t *testing.T, got []domain.Announcement, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("visible=%v want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("visible=%v want %v", g, want)
		}
	}
}

func TestVisible_Scenarios(t *testing.T) {
	e := New(time.UTC)

	a := rec("a")
	inactive := rec("a")
	inactive.Active = false
	dismissible := rec("a")
	dismissible.Dismissible = true

	cases := []struct {
		name      string
		catalog   []domain.Announcement
		dismissed Set
		now       time.Time
		want      []string
	}{
		{"A in range", []domain.Announcement{a}, nil, day(2025, 1, 15), []string{"a"}},
		{"B inactive", []domain.Announcement{inactive}, nil, day(2025, 1, 15), nil},
		{"C dismissed", []domain.Announcement{dismissible}, NewSet("a"), day(2025, 1, 15), nil},
		{"C cleared", []domain.Announcement{dismissible}, NewSet(), day(2025, 1, 15), []string{"a"}},
		{"D past end", []domain.Announcement{a}, nil, day(2025, 2, 1), nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sameIDs(t, e.Visible(c.catalog, c.dismissed, c.now), c.want...)
		})
	}
}

func TestVisible_BoundariesInclusive(t *testing.T) {
	e := New(time.UTC)
	catalog := []domain.Announcement{rec("a")}

	cases := []struct {
		now  time.Time
		want bool
	}{
		{time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC), false},
		{day(2025, 1, 1), true},
		{time.Date(2025, 1, 1, 0, 0, 1, 0, time.UTC), true},
		{time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC), true},
		{day(2025, 2, 1), false},
	}
	for _, c := range cases {
		got := len(e.Visible(catalog, nil, c.now)) == 1
		if got != c.want {
			t.Fatalf("now=%v visible=%v want %v", c.now, got, c.want)
		}
	}
}

func TestVisible_InactiveNeverShown(t *testing.T) {
	e := New(time.UTC)
	r := rec("a")
	r.Active = false
	r.Dismissible = true
	for _, d := range []Set{nil, NewSet(), NewSet("a")} {
		for _, now := range []time.Time{day(2024, 6, 1), day(2025, 1, 15), day(2026, 1, 1)} {
			if got := e.Visible([]domain.Announcement{r}, d, now); len(got) != 0 {
				t.Fatalf("inactive record shown at %v with %v", now, d)
			}
		}
	}
}

func TestVisible_NonDismissibleIgnoresDismissals(t *testing.T) {
	e := New(time.UTC)
	got := e.Visible([]domain.Announcement{rec("a")}, NewSet("a"), day(2025, 1, 15))
	sameIDs(t, got, "a")
}

func TestVisible_PreservesCatalogOrder(t *testing.T) {
	e := New(time.UTC)
	catalog := []domain.Announcement{rec("z"), rec("a"), rec("m")}
	sameIDs(t, e.Visible(catalog, nil, day(2025, 1, 10)), "z", "a", "m")
}

func TestVisible_MalformedRecordsExcludedIndividually(t *testing.T) {
	e := New(time.UTC)

	badStart := rec("bad-start")
	badStart.StartDate = "not a date"
	badEnd := rec("bad-end")
	badEnd.EndDate = "2025-02-30"
	inverted := rec("inverted")
	inverted.StartDate, inverted.EndDate = "2025-01-31", "2025-01-01"
	noID := rec("")
	noMessage := rec("no-msg")
	noMessage.Message = ""

	catalog := []domain.Announcement{badStart, rec("ok1"), badEnd, inverted, noID, noMessage, rec("ok2")}
	for _, now := range []time.Time{day(2025, 1, 1), day(2025, 1, 15), day(2025, 1, 31)} {
		sameIDs(t, e.Visible(catalog, nil, now), "ok1", "ok2")
	}
}

func TestVisible_UsesEngineCalendar(t *testing.T) {
	// 2025-02-01T02:00Z is still January 31st in New York.
	ny := time.FixedZone("EST", -5*3600)
	now := time.Date(2025, 2, 1, 2, 0, 0, 0, time.UTC)

	if got := New(ny).Visible([]domain.Announcement{rec("a")}, nil, now); len(got) != 1 {
		t.Fatalf("expected visible on local Jan 31")
	}
	if got := New(time.UTC).Visible([]domain.Announcement{rec("a")}, nil, now); len(got) != 0 {
		t.Fatalf("expected hidden on UTC Feb 1")
	}
}

func TestVisible_DoesNotMutateCatalog(t *testing.T) {
	e := New(nil)
	catalog := []domain.Announcement{rec("a"), rec("b")}
	catalog[1].Active = false
	_ = e.Visible(catalog, nil, day(2025, 1, 15))
	if len(catalog) != 2 || catalog[0].ID != "a" || catalog[1].Active {
		t.Fatalf("catalog mutated: %+v", catalog)
	}
}
