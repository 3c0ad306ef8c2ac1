package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestVisitor_IssuesAndReusesCookie(t *testing.T) {
	var seen string
	h := Visitor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = VisitorID(r.Context())
	}))

	// first visit: new id + cookie
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("visitor id not a uuid: %q", seen)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != VisitorCookie || cookies[0].Value != seen {
		t.Fatalf("cookie not issued: %+v", cookies)
	}
	first := seen

	// return visit: same id, no new cookie
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: first})
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req)
	if seen != first {
		t.Fatalf("visitor id changed: %q -> %q", first, seen)
	}
	if len(rec2.Result().Cookies()) != 0 {
		t.Fatalf("unexpected cookie reissue")
	}
}

func TestVisitor_ReplacesTamperedCookie(t *testing.T) {
	var seen string
	h := Visitor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = VisitorID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: "../../etc/passwd"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen == "../../etc/passwd" {
		t.Fatalf("tampered id accepted")
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Fatalf("expected fresh cookie")
	}
}

func TestVisitorID_Empty(t *testing.T) {
	if id := VisitorID(httptest.NewRequest(http.MethodGet, "/", nil).Context()); id != "" {
		t.Fatalf("want empty, got %q", id)
	}
}
