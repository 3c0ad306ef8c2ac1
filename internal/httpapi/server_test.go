package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsFormPost(t *testing.T) {
	cases := []struct {
		ct   string
		want bool
	}{
		{"application/x-www-form-urlencoded", true},
		{"multipart/form-data; boundary=x", true},
		{"application/json", false},
		{"", false},
	}
	for _, c := range cases {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		if c.ct != "" {
			r.Header.Set("Content-Type", c.ct)
		}
		if got := isFormPost(r); got != c.want {
			t.Fatalf("isFormPost(%q)=%v want %v", c.ct, got, c.want)
		}
	}
}

func TestCORS_RestrictedOrigins(t *testing.T) {
	h := corsHandler([]string{"https://qhack.example"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/announcements", nil)
	req.Header.Set("Origin", "https://qhack.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://qhack.example" {
		t.Fatalf("allowed origin not echoed: %q", got)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/announcements", nil)
	req2.Header.Set("Origin", "https://evil.example")
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req2)
	if got := rec2.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("foreign origin allowed: %q", got)
	}
}
