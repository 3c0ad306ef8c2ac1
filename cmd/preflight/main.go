// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hamed0406/announcer/internal/catalog"
)

func main() {
	failed := false
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		failed = true
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	admin := strings.TrimSpace(os.Getenv("ADMIN_API_KEYS"))
	apiAddr := strings.TrimSpace(os.Getenv("API_ADDR"))
	db := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	lite := strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	allowed := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS"))
	catURL := strings.TrimSpace(os.Getenv("CATALOG_URL"))
	catPath := strings.TrimSpace(os.Getenv("CATALOG_PATH"))
	tz := strings.TrimSpace(os.Getenv("SITE_TIMEZONE"))
	page := strings.TrimSpace(os.Getenv("PAGE_PATH"))

	if msg := adminKeysWarning(admin); msg != "" {
		warn(msg)
	}

	if apiAddr == "" {
		warn("API_ADDR is empty; default 127.0.0.1:8080 will be used.")
	} else {
		ok("API_ADDR=" + apiAddr)
	}

	switch {
	case db != "":
		ok("DATABASE_URL present (postgres store)")
	case lite != "":
		ok("SQLITE_PATH=" + lite)
	default:
		warn("DATABASE_URL and SQLITE_PATH empty; dismissals are kept in memory and lost on restart.")
	}

	if allowed == "" {
		warn("ALLOWED_ORIGINS empty; any origin may call the API.")
	} else {
		ok("ALLOWED_ORIGINS=" + allowed)
	}

	if catURL != "" {
		ok("CATALOG_URL=" + catURL)
	} else {
		if catPath == "" {
			catPath = catalog.DefaultPath
		}
		b, err := os.ReadFile(catPath)
		switch {
		case err != nil:
			warn("catalog " + catPath + " unreadable; no banners will show: " + err.Error())
		default:
			as, err := catalog.Decode(b, nil)
			if err != nil {
				fail("catalog " + catPath + ": " + err.Error())
			} else {
				ok(fmt.Sprintf("catalog %s has %d usable announcements", catPath, len(as)))
			}
		}
	}

	if tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			fail("SITE_TIMEZONE " + strconv.Quote(tz) + " is not a known zone")
		} else {
			ok("SITE_TIMEZONE=" + tz)
		}
	}

	if page != "" {
		if _, err := os.Stat(page); err != nil {
			fail("PAGE_PATH " + page + " not readable")
		} else {
			ok("PAGE_PATH=" + page)
		}
	}

	if failed {
		os.Exit(1)
	}
	ok("preflight passed")
}

// adminKeysWarning mirrors RequireAdmin: no keys leaves the debug surface open.
func adminKeysWarning(admin string) string {
	switch {
	case admin == "":
		return "ADMIN_API_KEYS is empty; the debug surface is open to anyone (list/clear any visitor's dismissals)."
	case strings.Contains(admin, " "):
		return "ADMIN_API_KEYS contains spaces; use comma-separated with no spaces, e.g. key1,key2"
	}
	return ""
}
