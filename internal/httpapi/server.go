package httpapi

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hamed0406/announcer/internal/catalog"
	"github.com/hamed0406/announcer/internal/dismissal"
	"github.com/hamed0406/announcer/internal/domain"
	"github.com/hamed0406/announcer/internal/engine"
	apimw "github.com/hamed0406/announcer/internal/httpapi/middleware"
	"github.com/hamed0406/announcer/internal/metrics"
	"github.com/hamed0406/announcer/internal/presenter"
	"github.com/hamed0406/announcer/internal/repo"
)

//go:embed page.html
var defaultPage []byte

type Server struct {
	Logger  *zap.Logger
	KV      repo.KV
	Catalog catalog.Source
	Engine  *engine.Engine
	Metrics *metrics.Metrics

	// Page is the site page banners are rendered into.
	Page []byte
	// CatalogFile, when set, is served at the catalog's relative path.
	CatalogFile string
	// Scheduler drives banner transitions; nil settles them at once.
	Scheduler presenter.Scheduler

	Now func() time.Time
}

func NewServer(l *zap.Logger, kv repo.KV, src catalog.Source, e *engine.Engine) *Server {
	return &Server{
		Logger:  l,
		KV:      kv,
		Catalog: src,
		Engine:  e,
		Page:    defaultPage,
		Now:     time.Now,
	}
}

type Options struct {
	AdminKeys      []string
	AllowedOrigins []string
	DismissRPM     int
	DismissBurst   int
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

func (s *Server) Router(o Options) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.Recoverer)
	r.Use(corsHandler(o.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	gatherer := o.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	if s.CatalogFile != "" {
		r.Get("/"+catalog.DefaultPath, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			http.ServeFile(w, r, s.CatalogFile)
		})
	}

	r.Group(func(r chi.Router) {
		r.Use(apimw.Visitor)

		r.Get("/", s.handlePage)
		r.Get("/api/announcements", s.handleVisible)
		r.With(apimw.RateLimit(o.DismissRPM, o.DismissBurst)).
			Post("/api/announcements/{id}/dismiss", s.handleDismiss)

		r.Route("/debug/announcements", func(r chi.Router) {
			r.Use(apimw.RequireAdmin(o.AdminKeys))
			r.Get("/dismissed", s.handleDebugDismissed)
			r.Delete("/dismissed", s.handleDebugClear)
		})
	})

	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return cors.AllowAll().Handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", "X-API-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

func (s *Server) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Server) store(ctx context.Context) *dismissal.Store {
	return dismissal.New(s.KV, apimw.VisitorID(ctx), s.Logger)
}

// eligible fetches the catalog once and runs the engine. The flag is false
// when the fetch failed and the result is empty by fallback.
func (s *Server) eligible(ctx context.Context, store *dismissal.Store) ([]domain.Announcement, bool) {
	cat, ok := catalog.LoadOrEmpty(ctx, s.Catalog, s.Logger)
	return s.Engine.Visible(cat, store.Set(ctx), s.now()), ok
}

// visible is eligible for a page load, recorded in metrics.
func (s *Server) visible(ctx context.Context, store *dismissal.Store) []domain.Announcement {
	vis, loaded := s.eligible(ctx, store)
	s.Metrics.CatalogLoaded(loaded)
	s.Metrics.Rendered(len(vis))
	return vis
}

// present renders vis into a fresh copy of the page.
func (s *Server) present(store *dismissal.Store, vis []domain.Announcement) (*presenter.Presenter, error) {
	opts := []presenter.Option{presenter.WithLogger(s.Logger)}
	if s.Scheduler != nil {
		opts = append(opts, presenter.WithScheduler(s.Scheduler))
	}
	p, err := presenter.Parse(bytes.NewReader(s.Page), store, opts...)
	if err != nil {
		return nil, err
	}
	p.Render(vis)
	return p, nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	store := s.store(ctx)
	p, err := s.present(store, s.visible(ctx, store))
	if err != nil {
		s.Logger.Error("page_parse_failed", zap.Error(err))
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	out, err := p.HTML()
	if err != nil {
		s.Logger.Error("page_render_failed", zap.Error(err))
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(out))
}

func (s *Server) handleVisible(w http.ResponseWriter, r *http.Request) {
	vis := s.visible(r.Context(), s.store(r.Context()))
	writeJSON(w, http.StatusOK, vis)
}

type dismissResponse struct {
	ID        string `json:"id"`
	Dismissed bool   `json:"dismissed"`
	Remaining int    `json:"remaining"`
	HTML      string `json:"html"`
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	store := s.store(ctx)

	vis, loaded := s.eligible(ctx, store)
	p, err := s.present(store, vis)
	if err != nil {
		s.Logger.Error("page_parse_failed", zap.Error(err))
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	ok := p.Dismiss(ctx, id)
	if !ok && !loaded {
		// the banner was on the visitor's page; keep the click even though
		// the catalog cannot confirm it right now
		s.Logger.Warn("dismiss_without_catalog", zap.String("announcement_id", id))
		store.Dismiss(ctx, id)
		ok = true
	}
	s.Metrics.Dismissed(ok)

	if isFormPost(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if !ok {
		// already dismissed is fine; anything else was never dismissible here
		if store.IsDismissed(ctx, id) {
			writeJSON(w, http.StatusOK, dismissResponse{ID: id, Dismissed: true, Remaining: p.Remaining()})
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no dismissible announcement with that id"})
		return
	}

	frag, err := p.Fragment()
	if err != nil {
		s.Logger.Warn("fragment_render_failed", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, dismissResponse{ID: id, Dismissed: true, Remaining: p.Remaining(), HTML: frag})
}

// debugStore picks the visitor named by ?visitor=, defaulting to the caller's own.
func (s *Server) debugStore(r *http.Request) (*dismissal.Store, string) {
	scope := strings.TrimSpace(r.URL.Query().Get("visitor"))
	if scope == "" {
		scope = apimw.VisitorID(r.Context())
	}
	return dismissal.New(s.KV, scope, s.Logger), scope
}

func (s *Server) handleDebugDismissed(w http.ResponseWriter, r *http.Request) {
	store, scope := s.debugStore(r)
	ids := store.List(r.Context())
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"visitor": scope, "dismissed": ids})
}

func (s *Server) handleDebugClear(w http.ResponseWriter, r *http.Request) {
	store, scope := s.debugStore(r)
	store.Clear(r.Context())
	s.Metrics.Cleared()
	writeJSON(w, http.StatusOK, map[string]any{"visitor": scope, "dismissed": []string{}})
}

func isFormPost(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
