package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/announcer/internal/domain"
)

// maxCatalogBytes caps what we read from a remote catalog.
const maxCatalogBytes = 1 << 20

// HTTPSource fetches the catalog from a URL. There is no retry: a failed
// fetch leaves the page without banners.
type HTTPSource struct {
	URL    string
	Client *http.Client
	Log    *zap.Logger
}

func NewHTTPSource(url string, timeout time.Duration, log *zap.Logger) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
		Log:    log,
	}
}

func (h *HTTPSource) Load(ctx context.Context) ([]domain.Announcement, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("fetch catalog: %s", resp.Status)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	if h.Log != nil {
		h.Log.Debug("catalog_fetched",
			zap.String("url", h.URL),
			zap.Int("bytes", len(b)),
			zap.Float64("latency_ms", time.Since(start).Seconds()*1000),
		)
	}
	return Decode(b, h.Log)
}
