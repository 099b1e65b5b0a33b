package tilecache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lintang-b-s/tilegraph/pkg/logger"
	"github.com/paulmach/osm"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Fetcher. downloads the raw extract covering bounds into w.
type Fetcher interface {
	Fetch(ctx context.Context, bounds *osm.Bounds, w io.Writer) error
}

// FetchError. transport or http status failure while downloading an extract.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// HTTPFetcher. fetches extracts from the OSM API 0.6 map call, no authentication.
type HTTPFetcher struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
}

// NewHTTPFetcher. requestsPerSecond <= 0 disables rate limiting.
func NewHTTPFetcher(baseURL string, timeout time.Duration, requestsPerSecond float64, log *zap.Logger) *HTTPFetcher {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &HTTPFetcher{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
		log:        logger.OrNop(log),
	}
}

// MapURL. bbox parameters go in (west, south, east, north) order.
func (f *HTTPFetcher) MapURL(b *osm.Bounds) string {
	return fmt.Sprintf("%s/api/0.6/map?bbox=%s,%s,%s,%s", f.baseURL,
		formatCoord(b.MinLon), formatCoord(b.MinLat), formatCoord(b.MaxLon), formatCoord(b.MaxLat))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (f *HTTPFetcher) Fetch(ctx context.Context, bounds *osm.Bounds, w io.Writer) error {
	url := f.MapURL(bounds)

	if err := f.limiter.Wait(ctx); err != nil {
		return &FetchError{URL: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &FetchError{URL: url, Err: err}
	}

	f.log.Info("fetching osm extract", zap.String("url", url))
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return &FetchError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return &FetchError{URL: url, Err: err}
	}
	f.log.Debug("osm extract downloaded", zap.String("url", url), zap.Int64("bytes", n))
	return nil
}
