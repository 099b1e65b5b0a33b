package tilecache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lintang-b-s/tilegraph/pkg"
	"github.com/lintang-b-s/tilegraph/pkg/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExtract = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6"><node id="1" lat="0.001" lon="0.001"/></osm>`

type fakeAPI struct {
	server *httptest.Server
	hits   atomic.Int32
	bbox   atomic.Value
	status int
}

func newFakeAPI(t *testing.T, status int) *fakeAPI {
	api := &fakeAPI{status: status}
	api.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.hits.Add(1)
		api.bbox.Store(r.URL.Query().Get("bbox"))
		if r.URL.Path != "/api/0.6/map" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(api.status)
		_, _ = w.Write([]byte(sampleExtract))
	}))
	t.Cleanup(api.server.Close)
	return api
}

func newTestCache(t *testing.T, api *fakeAPI, opts ...Option) *TileCache {
	fetcher := NewHTTPFetcher(api.server.URL, 5*time.Second, 0, nil)
	return New(t.TempDir(), fetcher, opts...)
}

func TestResolveFetchesOnce(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK)
	tc := newTestCache(t, api)
	ctx := context.Background()

	first, err := tc.Resolve(ctx, 52.55291, -1.81824)
	require.NoError(t, err)
	assert.True(t, first.Fetched)
	assert.Equal(t, tile.NewGridCell(pkg.DOWNLOAD_ZOOM, 16218, 10741), first.Cell)
	assert.Equal(t, filepath.Join(tc.Dir(), "15", "16218", "10741", "data.osm"), first.Path)

	second, err := tc.Resolve(ctx, 52.55291, -1.81824)
	require.NoError(t, err)
	assert.False(t, second.Fetched)
	assert.Equal(t, first.Path, second.Path)
	assert.Equal(t, int32(1), api.hits.Load())

	data, err := os.ReadFile(second.Path)
	require.NoError(t, err)
	assert.Equal(t, sampleExtract, string(data))
}

func TestResolveConcurrentCallersShareOneFetch(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK)
	tc := newTestCache(t, api)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tc.Resolve(context.Background(), 10.5, 20.5)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), api.hits.Load())
}

func TestFetchBoundingBoxOrder(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK)
	tc := newTestCache(t, api)

	cf, err := tc.ResolveAtZoom(context.Background(), 15, 16000, 10000)
	require.NoError(t, err)

	s, w, n, e := cf.Cell.Edges()
	parts := strings.Split(api.bbox.Load().(string), ",")
	require.Len(t, parts, 4)
	assert.Equal(t, formatCoord(w), parts[0])
	assert.Equal(t, formatCoord(s), parts[1])
	assert.Equal(t, formatCoord(e), parts[2])
	assert.Equal(t, formatCoord(n), parts[3])
}

func TestResolveAtZoom(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK)
	tc := newTestCache(t, api)
	ctx := context.Background()

	testCases := []struct {
		name     string
		z, x, y  int
		wantCell tile.GridCell
		wantErr  error
	}{
		{name: "download zoom", z: 15, x: 16218, y: 10741, wantCell: tile.NewGridCell(15, 16218, 10741)},
		{name: "finer zoom is coarsened", z: 17, x: 64875, y: 42966, wantCell: tile.NewGridCell(15, 16218, 10741)},
		{name: "much finer zoom", z: 25, x: 16218 << 10, y: 10741<<10 + 1023, wantCell: tile.NewGridCell(15, 16218, 10741)},
		{name: "coarser zoom fails", z: 14, x: 8109, y: 5370, wantErr: ErrZoomTooCoarse},
		{name: "negative tile", z: 15, x: -1, y: 3, wantErr: ErrInvalidTile},
		{name: "zoom above max", z: 26, x: 1, y: 1, wantErr: ErrInvalidTile},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			cf, err := tc.ResolveAtZoom(ctx, tt.z, tt.x, tt.y)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCell, cf.Cell)
			assert.Equal(t, tc.Path(tt.wantCell), cf.Path)
		})
	}

	// every successful case landed on the same canonical cell
	assert.Equal(t, int32(1), api.hits.Load())
}

func TestResolveFetchErrorPropagates(t *testing.T) {
	api := newFakeAPI(t, http.StatusInternalServerError)
	tc := newTestCache(t, api)

	_, err := tc.Resolve(context.Background(), 1, 1)
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusInternalServerError, fetchErr.StatusCode)

	_, statErr := os.Stat(tc.Path(tc.CellAt(1, 1)))
	assert.True(t, os.IsNotExist(statErr))

	entries, err := os.ReadDir(filepath.Dir(tc.Path(tc.CellAt(1, 1))))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResolveWithoutFetcher(t *testing.T) {
	tc := New(t.TempDir(), nil)
	_, err := tc.Resolve(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestMaxAgeRefetchesStaleTiles(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK)
	later := func() time.Time { return time.Now().Add(2 * time.Hour) }
	tc := newTestCache(t, api, WithMaxAge(time.Hour), withClock(later))
	ctx := context.Background()

	_, err := tc.Resolve(ctx, 3, 3)
	require.NoError(t, err)
	cf, err := tc.Resolve(ctx, 3, 3)
	require.NoError(t, err)
	assert.True(t, cf.Fetched)
	assert.Equal(t, int32(2), api.hits.Load())
}
