package tilecache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lintang-b-s/tilegraph/pkg"
	"github.com/lintang-b-s/tilegraph/pkg/logger"
	"github.com/lintang-b-s/tilegraph/pkg/tile"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	ErrInvalidTile   = errors.New("tile outside of the downloadable range")
	ErrZoomTooCoarse = errors.New("requested zoom is coarser than the download zoom")
	ErrNotCached     = errors.New("tile is not cached and no fetcher is configured")
)

// CachedFile. the on-disk extract backing a canonical-zoom cell.
type CachedFile struct {
	Cell tile.GridCell
	Path string
	// Fetched is true when this call downloaded the file.
	Fetched bool
}

// TileCache. maps coordinates and cells to downloaded extracts under
// <dir>/<z>/<x>/<y>/data.osm. each cell is fetched at most once for the lifetime of
// the directory unless a max age is configured. one process per directory.
type TileCache struct {
	dir     string
	zoom    int
	fetcher Fetcher
	maxAge  time.Duration
	log     *zap.Logger
	now     func() time.Time
	group   singleflight.Group
}

type Option func(*TileCache)

// WithMaxAge. refetch cached extracts older than maxAge. zero never expires.
func WithMaxAge(maxAge time.Duration) Option {
	return func(tc *TileCache) {
		tc.maxAge = maxAge
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(tc *TileCache) {
		tc.log = logger.OrNop(log)
	}
}

func withClock(now func() time.Time) Option {
	return func(tc *TileCache) {
		tc.now = now
	}
}

// New. fetcher may be nil, then only already cached cells resolve.
func New(dir string, fetcher Fetcher, opts ...Option) *TileCache {
	tc := &TileCache{
		dir:     dir,
		zoom:    pkg.DOWNLOAD_ZOOM,
		fetcher: fetcher,
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(tc)
	}
	return tc
}

func (tc *TileCache) Zoom() int {
	return tc.zoom
}

func (tc *TileCache) Dir() string {
	return tc.dir
}

// CellAt. the download-zoom cell containing (lat, lon).
func (tc *TileCache) CellAt(lat, lon float64) tile.GridCell {
	return tile.CellAt(lat, lon, tc.zoom)
}

// Path. cache file location of a cell.
func (tc *TileCache) Path(cell tile.GridCell) string {
	return filepath.Join(tc.dir, strconv.Itoa(cell.Z), strconv.Itoa(cell.X), strconv.Itoa(cell.Y), pkg.CACHE_FILE_NAME)
}

// Resolve. cached extract for the download-zoom cell containing (lat, lon), fetching it on a miss.
func (tc *TileCache) Resolve(ctx context.Context, lat, lon float64) (CachedFile, error) {
	return tc.resolveCell(ctx, tc.CellAt(lat, lon))
}

// ResolveAtZoom. cells finer than the download zoom resolve to their enclosing download-zoom cell.
// coarser cells cannot be served and return ErrZoomTooCoarse.
func (tc *TileCache) ResolveAtZoom(ctx context.Context, z, x, y int) (CachedFile, error) {
	cell := tile.NewGridCell(z, x, y)
	if !cell.Valid() {
		return CachedFile{}, fmt.Errorf("resolve %s: %w", cell, ErrInvalidTile)
	}
	if z < tc.zoom {
		return CachedFile{}, fmt.Errorf("resolve %s at zoom %d: %w", cell, tc.zoom, ErrZoomTooCoarse)
	}
	return tc.resolveCell(ctx, cell.Coarsen(tc.zoom))
}

func (tc *TileCache) resolveCell(ctx context.Context, cell tile.GridCell) (CachedFile, error) {
	path := tc.Path(cell)
	if tc.fresh(path) {
		tc.log.Debug("tile cache hit", zap.String("cell", cell.Key()), zap.String("path", path))
		return CachedFile{Cell: cell, Path: path}, nil
	}

	if tc.fetcher == nil {
		return CachedFile{}, fmt.Errorf("resolve %s: %w", cell, ErrNotCached)
	}

	v, err, _ := tc.group.Do(cell.Key(), func() (interface{}, error) {
		// another caller may have populated the cell while we waited
		if tc.fresh(path) {
			return false, nil
		}
		if err := tc.download(ctx, cell, path); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return CachedFile{}, err
	}

	return CachedFile{Cell: cell, Path: path, Fetched: v.(bool)}, nil
}

func (tc *TileCache) fresh(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if tc.maxAge <= 0 {
		return true
	}
	return tc.now().Sub(info.ModTime()) < tc.maxAge
}

// download. write to a temp file in the cell directory and rename it into place,
// so a reader never observes a partially written extract.
func (tc *TileCache) download(ctx context.Context, cell tile.GridCell, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, pkg.CACHE_FILE_NAME+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	start := tc.now()
	if err := tc.fetcher.Fetch(ctx, cell.Bounds(), tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("download %s: %w", cell, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("move extract into %s: %w", path, err)
	}

	tc.log.Info("tile cached", zap.String("cell", cell.Key()), zap.String("path", path),
		zap.Duration("took", tc.now().Sub(start)))
	return nil
}
