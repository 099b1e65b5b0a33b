package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lintang-b-s/tilegraph/pkg"
	"github.com/lintang-b-s/tilegraph/pkg/engine"
	"github.com/lintang-b-s/tilegraph/pkg/http/usecases"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const lineXML = `<osm version="0.6">
 <node id="1" lat="0.001" lon="0.001"/>
 <node id="2" lat="0.002" lon="0.002"/>
 <node id="3" lat="0.003" lon="0.003"/>
 <way id="7"><nd ref="1"/><nd ref="2"/><nd ref="3"/><tag k="highway" v="primary"/></way>
</osm>`

func newTestHandler(t *testing.T) http.Handler {
	path := filepath.Join(t.TempDir(), "line.osm")
	require.NoError(t, os.WriteFile(path, []byte(lineXML), 0o644))

	e, err := engine.NewEngine(pkg.CAR, nil, nil, nil, nil)
	require.NoError(t, err)
	_, err = e.LoadFile(context.Background(), path)
	require.NoError(t, err)

	service := usecases.NewGraphService(zap.NewNop(), e, 2, 10, 1)
	return NewAPI(zap.NewNop()).Handler(false, service)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func TestNearestEndpoint(t *testing.T) {
	h := newTestHandler(t)

	testCases := []struct {
		name   string
		target string
		status int
		wantID int64
	}{
		{name: "nearest", target: "/api/nearest?lat=0.0021&lon=0.0019&ensure_coverage=false", status: http.StatusOK, wantID: 2},
		{name: "missing lat", target: "/api/nearest?lon=0.0019", status: http.StatusBadRequest},
		{name: "lat out of range", target: "/api/nearest?lat=91&lon=0&ensure_coverage=false", status: http.StatusBadRequest},
		{name: "bad ensure_coverage", target: "/api/nearest?lat=0&lon=0&ensure_coverage=maybe", status: http.StatusBadRequest},
		{name: "coverage disabled", target: "/api/nearest?lat=0.0021&lon=0.0019", status: http.StatusConflict},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target, "")
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status != http.StatusOK {
				return
			}
			var got struct {
				ID    int64 `json:"id"`
				Found bool  `json:"found"`
			}
			decodeData(t, rec, &got)
			assert.Equal(t, tt.wantID, got.ID)
			assert.True(t, got.Found)
		})
	}
}

func TestNodeEndpoint(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/api/nodes/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var node struct {
		ID        int64 `json:"id"`
		Neighbors []struct {
			ID     int64   `json:"id"`
			Weight float64 `json:"weight"`
		} `json:"neighbors"`
	}
	decodeData(t, rec, &node)
	assert.Equal(t, int64(2), node.ID)
	require.Len(t, node.Neighbors, 2)
	assert.Equal(t, int64(1), node.Neighbors[0].ID)
	assert.Equal(t, int64(3), node.Neighbors[1].ID)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/nodes/99", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/nodes/abc", "").Code)
}

func TestPathGeometryEndpoint(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/path_geometry", `{"nodes":[1,2,3]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got struct {
		Coordinates []struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coordinates"`
		Polyline string  `json:"polyline"`
		Distance float64 `json:"distance"`
		Legs     []struct {
			Bearing float64 `json:"bearing"`
		} `json:"legs"`
	}
	decodeData(t, rec, &got)
	assert.Len(t, got.Coordinates, 3)
	assert.NotEmpty(t, got.Polyline)
	assert.InDelta(t, 314.5, got.Distance, 1)
	require.Len(t, got.Legs, 2)
	assert.InDelta(t, 45, got.Legs[0].Bearing, 0.1)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/path_geometry", `{"nodes":[1,9]}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/path_geometry", `{"nodes":[]}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/path_geometry", `{"ids":[1]}`).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/path_geometry", strings.NewReader(`{"nodes":[1]}`))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestNearestBatchEndpoint(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/nearest_batch",
		`{"points":[{"lat":0.003,"lon":0.003},{"lat":0.001,"lon":0.0011}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got []struct {
		ID int64 `json:"id"`
	}
	decodeData(t, rec, &got)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(1), got[1].ID)

	rec = do(t, h, http.MethodPost, "/api/nearest_batch", `{"points":[{"lat":95,"lon":0}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNodesNearbyAndReportEndpoints(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/api/nodes_nearby?lat=0.001&lon=0.001&radius=0.2", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var nearby []struct {
		ID int64 `json:"id"`
	}
	decodeData(t, rec, &nearby)
	require.Len(t, nearby, 2)
	assert.Equal(t, int64(1), nearby[0].ID)
	assert.Equal(t, int64(2), nearby[1].ID)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/nodes_nearby?lat=0&lon=0&radius=100", "").Code)

	rec = do(t, h, http.MethodGet, "/api/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var report struct {
		RoutableNodes int `json:"routable_nodes"`
		Edges         int `json:"edges"`
	}
	decodeData(t, rec, &report)
	assert.Equal(t, 3, report.RoutableNodes)
	assert.Equal(t, 4, report.Edges)
}

func TestHeartbeat(t *testing.T) {
	rec := do(t, newTestHandler(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ".", rec.Body.String())
}

func TestLimit(t *testing.T) {
	h := NewLimit(0.001, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodGet, "/", "").Code)
}

func TestRealIP(t *testing.T) {
	var seen string
	h := RealIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.RemoteAddr
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "203.0.113.7", seen)
}
