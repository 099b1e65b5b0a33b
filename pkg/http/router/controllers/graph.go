package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	helper "github.com/lintang-b-s/tilegraph/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type graphAPI struct {
	graphService GraphService
	log          *zap.Logger
}

func New(graphService GraphService, log *zap.Logger) *graphAPI {
	return &graphAPI{
		graphService: graphService,
		log:          log,
	}
}

func (api *graphAPI) Routes(group *helper.RouteGroup) {
	group.GET("/coverage", api.coverage)
	group.GET("/nearest", api.nearest)
	group.POST("/nearest_batch", api.nearestBatch)
	group.GET("/nodes/:id", api.node)
	group.GET("/nodes_nearby", api.nodesNearby)
	group.POST("/path_geometry", api.pathGeometry)
	group.GET("/report", api.report)
}

func parseCoordinate(r *http.Request) (coordinateRequest, error) {
	var (
		request coordinateRequest
		err     error
	)
	query := r.URL.Query()

	request.Lat, err = strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil {
		return request, errors.New("lat is required and must be a valid float")
	}
	request.Lon, err = strconv.ParseFloat(query.Get("lon"), 64)
	if err != nil {
		return request, errors.New("lon is required and must be a valid float")
	}
	return request, nil
}

// coverage. load the cell containing lat,lon into the graph.
func (api *graphAPI) coverage(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	request, err := parseCoordinate(r)
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validate(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	res, err := api.graphService.Coverage(r.Context(), request.Lat, request.Lon)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewCoverageResponse(res)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *graphAPI) nearest(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	request, err := parseCoordinate(r)
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validate(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	ensureCoverage := true
	if raw := r.URL.Query().Get("ensure_coverage"); raw != "" {
		ensureCoverage, err = strconv.ParseBool(raw)
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("ensure_coverage must be a valid bool"))
			return
		}
	}

	node, err := api.graphService.Nearest(r.Context(), request.Lat, request.Lon, ensureCoverage)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewNearestResponse(node)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *graphAPI) nearestBatch(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request nearestBatchRequest
	if err := api.readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validate(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	nodes, err := api.graphService.NearestBatch(r.Context(), request.coordinates(), request.EnsureCoverage)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewNearestBatchResponse(nodes)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *graphAPI) node(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	id, err := strconv.ParseInt(p.ByName("id"), 10, 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("id must be a valid int"))
		return
	}

	info, err := api.graphService.Node(id)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewNodeResponse(info)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *graphAPI) nodesNearby(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	coord, err := parseCoordinate(r)
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	request := nearbyRequest{Lat: coord.Lat, Lon: coord.Lon}
	if raw := r.URL.Query().Get("radius"); raw != "" {
		request.Radius, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("radius must be a valid float"))
			return
		}
	}
	if err := api.validate(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	nodes := api.graphService.NodesNearby(request.Lat, request.Lon, request.Radius)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewNearbyResponse(nodes)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *graphAPI) pathGeometry(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request pathGeometryRequest
	if err := api.readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validate(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	coords, line, err := api.graphService.PathGeometry(request.Nodes)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewPathGeometryResponse(request.Nodes, coords, line)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *graphAPI) report(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewReportResponse(api.graphService.Report())}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}
