package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/williamhogman/cluster-registry/registry/internal/cluster"
	"github.com/williamhogman/cluster-registry/registry/internal/persistence"
	"github.com/williamhogman/cluster-registry/registry/internal/service"
)

// clusterView is the JSON form of a cluster
type clusterView struct {
	Name        string   `json:"name"`
	Partitioner *string  `json:"partitioner,omitempty"`
	SeedHosts   []string `json:"seedHosts"`
	JmxPort     int      `json:"jmxPort"`
}

type registerBody struct {
	Name        string   `json:"name"`
	SeedHosts   []string `json:"seedHosts"`
	JmxPort     int      `json:"jmxPort"`
	Partitioner *string  `json:"partitioner"`
}

type updateBody struct {
	SeedHosts   []string `json:"seedHosts"`
	JmxPort     *int     `json:"jmxPort"`
	Partitioner *string  `json:"partitioner"`
}

// maxBodyBytes caps the size of a request body
const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

func toView(c *cluster.Cluster) clusterView {
	view := clusterView{
		Name:      c.Name(),
		SeedHosts: c.SeedHosts(),
		JmxPort:   c.JmxPort(),
	}
	if p, ok := c.Partitioner(); ok {
		view.Partitioner = &p
	}
	return view
}

// ClusterHandler serves the cluster registry API
type ClusterHandler struct {
	registry *service.RegistryService
	logger   *zap.Logger
}

// NewClusterHandler creates a new cluster handler
func NewClusterHandler(registry *service.RegistryService, logger *zap.Logger) *ClusterHandler {
	return &ClusterHandler{
		registry: registry,
		logger:   logger.Named("cluster-handler"),
	}
}

// Routes registers the handler's endpoints on mux
func (h *ClusterHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.health)
	mux.HandleFunc("GET /clusters", h.list)
	mux.HandleFunc("POST /clusters", h.register)
	mux.HandleFunc("GET /clusters/{name}", h.get)
	mux.HandleFunc("PATCH /clusters/{name}", h.update)
	mux.HandleFunc("DELETE /clusters/{name}", h.delete)
}

func (h *ClusterHandler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *ClusterHandler) list(w http.ResponseWriter, r *http.Request) {
	clusters, err := h.registry.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	views := make([]clusterView, 0, len(clusters))
	for _, c := range clusters {
		views = append(views, toView(c))
	}
	h.writeJSON(w, http.StatusOK, views)
}

func (h *ClusterHandler) register(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if !h.decodeBody(w, r, &body) {
		return
	}

	c, err := h.registry.Register(r.Context(), service.RegisterRequest{
		Name:        body.Name,
		SeedHosts:   body.SeedHosts,
		JmxPort:     body.JmxPort,
		Partitioner: body.Partitioner,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toView(c))
}

func (h *ClusterHandler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.registry.Get(r.Context(), r.PathValue("name"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toView(c))
}

func (h *ClusterHandler) update(w http.ResponseWriter, r *http.Request) {
	var body updateBody
	if !h.decodeBody(w, r, &body) {
		return
	}

	c, err := h.registry.Update(r.Context(), r.PathValue("name"), service.UpdateRequest{
		SeedHosts:   body.SeedHosts,
		JmxPort:     body.JmxPort,
		Partitioner: body.Partitioner,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toView(c))
}

func (h *ClusterHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Delete(r.Context(), r.PathValue("name")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeBody reads a JSON request body into v, writing the error response
// itself when it cannot
func (h *ClusterHandler) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "request body too large"})
		return false
	}
	h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error()})
	return false
}

// statusFor maps registry errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, persistence.ErrClusterNotFound):
		return http.StatusNotFound
	case errors.Is(err, persistence.ErrClusterExists),
		errors.Is(err, persistence.ErrConflict),
		errors.Is(err, service.ErrIdentityImmutable):
		return http.StatusConflict
	case errors.Is(err, cluster.ErrRequired),
		errors.Is(err, cluster.ErrAlreadySet),
		errors.Is(err, cluster.ErrInvalidPort),
		errors.Is(err, service.ErrEmptyName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *ClusterHandler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.Error(err))
	}
	h.writeJSON(w, status, errorBody{Error: err.Error()})
}

func (h *ClusterHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("Failed to encode response", zap.Error(err))
	}
}
