// Package v1 provides the registrar's HTTP API: inbound connection events,
// registration run status and server template health.
package v1

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/dataset-registrar/internal/api/common"
	"github.com/stacklok/dataset-registrar/internal/endpoint"
	"github.com/stacklok/dataset-registrar/internal/events"
	"github.com/stacklok/dataset-registrar/internal/service"
	"github.com/stacklok/dataset-registrar/internal/state"
	"github.com/stacklok/dataset-registrar/internal/status"
)

// maxEventBodySize bounds the body of an inbound event
const maxEventBodySize = 64 * 1024

// EventAcceptedResponse is returned once an event was handed to its listeners
type EventAcceptedResponse struct {
	Status    string `json:"status"`
	Listeners int    `json:"listeners"`
}

// RunListResponse lists registration runs
type RunListResponse struct {
	Runs  []*status.RunStatus `json:"runs"`
	Count int                 `json:"count"`
}

// ServerTemplateListResponse lists server templates with endpoint health
type ServerTemplateListResponse struct {
	ServerTemplates []service.ServerTemplate `json:"serverTemplates"`
	Count           int                      `json:"count"`
}

// Routes handles HTTP requests for the v1 API
type Routes struct {
	service service.RegistrarService
}

// NewRoutes creates a new Routes instance with the given service
func NewRoutes(svc service.RegistrarService) *Routes {
	return &Routes{service: svc}
}

// Router creates the router for the v1 API
func Router(svc service.RegistrarService) http.Handler {
	routes := NewRoutes(svc)

	r := chi.NewRouter()

	r.Post("/events/server-instance-connected", routes.serverInstanceConnected)

	r.Get("/runs", routes.listRuns)
	r.Get("/runs/{serverInstanceId}", routes.getRun)

	r.Get("/server-templates", routes.listServerTemplates)
	r.Get("/server-templates/{serverTemplateId}", routes.getServerTemplate)

	return r
}

// serverInstanceConnected handles POST /v1/events/server-instance-connected.
// Registration happens in the background; listener failures do not change the reply.
func (routes *Routes) serverInstanceConnected(w http.ResponseWriter, r *http.Request) {
	var event events.ServerInstanceConnected
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBodySize))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&event); err != nil {
		common.WriteErrorResponse(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	delivered, err := routes.service.ServerInstanceConnected(r.Context(), event)
	if err != nil {
		if errors.Is(err, events.ErrInvalidEvent) {
			common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to handle server instance connected event", "error", err)
		common.WriteErrorResponse(w, "Failed to handle event", http.StatusInternalServerError)
		return
	}

	common.WriteJSONResponse(w, EventAcceptedResponse{Status: "accepted", Listeners: delivered}, http.StatusAccepted)
}

// listRuns handles GET /v1/runs with optional phase and serverTemplate filters
func (routes *Routes) listRuns(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var opts []service.Option[service.ListRunsOptions]
	if phase := query.Get("phase"); phase != "" {
		opts = append(opts, service.WithPhase(status.RunPhase(phase)))
	}
	if templateID := query.Get("serverTemplate"); templateID != "" {
		opts = append(opts, service.WithServerTemplate(templateID))
	}

	runs, err := routes.service.ListRuns(r.Context(), opts...)
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	common.WriteJSONResponse(w, RunListResponse{Runs: runs, Count: len(runs)}, http.StatusOK)
}

// getRun handles GET /v1/runs/{serverInstanceId}
func (routes *Routes) getRun(w http.ResponseWriter, r *http.Request) {
	instanceID, err := common.GetAndValidateURLParam(r, "serverInstanceId")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	run, err := routes.service.GetRun(r.Context(), instanceID)
	if err != nil {
		if errors.Is(err, state.ErrRunNotFound) {
			common.WriteErrorResponse(w, "No registration run for server instance "+instanceID, http.StatusNotFound)
			return
		}
		common.WriteErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	common.WriteJSONResponse(w, run, http.StatusOK)
}

// listServerTemplates handles GET /v1/server-templates
func (routes *Routes) listServerTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := routes.service.ListServerTemplates(r.Context())
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	common.WriteJSONResponse(w,
		ServerTemplateListResponse{ServerTemplates: templates, Count: len(templates)},
		http.StatusOK)
}

// getServerTemplate handles GET /v1/server-templates/{serverTemplateId}
func (routes *Routes) getServerTemplate(w http.ResponseWriter, r *http.Request) {
	templateID, err := common.GetAndValidateURLParam(r, "serverTemplateId")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	tmpl, err := routes.service.GetServerTemplate(r.Context(), templateID)
	if err != nil {
		if errors.Is(err, endpoint.ErrUnknownTemplate) {
			common.WriteErrorResponse(w, err.Error(), http.StatusNotFound)
			return
		}
		common.WriteErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	common.WriteJSONResponse(w, tmpl, http.StatusOK)
}
