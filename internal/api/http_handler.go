package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"ecommerce-dashboard/internal/dashboard"
	"ecommerce-dashboard/internal/logger"
)

// Surface labels used when recording evaluations.
const (
	surfacePage   = "page"
	surfaceJSON   = "json"
	surfaceExport = "xlsx"
	surfaceGRPC   = "grpc"
)

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	dash     dashboard.Provider
	logg     *logger.Logger
	validate *validator.Validate
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(dash dashboard.Provider, logg *logger.Logger) *HTTPHandler {
	if logg == nil {
		logg = logger.Nop()
	}
	return &HTTPHandler{
		dash:     dash,
		logg:     logg,
		validate: validator.New(),
	}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *HTTPHandler) respondWithError(w http.ResponseWriter, r *http.Request, code int, message string) {
	h.respondWithJSON(w, r, code, ErrorResponse{Error: message})
}

func (h *HTTPHandler) respondWithJSON(w http.ResponseWriter, r *http.Request, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.logg.Error(r.Context(), "Failed to encode JSON response", err)
		}
	}
}

// --- Dashboard Handlers ---

// GetOptions returns the widget choices and global price bounds.
func (h *HTTPHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, r, http.StatusOK, h.dash.Options())
}

// GetView evaluates the filter given in the query string.
func (h *HTTPHandler) GetView(w http.ResponseWriter, r *http.Request) {
	input, err := filterInputFromQuery(r.URL.Query())
	if err != nil {
		h.respondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.serveView(w, r, input)
}

// PostView evaluates the filter given as a JSON body.
func (h *HTTPHandler) PostView(w http.ResponseWriter, r *http.Request) {
	var input FilterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.respondWithError(w, r, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()
	h.serveView(w, r, input)
}

func (h *HTTPHandler) serveView(w http.ResponseWriter, r *http.Request, input FilterInput) {
	filter, err := input.Resolve(h.validate, h.dash.Options())
	if err != nil {
		h.respondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.respondWithJSON(w, r, http.StatusOK, h.dash.Evaluate(r.Context(), surfaceJSON, filter))
}

// ExportXLSX returns the view for the query-string filter as a workbook.
func (h *HTTPHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	input, err := filterInputFromQuery(r.URL.Query())
	if err != nil {
		h.respondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	filter, err := input.Resolve(h.validate, h.dash.Options())
	if err != nil {
		h.respondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := writeWorkbook(&buf, h.dash.Evaluate(r.Context(), surfaceExport, filter)); err != nil {
		h.logg.Error(r.Context(), "ExportXLSX failed to build workbook", err)
		h.respondWithError(w, r, http.StatusInternalServerError, "Failed to build workbook")
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="dashboard.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logg.Error(r.Context(), "ExportXLSX failed to write response", err)
	}
}

// Page renders the HTML dashboard. Each form submission is one interaction.
func (h *HTTPHandler) Page(w http.ResponseWriter, r *http.Request) {
	input, err := filterInputFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	opts := h.dash.Options()
	filter, err := input.Resolve(h.validate, opts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	data := newPageData(opts, h.dash.Evaluate(r.Context(), surfacePage, filter))
	if err := dashboardTemplate.Execute(&buf, data); err != nil {
		h.logg.Error(r.Context(), "Page failed to render template", err)
		http.Error(w, "Failed to render dashboard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logg.Error(r.Context(), "Page failed to write response", err)
	}
}

// RegisterRoutes sets up the HTTP routes for the service.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Page)

	r.Route("/api/v1/dashboard", func(r chi.Router) {
		r.Get("/", h.GetView)               // GET /api/v1/dashboard?states=SP,RJ&price_max=100
		r.Post("/", h.PostView)             // POST /api/v1/dashboard
		r.Get("/options", h.GetOptions)     // GET /api/v1/dashboard/options
		r.Get("/export.xlsx", h.ExportXLSX) // GET /api/v1/dashboard/export.xlsx
	})
}
