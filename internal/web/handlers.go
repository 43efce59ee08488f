package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/emiliopalmerini/ocgbuilder/internal/builder"
	"github.com/emiliopalmerini/ocgbuilder/internal/domain"
	sharedmw "github.com/emiliopalmerini/ocgbuilder/internal/shared/middleware"
	"github.com/emiliopalmerini/ocgbuilder/internal/web/templates"
)

const builderChanged = "builder-changed"

func render(w http.ResponseWriter, r *http.Request, status int, components ...templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	for _, c := range components {
		if err := c.Render(r.Context(), w); err != nil {
			slog.Error("failed to render", "path", r.URL.Path, "error", err)
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (s *Server) handleBuilder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := templates.BuilderPage{
		Run:       domain.DefaultRun,
		MinRun:    domain.MinRun,
		MaxRun:    domain.MaxRun,
		Formats:   formatOptions(""),
		Groupings: groupingOptions(""),
		AOIs:      s.aoiOptions(ctx),
		History:   s.historyRows(ctx),
	}

	status := http.StatusOK
	cat, err := s.catalog.Current()
	if err != nil {
		page.CatalogError = err.Error()
		status = http.StatusServiceUnavailable
	} else {
		page.Archives, page.Scenarios, page.Models, page.Variables = catalogOptions(cat)
		page.Statistics = treeNodes(cat.Statistics.Root.Children)
	}
	render(w, r, status, templates.Builder(page))
}

func (s *Server) handleDateRange(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	field, err := domain.ParseDateField(r.FormValue("field"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	render(w, r, http.StatusOK, templates.DateRange(editDateRange(r.Form, field)))
}

// validationStatus keeps htmx swapping the problem list while plain clients
// get a proper error status.
func validationStatus(r *http.Request) int {
	if sharedmw.IsHTMX(r) {
		return http.StatusOK
	}
	return http.StatusUnprocessableEntity
}

func (s *Server) requestProblem(w http.ResponseWriter, r *http.Request, err error) {
	var verr *builder.ValidationError
	if errors.As(err, &verr) {
		render(w, r, validationStatus(r), templates.RequestURL(templates.RequestResult{Problems: verr.Problems()}))
		return
	}
	slog.Error("failed to build request", "error", err)
	status := http.StatusServiceUnavailable
	if sharedmw.IsHTMX(r) {
		status = http.StatusOK
	}
	render(w, r, status, templates.RequestURL(templates.RequestResult{Problems: []string{err.Error()}}))
}

func (s *Server) handleRequestURL(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	u, _, err := s.builder.BuildURL(r.Context(), builder.FormFromValues(r.Form))
	if err != nil {
		s.requestProblem(w, r, err)
		return
	}
	render(w, r, http.StatusOK, templates.RequestURL(templates.RequestResult{URL: u}))
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	record, err := s.builder.Generate(ctx, builder.FormFromValues(r.Form))
	if err != nil {
		s.requestProblem(w, r, err)
		return
	}
	render(w, r, http.StatusCreated,
		templates.RequestURL(templates.RequestResult{URL: record.URL, Recorded: true}),
		templates.HistoryOOB(s.historyRows(ctx)))
}

type catalogResponse struct {
	Archives   []domain.Archive       `json:"archives"`
	Scenarios  []domain.Scenario      `json:"scenarios"`
	Models     []domain.ClimateModel  `json:"models"`
	Variables  []domain.Variable      `json:"variables"`
	Statistics []domain.StatisticNode `json:"statistics"`
	Formats    []formatResponse       `json:"formats"`
	Groupings  []string               `json:"groupings"`
}

type formatResponse struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

func (s *Server) handleAPICatalog(w http.ResponseWriter, r *http.Request) {
	cat, err := s.catalog.Current()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}

	resp := catalogResponse{
		Archives:   cat.Archives,
		Scenarios:  cat.Scenarios,
		Models:     cat.Models,
		Variables:  cat.Variables,
		Statistics: cat.Statistics.Root.Children,
	}
	for _, f := range domain.OutputFormats {
		resp.Formats = append(resp.Formats, formatResponse{Value: f.Value, Text: f.Text})
	}
	for _, g := range domain.GroupingIntervals {
		resp.Groupings = append(resp.Groupings, string(g))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAOIs(w http.ResponseWriter, r *http.Request) {
	aois, err := s.aoiRepo.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if sharedmw.IsHTMX(r) {
		render(w, r, http.StatusOK, templates.AOIList(aoiRows(aois), nil))
		return
	}
	render(w, r, http.StatusOK, templates.AOIPage(aoiRows(aois), nil))
}

func (s *Server) handleCreateAOI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	aoi := &domain.AOI{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Geometry: strings.TrimSpace(r.FormValue("geometry")),
	}
	var problems []string
	status := http.StatusCreated
	if err := aoi.Validate(); err != nil {
		problems = strings.Split(err.Error(), "\n")
		status = validationStatus(r)
	} else if err := s.aoiRepo.Create(ctx, aoi); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if !sharedmw.IsHTMX(r) && problems == nil {
		http.Redirect(w, r, "/aois", http.StatusSeeOther)
		return
	}

	aois, err := s.aoiRepo.List(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if sharedmw.IsHTMX(r) {
		render(w, r, status, templates.AOIList(aoiRows(aois), problems))
		return
	}
	render(w, r, status, templates.AOIPage(aoiRows(aois), problems))
}

func (s *Server) handleDeleteAOI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := s.aoiRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "AOI not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	aois, err := s.aoiRepo.List(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	render(w, r, http.StatusOK, templates.AOIList(aoiRows(aois), nil))
}
