package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/emiliopalmerini/ocgbuilder/internal/domain"
	sharedmw "github.com/emiliopalmerini/ocgbuilder/internal/shared/middleware"
	"github.com/emiliopalmerini/ocgbuilder/internal/web/templates"
)

var invalidValueAlert = templates.AlertView{
	Title:   "Invalid Value",
	Message: "You must enter a numeric value only.",
}

// selection rebuilds the node's state machine from the posted state. The
// page keeps no server-side session; each node posts its own state.
func (s *Server) selection(w http.ResponseWriter, r *http.Request) (*domain.Selection, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return nil, false
	}
	cat, err := s.catalog.Current()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return nil, false
	}
	key, err := statisticKey(r)
	if err != nil {
		http.Error(w, "Invalid statistic key", http.StatusBadRequest)
		return nil, false
	}
	d, ok := cat.Statistics.Descriptor(key)
	if !ok {
		http.Error(w, domain.ErrUnknownStatistic.Error()+": "+key, http.StatusNotFound)
		return nil, false
	}
	return domain.NewSelection(d), true
}

// statisticKey decodes the key param. chi matches on the raw path when the
// key carries escaped characters such as %2F.
func statisticKey(r *http.Request) (string, error) {
	key := chi.URLParam(r, "key")
	if r.URL.RawPath == "" {
		return key, nil
	}
	return url.PathUnescape(key)
}

func (s *Server) handleStatisticActivate(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selection(w, r)
	if !ok {
		return
	}
	sel.State = domain.ParseSelectionState(r.FormValue("state"))

	prompt := sel.Activate()
	if prompt == nil {
		sharedmw.TriggerAfterSwap(w, builderChanged)
		render(w, r, http.StatusOK, templates.StatisticNode(selectionNode(sel)))
		return
	}
	render(w, r, http.StatusOK,
		templates.StatisticNode(selectionNode(sel)),
		templates.Prompt(promptView(sel.Descriptor.Key, prompt)))
}

func (s *Server) handleStatisticConfirm(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selection(w, r)
	if !ok {
		return
	}
	sel.State = domain.AwaitingInput

	components := []templ.Component{}
	err := sel.Confirm(r.Form["param"])
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNonNumericInput):
		components = append(components, templates.Alert(invalidValueAlert))
	case errors.Is(err, domain.ErrEmptyInput):
		slog.Debug("statistic prompt left empty", "key", sel.Descriptor.Key)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sharedmw.TriggerAfterSwap(w, builderChanged)
	components = append([]templ.Component{
		templates.StatisticNode(selectionNode(sel)),
		templates.CloseModal(),
	}, components...)
	render(w, r, http.StatusOK, components...)
}

func (s *Server) handleStatisticCancel(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selection(w, r)
	if !ok {
		return
	}
	sel.State = domain.AwaitingInput
	sel.Cancel()
	slog.Debug("statistic prompt dismissed", "key", sel.Descriptor.Key, "reason", domain.ErrUserCancelled)

	render(w, r, http.StatusOK,
		templates.StatisticNode(selectionNode(sel)),
		templates.CloseModal())
}
