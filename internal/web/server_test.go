package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emiliopalmerini/ocgbuilder/internal/adapters/catalogapi"
	"github.com/emiliopalmerini/ocgbuilder/internal/builder"
	"github.com/emiliopalmerini/ocgbuilder/internal/domain"
)

type MockCatalog struct {
	CurrentFunc func() (*domain.Catalog, error)
}

func (m *MockCatalog) Current() (*domain.Catalog, error) { return m.CurrentFunc() }

// MockAOIRepository keeps AOIs in memory.
type MockAOIRepository struct {
	mu   sync.Mutex
	aois []*domain.AOI
}

func (m *MockAOIRepository) Create(ctx context.Context, aoi *domain.AOI) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if aoi.ID == "" {
		aoi.ID = "aoi-" + aoi.Name
	}
	m.aois = append(m.aois, aoi)
	return nil
}

func (m *MockAOIRepository) Get(ctx context.Context, id string) (*domain.AOI, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.aois {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockAOIRepository) List(ctx context.Context) ([]*domain.AOI, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.AOI(nil), m.aois...), nil
}

func (m *MockAOIRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.aois {
		if a.ID == id {
			m.aois = append(m.aois[:i], m.aois[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type MockRequestRepository struct {
	records []*domain.RequestRecord
}

func (m *MockRequestRepository) Create(ctx context.Context, r *domain.RequestRecord) error {
	r.ID = "req"
	r.CreatedAt = time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC)
	m.records = append([]*domain.RequestRecord{r}, m.records...)
	return nil
}

func (m *MockRequestRepository) List(ctx context.Context, limit int) ([]*domain.RequestRecord, error) {
	return m.records, nil
}

type testEnv struct {
	server   *Server
	aois     *MockAOIRepository
	requests *MockRequestRepository
}

func newTestEnv(t *testing.T, catalogErr error) *testEnv {
	t.Helper()
	cat, err := catalogapi.NewFixtureSource().Catalog(context.Background())
	if err != nil {
		t.Fatalf("fixture catalog: %v", err)
	}
	provider := &MockCatalog{CurrentFunc: func() (*domain.Catalog, error) {
		if catalogErr != nil {
			return nil, catalogErr
		}
		return cat, nil
	}}
	aois := &MockAOIRepository{}
	requests := &MockRequestRepository{}
	svc := builder.NewService("http://openclimategis.org", provider, aois, requests, nil)
	return &testEnv{
		server:   NewServer(Config{Addr: ":0"}, provider, svc, aois),
		aois:     aois,
		requests: requests,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func assertContains(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in body:\n%s", want, body)
		}
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/health", nil, false)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestStatic(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/static/app.css", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Type"), "text/css") {
		t.Errorf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
}

func TestBuilderPage(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	assertContains(t, rec.Body.String(),
		"Data Selection", "Temporal", "Spatial", "Output Format", "Data Request URL",
		`value="usgs-cida-maurer"`,
		`value="miroc3.2(medres)"`,
		"Available Statistics",
		`id="stat-667265715f70657263"`,
		`<option value="geojson" selected>`,
		"Generate Data File",
	)
}

func TestBuilderPage_CatalogUnavailable(t *testing.T) {
	env := newTestEnv(t, errors.New("connection refused"))
	rec := env.do(t, http.MethodGet, "/", nil, false)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	assertContains(t, rec.Body.String(), "Catalog unavailable: connection refused")
}

func TestDateRange(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name  string
		form  url.Values
		wants []string
	}{
		{
			name:  "edit start bounds end",
			form:  url.Values{"field": {"startDate"}, "startDate": {"2000-01-01"}, "endDate": {""}},
			wants: []string{`name="startDate" value="2000-01-01"`, `name="endDate" value="" min="2000-01-01"`},
		},
		{
			name:  "both dates bound each other",
			form:  url.Values{"field": {"endDate"}, "startDate": {"2000-01-01"}, "endDate": {"2000-12-31"}},
			wants: []string{`max="2000-12-31"`, `min="2000-01-01"`},
		},
		{
			name:  "end before start is rejected",
			form:  url.Values{"field": {"endDate"}, "startDate": {"2000-06-01"}, "endDate": {"2000-01-01"}},
			wants: []string{`aria-invalid="true"`, "date outside allowed range"},
		},
		{
			name:  "unparseable date",
			form:  url.Values{"field": {"startDate"}, "startDate": {"someday"}},
			wants: []string{"invalid date"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/daterange", tt.form, true)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			assertContains(t, rec.Body.String(), tt.wants...)
		})
	}

	rec := env.do(t, http.MethodPost, "/daterange", url.Values{"field": {"middle"}}, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown field: expected 400, got %d", rec.Code)
	}
}

func TestStatisticActivate(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name       string
		key        string
		state      string
		wantStatus int
		wants      []string
		wantPrompt bool
	}{
		{
			name:       "no parameters checks directly",
			key:        "mean",
			state:      "unchecked",
			wantStatus: http.StatusOK,
			wants:      []string{`class="stat checked"`, `name="calc" value="mean"`},
		},
		{
			name:       "parameters open a prompt",
			key:        "between",
			state:      "unchecked",
			wantStatus: http.StatusOK,
			wants:      []string{`class="stat awaiting"`, "Add Statistic: Between", "Count of values between"},
			wantPrompt: true,
		},
		{
			name:       "checked unchecks",
			key:        "freq_perc",
			state:      "checked",
			wantStatus: http.StatusOK,
			wants:      []string{`class="stat unchecked"`},
		},
		{
			name:       "unknown statistic",
			key:        "mode",
			state:      "unchecked",
			wantStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/statistics/"+tt.key+"/activate", url.Values{"state": {tt.state}}, true)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			body := rec.Body.String()
			assertContains(t, body, tt.wants...)
			if got := strings.Contains(body, `name="param"`); got != tt.wantPrompt {
				t.Errorf("prompt shown = %v, want %v", got, tt.wantPrompt)
			}
		})
	}
}

func TestStatisticActivate_EscapedKey(t *testing.T) {
	cat, err := catalogapi.NewFixtureSource().Catalog(context.Background())
	if err != nil {
		t.Fatalf("fixture catalog: %v", err)
	}
	cat.Statistics = domain.NewStatisticTree([]domain.StatisticNode{
		{Text: "Ratio per day", Leaf: true, Value: "ratio/day", Desc: "Ratio per day."},
	})
	provider := &MockCatalog{CurrentFunc: func() (*domain.Catalog, error) { return cat, nil }}
	aois := &MockAOIRepository{}
	svc := builder.NewService("http://openclimategis.org", provider, aois, &MockRequestRepository{}, nil)
	env := &testEnv{server: NewServer(Config{Addr: ":0"}, provider, svc, aois), aois: aois}

	rec := env.do(t, http.MethodPost, "/statistics/ratio%2Fday/activate", url.Values{"state": {"unchecked"}}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	assertContains(t, rec.Body.String(), `class="stat checked"`, `name="calc" value="ratio/day"`, `id="stat-726174696f2f646179"`)
}

func TestStatisticConfirm(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name      string
		params    []string
		wants     []string
		wantAlert bool
	}{
		{
			name:   "numeric values check the node",
			params: []string{"1.5", "10"},
			wants:  []string{`class="stat checked"`, `name="calc" value="between(1.5,10)"`},
		},
		{
			name:      "non numeric value alerts and reverts",
			params:    []string{"abc", "10"},
			wants:     []string{`class="stat unchecked"`, "Invalid Value", "You must enter a numeric value only."},
			wantAlert: true,
		},
		{
			name:   "empty value reverts silently",
			params: []string{"", "10"},
			wants:  []string{`class="stat unchecked"`},
		},
		{
			name:      "blank value alerts",
			params:    []string{"  ", "10"},
			wants:     []string{`class="stat unchecked"`, "Invalid Value"},
			wantAlert: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/statistics/between/confirm", url.Values{"param": tt.params}, true)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			body := rec.Body.String()
			assertContains(t, body, tt.wants...)
			assertContains(t, body, `<div id="modal" hx-swap-oob="true"></div>`)
			if got := strings.Contains(body, `id="alerts"`); got != tt.wantAlert {
				t.Errorf("alert shown = %v, want %v", got, tt.wantAlert)
			}
			if rec.Header().Get("HX-Trigger-After-Swap") != builderChanged {
				t.Error("expected builder-changed trigger")
			}
		})
	}
}

func TestStatisticCancel(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodPost, "/statistics/threshold/cancel", url.Values{}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	assertContains(t, rec.Body.String(), `class="stat unchecked"`, `<div id="modal" hx-swap-oob="true"></div>`)
	if strings.Contains(rec.Body.String(), `id="alerts"`) {
		t.Error("cancel must not alert")
	}
}

func builderForm() url.Values {
	return url.Values{
		"archive":   {"usgs-cida-maurer"},
		"scenario":  {"sres-a2"},
		"model":     {"bccr-bcm2.0"},
		"variable":  {"tas"},
		"run":       {"1"},
		"startDate": {"2001-01-01"},
		"endDate":   {"2001-01-31"},
		"grouping":  {"day"},
		"calc":      {"max", "threshold(30)"},
		"format":    {"kml"},
	}
}

func TestRequestURL(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/request", builderForm(), true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	assertContains(t, rec.Body.String(),
		"http://openclimategis.org/api/archive/usgs-cida-maurer/model/bccr-bcm2.0/scenario/sres-a2/run/1/temporal/2001-01-01+2001-01-31/variable/tas.kml?calc=max&amp;calc=threshold%2830%29&amp;grouping=day")
	if len(env.requests.records) != 0 {
		t.Error("previewing a URL must not record it")
	}
}

func TestRequestURL_Problems(t *testing.T) {
	env := newTestEnv(t, nil)
	form := builderForm()
	form.Del("archive")
	form.Set("run", "0")

	tests := []struct {
		name       string
		htmx       bool
		wantStatus int
	}{
		{"htmx swaps problems", true, http.StatusOK},
		{"plain client gets 422", false, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/request", form, tt.htmx)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			assertContains(t, rec.Body.String(), "<li>archive is required</li>", "run must be between 1 and 99")
		})
	}
}

func TestGenerate(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/requests", builderForm(), true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(env.requests.records) != 1 {
		t.Fatalf("expected 1 recorded request, got %d", len(env.requests.records))
	}
	assertContains(t, rec.Body.String(), "Saved to history", `hx-swap-oob="outerHTML:#history"`, "kml")
}

func TestAPICatalog(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/api/catalog", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp catalogResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Archives) != 2 || len(resp.Formats) != len(domain.OutputFormats) || len(resp.Groupings) != 3 {
		t.Errorf("unexpected catalog response: %+v", resp)
	}
	if resp.Statistics[0].Text != "Basic Statistics" {
		t.Errorf("statistics should be sorted folders first, got %q", resp.Statistics[0].Text)
	}

	env = newTestEnv(t, errors.New("not loaded"))
	if rec := env.do(t, http.MethodGet, "/api/catalog", nil, false); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestAOIs(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/aois", url.Values{"name": {"boulder"}, "geometry": {"POINT(-105.27 40.01)"}}, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", rec.Code)
	}
	assertContains(t, rec.Body.String(), "boulder", `hx-delete="/aois/aoi-boulder"`)

	rec = env.do(t, http.MethodPost, "/aois", url.Values{"name": {"empty"}}, true)
	assertContains(t, rec.Body.String(), "aoi geometry is required")

	rec = env.do(t, http.MethodPost, "/aois", url.Values{"name": {"denver"}, "geometry": {"POINT(-104.99 39.74)"}}, false)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/aois" {
		t.Errorf("plain create: expected redirect, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = env.do(t, http.MethodGet, "/aois", nil, false)
	assertContains(t, rec.Body.String(), "<!DOCTYPE html>", "boulder", "denver")

	rec = env.do(t, http.MethodGet, "/", nil, false)
	assertContains(t, rec.Body.String(), `<option value="aoi-boulder">boulder</option>`)

	rec = env.do(t, http.MethodDelete, "/aois/aoi-boulder", nil, true)
	if rec.Code != http.StatusOK || strings.Contains(rec.Body.String(), "boulder") {
		t.Errorf("delete: got %d %s", rec.Code, rec.Body.String())
	}
	if rec := env.do(t, http.MethodDelete, "/aois/aoi-boulder", nil, true); rec.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", rec.Code)
	}

	form := builderForm()
	form.Set("aoi", "aoi-denver")
	form.Set("clip", "on")
	rec = env.do(t, http.MethodPost, "/request", form, true)
	assertContains(t, rec.Body.String(), "/spatial/clip+denver/aggregate/false/")
}

func TestServerStart_Shutdown(t *testing.T) {
	env := newTestEnv(t, nil)
	env.server.cfg.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.server.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
