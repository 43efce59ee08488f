package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	MinRun     = 1
	MaxRun     = 99
	DefaultRun = 1
)

// DataRequest is everything the builder collects before it renders a URL.
type DataRequest struct {
	Archive      string
	Scenario     string
	Model        string
	Variable     string
	Run          int
	Start        time.Time
	End          time.Time
	AOI          string
	Clip         bool
	Aggregate    bool
	Grouping     GroupingInterval
	Calculations []Calculation
	Format       string
}

func NewDataRequest() DataRequest {
	return DataRequest{
		Run:      DefaultRun,
		Grouping: GroupYear,
		Format:   DefaultOutputFormat,
	}
}

// Validate reports every missing or inconsistent field at once.
func (r DataRequest) Validate() error {
	var errs []error
	required := []struct {
		name, value string
	}{
		{"archive", r.Archive},
		{"scenario", r.Scenario},
		{"model", r.Model},
		{"variable", r.Variable},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", f.name))
		}
	}
	if r.Run < MinRun || r.Run > MaxRun {
		errs = append(errs, fmt.Errorf("run must be between %d and %d", MinRun, MaxRun))
	}
	if r.Start.IsZero() || r.End.IsZero() {
		errs = append(errs, ErrDateRangeRequired)
	} else if r.Start.After(r.End) {
		errs = append(errs, fmt.Errorf("%w: start is after end", ErrOutOfRange))
	}
	if !IsOutputFormat(r.Format) {
		errs = append(errs, fmt.Errorf("unknown output format %q", r.Format))
	}
	if _, err := ParseGroupingInterval(string(r.Grouping)); err != nil {
		errs = append(errs, err)
	}
	if (r.Clip || r.Aggregate) && r.AOI == "" {
		errs = append(errs, errors.New("clip and aggregate need an area-of-interest"))
	}
	return errors.Join(errs...)
}

// URL renders the request against the API base URL.
func (r DataRequest) URL(base string) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	b.WriteString("/api")
	segment := func(name, value string) {
		b.WriteString("/" + name + "/" + url.PathEscape(value))
	}
	segment("archive", r.Archive)
	segment("model", r.Model)
	segment("scenario", r.Scenario)
	segment("run", strconv.Itoa(r.Run))
	b.WriteString("/temporal/" + r.Start.Format(DateLayout) + "+" + r.End.Format(DateLayout))

	if r.AOI != "" {
		op := "intersects"
		if r.Clip {
			op = "clip"
		}
		b.WriteString("/spatial/" + op + "+" + url.PathEscape(r.AOI))
		b.WriteString("/aggregate/" + strconv.FormatBool(r.Aggregate))
	}

	b.WriteString("/variable/" + url.PathEscape(r.Variable) + "." + r.Format)

	q := url.Values{}
	if len(r.Calculations) > 0 {
		q.Set("grouping", string(r.Grouping))
		for _, c := range r.Calculations {
			q.Add("calc", c.String())
		}
	}
	if encoded := q.Encode(); encoded != "" {
		b.WriteString("?" + encoded)
	}
	return b.String(), nil
}

// RequestRecord is a generated URL kept in the history.
type RequestRecord struct {
	ID        string
	URL       string
	Format    string
	CreatedAt time.Time
}

// AOI is a saved area-of-interest; Geometry is WKT.
type AOI struct {
	ID        string    `yaml:"id,omitempty"`
	Name      string    `yaml:"name"`
	Geometry  string    `yaml:"geometry"`
	CreatedAt time.Time `yaml:"created_at,omitempty"`
}

func (a AOI) Validate() error {
	var errs []error
	if strings.TrimSpace(a.Name) == "" {
		errs = append(errs, errors.New("aoi name is required"))
	}
	if strings.TrimSpace(a.Geometry) == "" {
		errs = append(errs, errors.New("aoi geometry is required"))
	}
	return errors.Join(errs...)
}
