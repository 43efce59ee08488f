package builder

import (
	"net/url"
	"strconv"
	"strings"
)

// Form is the raw builder input, as posted by the web page or given as CLI flags.
type Form struct {
	Archive      string
	Scenario     string
	Model        string
	Variable     string
	Run          string
	Start        string
	End          string
	AOI          string
	Clip         bool
	Aggregate    bool
	Grouping     string
	Calculations []string
	Format       string
}

// FormFromValues reads the builder page fields.
func FormFromValues(v url.Values) Form {
	return Form{
		Archive:      v.Get("archive"),
		Scenario:     v.Get("scenario"),
		Model:        v.Get("model"),
		Variable:     v.Get("variable"),
		Run:          v.Get("run"),
		Start:        v.Get("startDate"),
		End:          v.Get("endDate"),
		AOI:          v.Get("aoi"),
		Clip:         checkbox(v.Get("clip")),
		Aggregate:    checkbox(v.Get("aggregate")),
		Grouping:     v.Get("grouping"),
		Calculations: nonEmpty(v["calc"]),
		Format:       v.Get("format"),
	}
}

func checkbox(v string) bool {
	if v == "on" {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
