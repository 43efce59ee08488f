package templates

import (
	"context"
	"strconv"

	"github.com/a-h/templ"
)

const htmxSrc = "https://unpkg.com/htmx.org@1.9.12"

// Layout wraps body in the page shell.
func Layout(title string, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *writer) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title><link rel="stylesheet" href="/static/app.css">`)
		h.raw(`<script src="` + htmxSrc + `"></script></head><body>`)
		h.raw(`<header><h1>OpenClimateGIS Data Request Builder</h1>`)
		h.raw(`<nav><a href="/">Builder</a> <a href="/aois">Manage AOIs</a></nav></header>`)
		h.raw(`<main>`)
		h.render(ctx, body)
		h.raw(`</main><div id="modal"></div><div id="alerts"></div></body></html>`)
	})
}

func Builder(p BuilderPage) templ.Component {
	return Layout("Data Request Builder", builderBody(p))
}

func builderBody(p BuilderPage) templ.Component {
	return component(func(ctx context.Context, h *writer) {
		if p.CatalogError != "" {
			h.raw(`<div class="banner error">Catalog unavailable: `)
			h.text(p.CatalogError)
			h.raw(`</div>`)
		}
		h.raw(`<form id="builder" hx-post="/request" hx-trigger="change, builder-changed from:body" hx-target="#request-url" hx-swap="outerHTML">`)

		h.raw(`<fieldset class="data-selection"><legend>Data Selection</legend>`)
		h.render(ctx, selectField("archive", "Archive", p.Archives))
		h.render(ctx, selectField("scenario", "Emissions Scenario", p.Scenarios))
		h.render(ctx, selectField("model", "Climate Model", p.Models))
		h.render(ctx, selectField("variable", "Variable", p.Variables))
		h.raw(`<label>Run <input type="number" name="run"`)
		h.attr("min", strconv.Itoa(p.MinRun))
		h.attr("max", strconv.Itoa(p.MaxRun))
		h.attr("value", strconv.Itoa(p.Run))
		h.raw(`></label>`)
		h.render(ctx, DateRange(p.Dates))
		h.raw(`</fieldset>`)

		h.raw(`<fieldset class="temporal"><legend>Temporal</legend>`)
		h.render(ctx, selectField("grouping", "Grouping Interval", p.Groupings))
		h.render(ctx, StatisticTree(p.Statistics))
		h.raw(`</fieldset>`)

		h.raw(`<fieldset class="spatial"><legend>Spatial</legend>`)
		h.render(ctx, AOIOptions(p.AOIs))
		h.raw(`<label><input type="checkbox" name="clip"> Clip Output to AOI</label>`)
		h.raw(`<label><input type="checkbox" name="aggregate"> Aggregate Geometries</label>`)
		h.raw(`<a href="/aois">Manage AOIs</a></fieldset>`)

		h.raw(`<fieldset class="output"><legend>Output Format</legend>`)
		h.render(ctx, selectField("format", "Format", p.Formats))
		h.raw(`</fieldset>`)

		h.raw(`<fieldset class="request"><legend>Data Request URL</legend>`)
		h.render(ctx, RequestURL(p.Request))
		h.raw(`<button type="button" hx-post="/requests" hx-include="#builder" hx-target="#request-url" hx-swap="outerHTML">Generate Data File</button>`)
		h.raw(`</fieldset></form>`)

		h.render(ctx, History(p.History))
	})
}

func selectField(name, label string, opts []Option) templ.Component {
	return component(func(ctx context.Context, h *writer) {
		h.raw(`<label>`)
		h.text(label)
		h.raw(` <select`)
		h.attr("name", name)
		h.raw(`>`)
		for _, o := range opts {
			h.raw(`<option`)
			h.attr("value", o.Value)
			if o.Description != "" {
				h.raw(` title="` + PlainText(o.Description) + `"`)
			}
			h.flag("selected", o.Selected)
			h.raw(`>`)
			h.text(o.Label)
			h.raw(`</option>`)
		}
		h.raw(`</select></label>`)
	})
}

// DateRange renders both date inputs; each edit re-validates the pair.
func DateRange(d DateFields) templ.Component {
	return component(func(ctx context.Context, h *writer) {
		h.raw(`<div id="date-range" class="date-range">`)
		dateInput(h, "startDate", "Start", d.Start, "", d.StartMax, d.StartError)
		dateInput(h, "endDate", "End", d.End, d.EndMin, "", d.EndError)
		h.raw(`</div>`)
	})
}

func dateInput(h *writer, name, label, value, lo, hi, errMsg string) {
	h.raw(`<label>`)
	h.text(label)
	h.raw(` <input type="date"`)
	h.attr("name", name)
	h.attr("value", value)
	if lo != "" {
		h.attr("min", lo)
	}
	if hi != "" {
		h.attr("max", hi)
	}
	h.raw(` hx-post="/daterange" hx-target="#date-range" hx-swap="outerHTML"`)
	h.raw(` hx-vals='{"field":"` + name + `"}'`)
	if errMsg != "" {
		h.raw(` aria-invalid="true"`)
	}
	h.raw(`></label>`)
	if errMsg != "" {
		h.raw(`<span class="field-error">`)
		h.text(errMsg)
		h.raw(`</span>`)
	}
}

// StatisticTree renders the "Available Statistics" tree.
func StatisticTree(nodes []TreeNode) templ.Component {
	return component(func(ctx context.Context, h *writer) {
		h.raw(`<div class="stat-tree"><span class="tree-root">Available Statistics</span><ul>`)
		for _, n := range nodes {
			h.render(ctx, treeNode(n))
		}
		h.raw(`</ul></div>`)
	})
}

func treeNode(n TreeNode) templ.Component {
	if n.Leaf {
		return StatisticNode(n)
	}
	return component(func(ctx context.Context, h *writer) {
		h.raw(`<li class="folder"><details open><summary>`)
		h.text(n.Text)
		h.raw(`</summary><ul>`)
		for _, c := range n.Children {
			h.render(ctx, treeNode(c))
		}
		h.raw(`</ul></details></li>`)
	})
}

// StatisticNode renders one leaf. A checked leaf carries its calculation as a
// hidden calc input so the builder form submits it.
func StatisticNode(n TreeNode) templ.Component {
	return component(func(ctx context.Context, h *writer) {
		h.raw(`<li`)
		h.attr("id", nodeID(n.Key))
		h.attr("class", "stat "+n.State)
		h.raw(`><button type="button"`)
		h.attr("hx-post", statisticPath(n.Key, "activate"))
		h.raw(` hx-vals='{"state":"` + templ.EscapeString(n.State) + `"}'`)
		h.attr("hx-target", "#"+nodeID(n.Key))
		h.raw(` hx-swap="outerHTML" hx-params="state"`)
		h.attr("aria-pressed", strconv.FormatBool(n.State == "checked"))
		h.raw(`>`)
		h.text(n.Text)
		h.raw(`</button>`)
		if n.Description != "" {
			h.raw(`<span class="desc">`)
			h.raw(SanitizeDescription(n.Description))
			h.raw(`</span>`)
		}
		if n.State == "checked" {
			h.raw(`<input type="hidden" name="calc"`)
			h.attr("value", n.Calculation)
			h.raw(`><span class="calc">`)
			h.text(n.Calculation)
			h.raw(`</span>`)
		}
		h.raw(`</li>`)
	})
}

// Prompt replaces the modal container with the parameter dialog.
func Prompt(p PromptView) templ.Component {
	return component(func(ctx context.Context, h *writer) {
		h.raw(`<div id="modal" hx-swap-oob="true"><div class="modal" role="dialog">`)
		h.raw(`<form`)
		h.attr("hx-post", statisticPath(p.Key, "confirm"))
		h.attr("hx-target", "#"+nodeID(p.Key))
		h.raw(` hx-swap="outerHTML"><h2>`)
		h.text(p.Title)
		h.raw(`</h2><p>`)
		h.text(p.Message)
		h.raw(`</p>`)
		for i, label := range p.Labels {
			h.raw(`<label>`)
			h.text(label)
			h.raw(` <input type="text" name="param" inputmode="decimal"`)
			h.flag("autofocus", i == 0)
			h.raw(`></label>`)
		}
		h.raw(`<div class="actions"><button type="submit">OK</button>`)
		h.raw(`<button type="button"`)
		h.attr("hx-post", statisticPath(p.Key, "cancel"))
		h.attr("hx-target", "#"+nodeID(p.Key))
		h.raw(` hx-swap="outerHTML">Cancel</button></div></form></div></div>`)
	})
}

// CloseModal empties the modal container.
func CloseModal() templ.Component {
	return component(func(ctx context.Context, h *writer) {
		h.raw(`<div id="modal" hx-swap-oob="true"></div>`)
	})
}

func Alert(a AlertView) templ.Component {
	return component(func(ctx context.Context, h *writer) {
		h.raw(`<div id="alerts" hx-swap-oob="true"><div class="alert error" role="alert"><strong>`)
		h.text(a.Title)
		h.raw(`</strong> `)
		h.text(a.Message)
		h.raw(`</div></div>`)
	})
}

// RequestURL shows the generated URL or what is still missing.
func RequestURL(r RequestResult) templ.Component {
	return component(func(ctx context.Context, h *writer) {
		h.raw(`<div id="request-url" class="request-url">`)
		switch {
		case len(r.Problems) > 0:
			h.raw(`<ul class="problems">`)
			for _, p := range r.Problems {
				h.raw(`<li>`)
				h.text(p)
				h.raw(`</li>`)
			}
			h.raw(`</ul>`)
		case r.URL != "":
			h.raw(`<a`)
			h.attr("href", string(templ.URL(r.URL)))
			h.attr("title", r.URL)
			h.raw(`>`)
			h.text(truncateURL(r.URL))
			h.raw(`</a>`)
			if r.Recorded {
				h.raw(` <span class="status">Saved to history</span>`)
			}
		default:
			h.raw(`<span class="status">No activity</span>`)
		}
		h.raw(`</div>`)
	})
}

func History(rows []HistoryRow) templ.Component {
	return component(func(ctx context.Context, h *writer) {
		h.raw(`<section id="history"><h2>Recent Requests</h2>`)
		if len(rows) == 0 {
			h.raw(`<p class="empty">No requests generated yet.</p></section>`)
			return
		}
		h.raw(`<table><thead><tr><th>Created</th><th>Format</th><th>URL</th></tr></thead><tbody>`)
		for _, r := range rows {
			h.raw(`<tr><td>`)
			h.text(r.CreatedAt)
			h.raw(`</td><td>`)
			h.text(r.Format)
			h.raw(`</td><td><a`)
			h.attr("href", string(templ.URL(r.URL)))
			h.raw(`>`)
			h.text(truncateURL(r.URL))
			h.raw(`</a></td></tr>`)
		}
		h.raw(`</tbody></table></section>`)
	})
}

// HistoryOOB replaces the history table alongside another fragment.
func HistoryOOB(rows []HistoryRow) templ.Component {
	return component(func(ctx context.Context, h *writer) {
		h.raw(`<div hx-swap-oob="outerHTML:#history">`)
		h.render(ctx, History(rows))
		h.raw(`</div>`)
	})
}

// AOIOptions is the AOI select of the spatial toolbar.
func AOIOptions(opts []Option) templ.Component {
	return component(func(ctx context.Context, h *writer) {
		h.raw(`<span id="aoi-select">`)
		all := append([]Option{{Value: "", Label: "None"}}, opts...)
		h.render(ctx, selectField("aoi", "Area-of-Interest (AOI)", all))
		h.raw(`</span>`)
	})
}

func AOIPage(rows []AOIRow, problems []string) templ.Component {
	return Layout("Manage AOIs", component(func(ctx context.Context, h *writer) {
		h.raw(`<section class="aois"><h2>Areas of Interest</h2>`)
		h.raw(`<form method="post" action="/aois" hx-post="/aois" hx-target="#aoi-list" hx-swap="outerHTML">`)
		h.raw(`<label>Name <input type="text" name="name" required></label>`)
		h.raw(`<label>Geometry (WKT) <textarea name="geometry" rows="3" required></textarea></label>`)
		h.raw(`<button type="submit">Save AOI</button></form>`)
		h.render(ctx, AOIList(rows, problems))
		h.raw(`</section>`)
	}))
}

func AOIList(rows []AOIRow, problems []string) templ.Component {
	return component(func(ctx context.Context, h *writer) {
		h.raw(`<div id="aoi-list">`)
		for _, p := range problems {
			h.raw(`<p class="field-error">`)
			h.text(p)
			h.raw(`</p>`)
		}
		if len(rows) == 0 {
			h.raw(`<p class="empty">No areas of interest saved.</p></div>`)
			return
		}
		h.raw(`<table><thead><tr><th>Name</th><th>Geometry</th><th>Created</th><th></th></tr></thead><tbody>`)
		for _, r := range rows {
			h.raw(`<tr><td>`)
			h.text(r.Name)
			h.raw(`</td><td><code>`)
			h.text(truncateURL(r.Geometry))
			h.raw(`</code></td><td>`)
			h.text(r.CreatedAt)
			h.raw(`</td><td><button type="button"`)
			h.attr("hx-delete", "/aois/"+r.ID)
			h.raw(` hx-target="#aoi-list" hx-swap="outerHTML" hx-confirm="Delete this AOI?">Delete</button></td></tr>`)
		}
		h.raw(`</tbody></table></div>`)
	})
}
