package web

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/emiliopalmerini/ocgbuilder/internal/domain"
	"github.com/emiliopalmerini/ocgbuilder/internal/util"
	"github.com/emiliopalmerini/ocgbuilder/internal/web/templates"
)

func catalogOptions(cat *domain.Catalog) (archives, scenarios, models, variables []templates.Option) {
	for _, a := range cat.Archives {
		archives = append(archives, templates.Option{Value: a.URLSlug, Label: a.Name})
	}
	for _, s := range cat.Scenarios {
		scenarios = append(scenarios, templates.Option{Value: s.URLSlug, Label: s.Name, Description: s.Description})
	}
	for _, m := range cat.Models {
		label := m.Name
		if m.Organization != "" {
			label += " (" + m.Organization + ")"
		}
		models = append(models, templates.Option{Value: m.URLSlug, Label: label, Description: m.Comments})
	}
	for _, v := range cat.Variables {
		label := v.Name
		if v.Units != "" {
			label += " [" + v.Units + "]"
		}
		variables = append(variables, templates.Option{Value: v.URLSlug, Label: label, Description: v.Description})
	}
	return archives, scenarios, models, variables
}

func formatOptions(selected string) []templates.Option {
	if selected == "" {
		selected = domain.DefaultOutputFormat
	}
	opts := make([]templates.Option, len(domain.OutputFormats))
	for i, f := range domain.OutputFormats {
		opts[i] = templates.Option{Value: f.Value, Label: f.Text, Selected: f.Value == selected}
	}
	return opts
}

func groupingOptions(selected domain.GroupingInterval) []templates.Option {
	if selected == "" {
		selected = domain.GroupYear
	}
	opts := make([]templates.Option, len(domain.GroupingIntervals))
	for i, g := range domain.GroupingIntervals {
		label := strings.ToUpper(string(g[:1])) + string(g[1:])
		opts[i] = templates.Option{Value: string(g), Label: label, Selected: g == selected}
	}
	return opts
}

// treeNodes mirrors the sorted statistics tree with every leaf unchecked.
func treeNodes(nodes []domain.StatisticNode) []templates.TreeNode {
	out := make([]templates.TreeNode, 0, len(nodes))
	for _, n := range nodes {
		if n.Leaf {
			out = append(out, templates.TreeNode{
				Key:         n.Key(),
				Text:        n.Text,
				Description: n.Desc,
				Leaf:        true,
				State:       domain.Unchecked.String(),
			})
			continue
		}
		out = append(out, templates.TreeNode{Text: n.Text, Children: treeNodes(n.Children)})
	}
	return out
}

func selectionNode(sel *domain.Selection) templates.TreeNode {
	n := templates.TreeNode{
		Key:         sel.Descriptor.Key,
		Text:        sel.Descriptor.Text,
		Description: sel.Descriptor.Description,
		Leaf:        true,
		State:       sel.State.String(),
	}
	if c, ok := sel.Calculation(); ok {
		n.Calculation = c.String()
	}
	return n
}

func promptView(key string, p *domain.Prompt) templates.PromptView {
	return templates.PromptView{Key: key, Title: p.Title, Message: p.Message, Labels: p.Labels}
}

// editDateRange replays the posted pair: the untouched field first, then
// the edited one, so the edit is checked against the sibling's bound.
func editDateRange(values url.Values, edited domain.DateField) templates.DateFields {
	other := domain.FieldStart
	if edited == domain.FieldStart {
		other = domain.FieldEnd
	}
	raw := map[domain.DateField]string{
		domain.FieldStart: strings.TrimSpace(values.Get("startDate")),
		domain.FieldEnd:   strings.TrimSpace(values.Get("endDate")),
	}
	errs := make(map[domain.DateField]string)

	dates := domain.NewDateRange()
	if raw[other] != "" {
		if err := dates.Edit(other, raw[other]); err != nil {
			errs[other] = err.Error()
		}
	}
	if raw[edited] == "" {
		dates.Clear(edited)
	} else if err := dates.Edit(edited, raw[edited]); err != nil {
		errs[edited] = err.Error()
	}

	shown := func(f domain.DateField) string {
		if v, ok := dates.Value(f); ok {
			return v.Format(domain.DateLayout)
		}
		return raw[f]
	}
	out := templates.DateFields{
		Start:      shown(domain.FieldStart),
		End:        shown(domain.FieldEnd),
		StartError: errs[domain.FieldStart],
		EndError:   errs[domain.FieldEnd],
	}
	if b, ok := dates.Bound(domain.FieldStart); ok {
		out.StartMax = b.Format(domain.DateLayout)
	}
	if b, ok := dates.Bound(domain.FieldEnd); ok {
		out.EndMin = b.Format(domain.DateLayout)
	}
	return out
}

func (s *Server) aoiOptions(ctx context.Context) []templates.Option {
	if s.aoiRepo == nil {
		return nil
	}
	aois, err := s.aoiRepo.List(ctx)
	if err != nil {
		slog.Error("failed to list aois", "error", err)
		return nil
	}
	opts := make([]templates.Option, len(aois))
	for i, a := range aois {
		opts[i] = templates.Option{Value: a.ID, Label: a.Name}
	}
	return opts
}

func aoiRows(aois []*domain.AOI) []templates.AOIRow {
	rows := make([]templates.AOIRow, len(aois))
	for i, a := range aois {
		rows[i] = templates.AOIRow{
			ID:        a.ID,
			Name:      a.Name,
			Geometry:  a.Geometry,
			CreatedAt: util.FormatDateTime(a.CreatedAt),
		}
	}
	return rows
}

func (s *Server) historyRows(ctx context.Context) []templates.HistoryRow {
	records, err := s.builder.History(ctx, s.cfg.HistoryLimit)
	if err != nil {
		slog.Error("failed to list request history", "error", err)
		return nil
	}
	rows := make([]templates.HistoryRow, len(records))
	for i, r := range records {
		rows[i] = templates.HistoryRow{URL: r.URL, Format: r.Format, CreatedAt: util.FormatDateTime(r.CreatedAt)}
	}
	return rows
}
