package domain

import (
	"fmt"
	"sort"
)

type Archive struct {
	ID      int    `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	URLSlug string `json:"urlslug"`
}

type Scenario struct {
	ID          int    `json:"id"`
	URLSlug     string `json:"urlslug"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ClimateModel struct {
	ID           int    `json:"id"`
	URLSlug      string `json:"urlslug"`
	Code         string `json:"code"`
	Organization string `json:"organization"`
	Name         string `json:"name"`
	Comments     string `json:"comments"`
}

type Variable struct {
	ID          int    `json:"id"`
	URLSlug     string `json:"urlslug"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Units       string `json:"units"`
	NDim        int    `json:"ndim"`
}

// StatisticNode is one entry of the hierarchical statistics catalog.
type StatisticNode struct {
	Text     string          `json:"text"`
	Leaf     bool            `json:"leaf"`
	Children []StatisticNode `json:"children"`
	Value    any             `json:"value"`
	Desc     string          `json:"desc"`
}

// Key identifies the statistic in requests; it falls back to the node text.
func (n StatisticNode) Key() string {
	switch v := n.Value.(type) {
	case nil:
		return n.Text
	case string:
		if v == "" {
			return n.Text
		}
		return v
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprint(v)
	}
}

const StatisticTreeRoot = "Available Statistics"

// StatisticTree is the sorted statistics catalog with one descriptor per leaf.
type StatisticTree struct {
	Root        StatisticNode
	descriptors map[string]*StatisticDescriptor
	order       []string
}

// NewStatisticTree sorts each level folders-first, then by text, and indexes
// the leaves by key.
func NewStatisticTree(nodes []StatisticNode) *StatisticTree {
	root := StatisticNode{Text: StatisticTreeRoot, Children: cloneNodes(nodes)}
	sortNodes(root.Children)

	t := &StatisticTree{Root: root, descriptors: make(map[string]*StatisticDescriptor)}
	t.Walk(func(n StatisticNode, _ int) {
		if !n.Leaf {
			return
		}
		key := n.Key()
		if _, exists := t.descriptors[key]; exists {
			return
		}
		t.descriptors[key] = NewStatisticDescriptor(n)
		t.order = append(t.order, key)
	})
	return t
}

func cloneNodes(nodes []StatisticNode) []StatisticNode {
	if nodes == nil {
		return nil
	}
	out := make([]StatisticNode, len(nodes))
	for i, n := range nodes {
		out[i] = n
		out[i].Children = cloneNodes(n.Children)
	}
	return out
}

func sortNodes(nodes []StatisticNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Leaf != nodes[j].Leaf {
			return !nodes[i].Leaf
		}
		return nodes[i].Text < nodes[j].Text
	})
	for i := range nodes {
		sortNodes(nodes[i].Children)
	}
}

// Walk visits every node below the root depth-first with its depth.
func (t *StatisticTree) Walk(fn func(n StatisticNode, depth int)) {
	var walk func(nodes []StatisticNode, depth int)
	walk = func(nodes []StatisticNode, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(t.Root.Children, 0)
}

func (t *StatisticTree) Descriptor(key string) (*StatisticDescriptor, bool) {
	d, ok := t.descriptors[key]
	return d, ok
}

// Keys returns leaf keys in tree order.
func (t *StatisticTree) Keys() []string {
	return append([]string(nil), t.order...)
}

// Catalog holds everything the builder needs from the remote API.
type Catalog struct {
	Archives   []Archive
	Scenarios  []Scenario
	Models     []ClimateModel
	Variables  []Variable
	Statistics *StatisticTree
}

// OutputFormat is a downloadable file format.
type OutputFormat struct {
	Value string
	Text  string
}

var OutputFormats = []OutputFormat{
	{"geojson", "GeoJSON Text File"},
	{"csv", "Comma Separated Value"},
	{"kcsv", "Linked Comma Separated Value (zipped)"},
	{"shz", "ESRI Shapefile (zipped)"},
	{"lshz", "CSV-Linked ESRI Shapefile (zipped)"},
	{"kml", "Keyhole Markup Language"},
	{"kmz", "Keyhole Markup Language (zipped)"},
	{"sqlite", "SQLite3 Database (zipped)"},
	{"nc", "NetCDF"},
}

const DefaultOutputFormat = "geojson"

func IsOutputFormat(v string) bool {
	for _, f := range OutputFormats {
		if f.Value == v {
			return true
		}
	}
	return false
}

// GroupingInterval is the temporal grouping applied before statistics.
type GroupingInterval string

const (
	GroupYear  GroupingInterval = "year"
	GroupMonth GroupingInterval = "month"
	GroupDay   GroupingInterval = "day"
)

var GroupingIntervals = []GroupingInterval{GroupYear, GroupMonth, GroupDay}

func ParseGroupingInterval(s string) (GroupingInterval, error) {
	if s == "" {
		return GroupYear, nil
	}
	for _, g := range GroupingIntervals {
		if string(g) == s {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown grouping interval %q", s)
}
