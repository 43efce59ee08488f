package templates

// Option is one entry of a select list.
type Option struct {
	Value       string
	Label       string
	Description string
	Selected    bool
}

// BuilderPage is everything the main page renders.
type BuilderPage struct {
	CatalogError string
	Archives     []Option
	Scenarios    []Option
	Models       []Option
	Variables    []Option
	Formats      []Option
	Groupings    []Option
	AOIs         []Option
	Run          int
	MinRun       int
	MaxRun       int
	Dates        DateFields
	Statistics   []TreeNode
	Request      RequestResult
	History      []HistoryRow
}

// DateFields renders the linked start/end inputs. StartMax and EndMin are
// the bounds each field imposes on the other.
type DateFields struct {
	Start      string
	End        string
	StartMax   string
	EndMin     string
	StartError string
	EndError   string
}

// TreeNode is a statistics tree entry. Leaves carry their selection state.
type TreeNode struct {
	Key         string
	Text        string
	Description string
	Leaf        bool
	State       string
	Calculation string
	Children    []TreeNode
}

type PromptView struct {
	Key     string
	Title   string
	Message string
	Labels  []string
}

type AlertView struct {
	Title   string
	Message string
}

type RequestResult struct {
	URL      string
	Problems []string
	Recorded bool
}

type AOIRow struct {
	ID        string
	Name      string
	Geometry  string
	CreatedAt string
}

type HistoryRow struct {
	URL       string
	Format    string
	CreatedAt string
}
