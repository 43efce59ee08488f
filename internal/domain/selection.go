package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type SelectionState int

const (
	Unchecked SelectionState = iota
	AwaitingInput
	Checked
)

func (s SelectionState) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting"
	case Checked:
		return "checked"
	default:
		return "unchecked"
	}
}

func ParseSelectionState(s string) SelectionState {
	switch s {
	case "awaiting":
		return AwaitingInput
	case "checked":
		return Checked
	default:
		return Unchecked
	}
}

// Prompt describes the modal shown while a statistic awaits its parameters.
type Prompt struct {
	Title   string
	Message string
	Labels  []string
}

// Calculation is a checked statistic with its parameters.
type Calculation struct {
	Key    string
	Params []float64
}

// String renders the calculation the way the request URL carries it: key or key(p1,p2).
func (c Calculation) String() string {
	if len(c.Params) == 0 {
		return c.Key
	}
	parts := make([]string, len(c.Params))
	for i, p := range c.Params {
		parts[i] = strconv.FormatFloat(p, 'f', -1, 64)
	}
	return c.Key + "(" + strings.Join(parts, ",") + ")"
}

// ParseCalculation reverses Calculation.String.
func ParseCalculation(s string) (Calculation, error) {
	s = strings.TrimSpace(s)
	open := strings.Index(s, "(")
	if open < 0 {
		if s == "" {
			return Calculation{}, fmt.Errorf("empty calculation")
		}
		return Calculation{Key: s}, nil
	}
	if !strings.HasSuffix(s, ")") || open == 0 {
		return Calculation{}, fmt.Errorf("malformed calculation %q", s)
	}
	calc := Calculation{Key: s[:open]}
	for _, raw := range strings.Split(s[open+1:len(s)-1], ",") {
		v, err := parseNumeric(raw)
		if err != nil {
			return Calculation{}, fmt.Errorf("calculation %q: %w", s, err)
		}
		calc.Params = append(calc.Params, v)
	}
	return calc, nil
}

// Selection is the check/uncheck state machine of one statistic node.
type Selection struct {
	Descriptor *StatisticDescriptor
	State      SelectionState
	Params     []float64
}

func NewSelection(d *StatisticDescriptor) *Selection {
	return &Selection{Descriptor: d}
}

// Activate handles a click on the node. From Unchecked it returns the prompt
// to show, or nil when the statistic takes no parameters and is checked
// directly. From Checked it unchecks. While awaiting input it does nothing.
func (s *Selection) Activate() *Prompt {
	switch s.State {
	case Checked:
		s.State = Unchecked
		s.Params = nil
		return nil
	case AwaitingInput:
		return s.prompt()
	}

	if s.Descriptor.ParameterCount() == 0 {
		s.State = Checked
		return nil
	}
	s.State = AwaitingInput
	return s.prompt()
}

func (s *Selection) prompt() *Prompt {
	return &Prompt{
		Title:   "Add Statistic: " + s.Descriptor.Text,
		Message: s.Descriptor.PromptText(),
		Labels:  s.Descriptor.Split().Labels(),
	}
}

// Confirm accepts the prompt values. Any failure reverts to Unchecked.
func (s *Selection) Confirm(inputs []string) error {
	if s.State != AwaitingInput {
		return fmt.Errorf("%w: confirm while %s", ErrInvalidState, s.State)
	}

	want := s.Descriptor.ParameterCount()
	params := make([]float64, 0, want)
	for _, in := range inputs {
		if in == "" {
			s.reset()
			return ErrEmptyInput
		}
	}
	if len(inputs) != want {
		s.reset()
		return fmt.Errorf("%w: expected %d values, got %d", ErrNonNumericInput, want, len(inputs))
	}
	for _, in := range inputs {
		v, err := parseNumeric(in)
		if err != nil {
			s.reset()
			return err
		}
		params = append(params, v)
	}

	s.State = Checked
	s.Params = params
	return nil
}

// Cancel dismisses the prompt.
func (s *Selection) Cancel() {
	if s.State == AwaitingInput {
		s.reset()
	}
}

func (s *Selection) reset() {
	s.State = Unchecked
	s.Params = nil
}

func (s *Selection) Calculation() (Calculation, bool) {
	if s.State != Checked {
		return Calculation{}, false
	}
	return Calculation{Key: s.Descriptor.Key, Params: append([]float64(nil), s.Params...)}, true
}

func parseNumeric(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNonNumericInput, raw)
	}
	return v, nil
}

// SelectionSet tracks the selection of every statistic in a tree.
type SelectionSet struct {
	tree       *StatisticTree
	selections map[string]*Selection
}

func NewSelectionSet(tree *StatisticTree) *SelectionSet {
	return &SelectionSet{tree: tree, selections: make(map[string]*Selection)}
}

func (s *SelectionSet) Get(key string) (*Selection, error) {
	if sel, ok := s.selections[key]; ok {
		return sel, nil
	}
	d, ok := s.tree.Descriptor(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStatistic, key)
	}
	sel := NewSelection(d)
	s.selections[key] = sel
	return sel, nil
}

// Restore marks a previously confirmed calculation as checked.
func (s *SelectionSet) Restore(c Calculation) error {
	sel, err := s.Get(c.Key)
	if err != nil {
		return err
	}
	if len(c.Params) != sel.Descriptor.ParameterCount() {
		return fmt.Errorf("statistic %s takes %d parameters, got %d", c.Key, sel.Descriptor.ParameterCount(), len(c.Params))
	}
	sel.State = Checked
	sel.Params = append([]float64(nil), c.Params...)
	return nil
}

func (s *SelectionSet) State(key string) SelectionState {
	if sel, ok := s.selections[key]; ok {
		return sel.State
	}
	return Unchecked
}

// Calculations returns checked statistics in tree order.
func (s *SelectionSet) Calculations() []Calculation {
	var out []Calculation
	for _, key := range s.tree.Keys() {
		sel, ok := s.selections[key]
		if !ok {
			continue
		}
		if c, ok := sel.Calculation(); ok {
			out = append(out, c)
		}
	}
	return out
}
