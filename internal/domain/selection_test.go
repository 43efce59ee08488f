package domain

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleTree() *StatisticTree {
	return NewStatisticTree([]StatisticNode{
		{Text: "Mean", Leaf: true, Value: "mean", Desc: "Compute mean value of the set."},
		{Text: "Percentile", Leaf: true, Value: "freq_perc", Desc: "Percentile {0} along the time axis."},
		{Text: "Thresholds", Children: []StatisticNode{
			{Text: "Between", Leaf: true, Value: "between", Desc: "Count of values from {0} to {1}."},
		}},
	})
}

func selectionFor(t *testing.T, key string) *Selection {
	t.Helper()
	d, ok := sampleTree().Descriptor(key)
	if !ok {
		t.Fatalf("descriptor %s not found", key)
	}
	return NewSelection(d)
}

func TestSelection_ZeroParamsChecksWithoutPrompt(t *testing.T) {
	s := selectionFor(t, "mean")
	if p := s.Activate(); p != nil {
		t.Fatalf("expected no prompt, got %+v", p)
	}
	if s.State != Checked {
		t.Fatalf("expected Checked, got %s", s.State)
	}
	c, ok := s.Calculation()
	if !ok || c.String() != "mean" {
		t.Errorf("unexpected calculation %v %v", c, ok)
	}
}

func TestSelection_PromptLifecycle(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		inputs    []string
		cancel    bool
		wantState SelectionState
		wantErr   error
		wantCalc  string
	}{
		{name: "valid single", key: "freq_perc", inputs: []string{"95"}, wantState: Checked, wantCalc: "freq_perc(95)"},
		{name: "valid pair", key: "between", inputs: []string{"-1.5", "10"}, wantState: Checked, wantCalc: "between(-1.5,10)"},
		{name: "non numeric", key: "freq_perc", inputs: []string{"abc"}, wantState: Unchecked, wantErr: ErrNonNumericInput},
		{name: "infinite", key: "freq_perc", inputs: []string{"Inf"}, wantState: Unchecked, wantErr: ErrNonNumericInput},
		{name: "empty", key: "freq_perc", inputs: []string{""}, wantState: Unchecked, wantErr: ErrEmptyInput},
		{name: "one of two empty", key: "between", inputs: []string{"1", ""}, wantState: Unchecked, wantErr: ErrEmptyInput},
		{name: "whitespace is not empty", key: "freq_perc", inputs: []string{"  "}, wantState: Unchecked, wantErr: ErrNonNumericInput},
		{name: "wrong count", key: "between", inputs: []string{"1"}, wantState: Unchecked, wantErr: ErrNonNumericInput},
		{name: "cancelled", key: "between", cancel: true, wantState: Unchecked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := selectionFor(t, tt.key)
			prompt := s.Activate()
			if prompt == nil {
				t.Fatal("expected a prompt")
			}
			if s.State != AwaitingInput {
				t.Fatalf("expected AwaitingInput, got %s", s.State)
			}

			var err error
			if tt.cancel {
				s.Cancel()
			} else {
				err = s.Confirm(tt.inputs)
			}

			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("unexpected error %v", err)
			}
			if s.State != tt.wantState {
				t.Errorf("expected state %s, got %s", tt.wantState, s.State)
			}
			if tt.wantCalc != "" {
				c, _ := s.Calculation()
				if c.String() != tt.wantCalc {
					t.Errorf("expected %s, got %s", tt.wantCalc, c.String())
				}
			}
		})
	}
}

func TestSelection_PromptContents(t *testing.T) {
	s := selectionFor(t, "between")
	p := s.Activate()
	want := &Prompt{
		Title:   "Add Statistic: Between",
		Message: "Count of values from {0} to {1}",
		Labels:  []string{"Count of values from ", " to "},
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("prompt mismatch (-want +got):\n%s", diff)
	}
}

func TestSelection_CheckedTogglesOff(t *testing.T) {
	s := selectionFor(t, "freq_perc")
	s.Activate()
	if err := s.Confirm([]string{"50"}); err != nil {
		t.Fatal(err)
	}
	if p := s.Activate(); p != nil {
		t.Error("unchecking should not prompt")
	}
	if s.State != Unchecked || s.Params != nil {
		t.Errorf("expected Unchecked without params, got %s %v", s.State, s.Params)
	}
}

func TestSelection_ActivateWhileAwaitingKeepsState(t *testing.T) {
	s := selectionFor(t, "freq_perc")
	s.Activate()
	if p := s.Activate(); p == nil {
		t.Error("expected the pending prompt again")
	}
	if s.State != AwaitingInput {
		t.Errorf("expected AwaitingInput, got %s", s.State)
	}
}

func TestSelection_ConfirmOutsidePrompt(t *testing.T) {
	s := selectionFor(t, "freq_perc")
	if err := s.Confirm([]string{"1"}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestSelectionSet_CalculationsInTreeOrder(t *testing.T) {
	set := NewSelectionSet(sampleTree())

	for _, key := range []string{"mean", "between"} {
		sel, err := set.Get(key)
		if err != nil {
			t.Fatal(err)
		}
		if sel.Activate() != nil {
			if err := sel.Confirm([]string{"0", "5"}); err != nil {
				t.Fatal(err)
			}
		}
	}

	var got []string
	for _, c := range set.Calculations() {
		got = append(got, c.String())
	}
	// Folders sort before leaves, so "between" under Thresholds comes first.
	want := []string{"between(0,5)", "mean"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("calculations mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectionSet_UnknownAndRestore(t *testing.T) {
	set := NewSelectionSet(sampleTree())
	if _, err := set.Get("nope"); !errors.Is(err, ErrUnknownStatistic) {
		t.Errorf("expected ErrUnknownStatistic, got %v", err)
	}
	if err := set.Restore(Calculation{Key: "freq_perc", Params: []float64{90}}); err != nil {
		t.Fatal(err)
	}
	if set.State("freq_perc") != Checked {
		t.Error("restored calculation should be checked")
	}
	if err := set.Restore(Calculation{Key: "freq_perc"}); err == nil {
		t.Error("expected parameter count error")
	}
}

func TestParseCalculation(t *testing.T) {
	tests := []struct {
		in      string
		want    Calculation
		wantErr bool
	}{
		{in: "mean", want: Calculation{Key: "mean"}},
		{in: "freq_perc(95)", want: Calculation{Key: "freq_perc", Params: []float64{95}}},
		{in: "between(0.5, 2)", want: Calculation{Key: "between", Params: []float64{0.5, 2}}},
		{in: "", wantErr: true},
		{in: "(1)", wantErr: true},
		{in: "between(1", wantErr: true},
		{in: "between(a,b)", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseCalculation(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseCalculation(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCalculation(%q): %v", tt.in, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ParseCalculation(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}
