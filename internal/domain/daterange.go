package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and display format for request dates.
const DateLayout = "2006-01-02"

var dateLayouts = []string{DateLayout, time.RFC3339, "01/02/2006"}

type DateField int

const (
	FieldStart DateField = iota
	FieldEnd
)

func (f DateField) String() string {
	if f == FieldEnd {
		return "end"
	}
	return "start"
}

// ParseDateField maps the form names "start"/"startDate" and "end"/"endDate".
func ParseDateField(s string) (DateField, error) {
	switch strings.ToLower(s) {
	case "start", "startdate":
		return FieldStart, nil
	case "end", "enddate":
		return FieldEnd, nil
	}
	return FieldStart, fmt.Errorf("unknown date field %q", s)
}

func (f DateField) sibling() DateField {
	if f == FieldStart {
		return FieldEnd
	}
	return FieldStart
}

// ParseDate accepts the layouts the builder forms produce.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Truncate(24 * time.Hour), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

type dateSlot struct {
	value *time.Time
	bound *time.Time
}

// DateRange links a start and an end date. Editing one field tightens the
// allowed bound of the other: start is capped by end, end is floored by start.
type DateRange struct {
	fields  [2]dateSlot
	onBound func(DateField, time.Time)
}

type DateRangeOption func(*DateRange)

// WithBoundListener is notified each time a sibling bound actually changes.
func WithBoundListener(fn func(DateField, time.Time)) DateRangeOption {
	return func(r *DateRange) { r.onBound = fn }
}

func NewDateRange(opts ...DateRangeOption) *DateRange {
	r := &DateRange{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Edit parses raw and applies it to the given field. An unparseable value
// leaves the field unchanged and returns ErrInvalidDate. A value outside the
// field's own bound returns ErrOutOfRange and is not committed.
func (r *DateRange) Edit(which DateField, raw string) error {
	date, err := ParseDate(raw)
	if err != nil {
		return err
	}
	if err := r.checkBound(which, date); err != nil {
		return err
	}

	r.fields[which].value = &date
	r.propagate(which, date)
	return nil
}

// Clear empties a field and lifts the bound it imposed on its sibling.
func (r *DateRange) Clear(which DateField) {
	r.fields[which].value = nil
	r.fields[which.sibling()].bound = nil
}

func (r *DateRange) propagate(which DateField, date time.Time) {
	other := which.sibling()
	current := r.fields[other].bound
	if current != nil && current.Equal(date) {
		return
	}
	// Each bound mirrors the sibling's value and date already passed
	// checkBound against it, so the sibling cannot fall out of range here.
	r.fields[other].bound = &date
	if r.onBound != nil {
		r.onBound(other, date)
	}
}

func (r *DateRange) checkBound(which DateField, date time.Time) error {
	bound := r.fields[which].bound
	if bound == nil {
		return nil
	}
	if which == FieldStart && date.After(*bound) {
		return fmt.Errorf("%w: start must be on or before %s", ErrOutOfRange, bound.Format(DateLayout))
	}
	if which == FieldEnd && date.Before(*bound) {
		return fmt.Errorf("%w: end must be on or after %s", ErrOutOfRange, bound.Format(DateLayout))
	}
	return nil
}

// Validate reports whether the field's value sits within its bound.
func (r *DateRange) Validate(which DateField) error {
	value := r.fields[which].value
	if value == nil {
		return nil
	}
	return r.checkBound(which, *value)
}

func (r *DateRange) Value(which DateField) (time.Time, bool) {
	if v := r.fields[which].value; v != nil {
		return *v, true
	}
	return time.Time{}, false
}

// Bound returns the max allowed start or the min allowed end.
func (r *DateRange) Bound(which DateField) (time.Time, bool) {
	if b := r.fields[which].bound; b != nil {
		return *b, true
	}
	return time.Time{}, false
}

// Complete reports whether both dates are set.
func (r *DateRange) Complete() bool {
	return r.fields[FieldStart].value != nil && r.fields[FieldEnd].value != nil
}
