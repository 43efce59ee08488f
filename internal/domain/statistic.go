package domain

import (
	"strings"
	"sync"
)

const (
	placeholderFirst  = "{0}"
	placeholderSecond = "{1}"
)

// TemplateSplit is the result of splitting a statistic description around
// its positional placeholders.
type TemplateSplit struct {
	ParameterCount int
	LabelBefore    string
	LabelBetween   string // only set when ParameterCount == 2
	Malformed      bool   // {1} starts before {0} ends
}

// Labels returns one label per parameter.
func (s TemplateSplit) Labels() []string {
	switch s.ParameterCount {
	case 1:
		return []string{s.LabelBefore}
	case 2:
		return []string{s.LabelBefore, s.LabelBetween}
	default:
		return nil
	}
}

// Split determines how many numeric parameters a description needs and
// extracts the labels surrounding the {0} and {1} placeholders.
func Split(description string) TemplateSplit {
	first := strings.Index(description, placeholderFirst)
	if first < 0 {
		return TemplateSplit{LabelBefore: description}
	}

	split := TemplateSplit{
		ParameterCount: 1,
		LabelBefore:    description[:first],
	}

	second := strings.Index(description, placeholderSecond)
	if second < 0 {
		return split
	}

	split.ParameterCount = 2
	afterFirst := first + len(placeholderFirst)
	if second < afterFirst {
		split.Malformed = true
		return split
	}
	split.LabelBetween = description[afterFirst:second]
	return split
}

// StatisticDescriptor wraps a catalog statistic and memoizes its split.
type StatisticDescriptor struct {
	Key         string
	Text        string
	Description string

	once  sync.Once
	split TemplateSplit
}

func NewStatisticDescriptor(node StatisticNode) *StatisticDescriptor {
	return &StatisticDescriptor{
		Key:         node.Key(),
		Text:        node.Text,
		Description: node.Desc,
	}
}

// Split returns the cached split, computing it on first use.
func (d *StatisticDescriptor) Split() TemplateSplit {
	d.once.Do(func() {
		d.split = Split(d.Description)
	})
	return d.split
}

func (d *StatisticDescriptor) ParameterCount() int {
	return d.Split().ParameterCount
}

// PromptText is the description clipped at its first sentence.
func (d *StatisticDescriptor) PromptText() string {
	if i := strings.Index(d.Description, "."); i >= 0 {
		return d.Description[:i]
	}
	return d.Description
}
