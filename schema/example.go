package schema

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type ExampleType string

const (
	ExampleGood       ExampleType = "good"
	ExampleBad        ExampleType = "bad"
	ExampleComparison ExampleType = "comparison"
	ExampleNeutral    ExampleType = "neutral"
)

var titleCaser = cases.Title(language.English)

// Title returns the display form, e.g. "Good".
func (e ExampleType) Title() string {
	return titleCaser.String(string(e))
}

// SubExample is a labeled region of a code block.
type SubExample struct {
	Content string      `json:"content"`
	Label   ExampleType `json:"label"`
	Index   int         `json:"index"`
	BlockID string      `json:"block_id"`
	// LineStart and LineEnd are 0-based, end exclusive, relative to the block content.
	LineStart int      `json:"line_start"`
	LineEnd   int      `json:"line_end"`
	Evidence  []string `json:"evidence,omitempty"`
	Inferred  bool     `json:"inferred,omitempty"`
}
