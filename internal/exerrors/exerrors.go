// Package exerrors defines the diagnostics that generation stages produce.
// Every fatal condition in the generator is represented as a Diagnostic; the
// CLI renders the batch to stderr and exits non-zero.
//
// A Diagnostic has a category, a one-line headline, and zero or more sections
// that each point at a location in the grammar file with an explanation of how
// that location participates in the problem.
package exerrors

import (
	"fmt"
	"io"
	"strings"

	"github.com/dekarrin/rosed"
)

const renderWidth = 78

// Category classifies a Diagnostic by the kind of problem it reports.
type Category int

const (
	// CatGrammar is a structural problem with the rule set; a missing or
	// duplicated entry rule, for example.
	CatGrammar Category = iota

	// CatRegex is a token pattern that could not be converted; an empty
	// regex or one using an unsupported feature.
	CatRegex

	// CatMissingSymbol is a reference to a rule name that no token or
	// production declares.
	CatMissingSymbol

	// CatConflictingRules is a name shared by rules of different kinds.
	CatConflictingRules

	// CatPrecedenceConflict is two or more token rules tied for highest
	// precedence at the same DFA accepting state.
	CatPrecedenceConflict

	// CatLL is an LL(1) parse-table cell written twice with non-equal
	// productions.
	CatLL

	// CatShiftReduce is a shift/reduce conflict in a canonical LR table.
	CatShiftReduce

	// CatReduceReduce is a reduce/reduce conflict in a canonical LR table.
	CatReduceReduce

	// CatIO is a problem reading the grammar file or writing output.
	CatIO
)

func (c Category) String() string {
	switch c {
	case CatGrammar:
		return "Grammar"
	case CatRegex:
		return "Regex"
	case CatMissingSymbol:
		return "MissingSymbol"
	case CatConflictingRules:
		return "ConflictingRules"
	case CatPrecedenceConflict:
		return "PrecedenceConflict"
	case CatLL:
		return "LLConflict"
	case CatShiftReduce:
		return "ShiftReduce"
	case CatReduceReduce:
		return "ReduceReduce"
	case CatIO:
		return "IO"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Section points at one location that participates in a Diagnostic. Line and
// Col are 1-based; Source is the offending source text, if available.
type Section struct {
	File        string
	Line        int
	Col         int
	Source      string
	Explanation string
}

// Diagnostic is one fatal generation problem. It implements error; Error()
// gives the category and headline only, FullMessage() renders the headline together with
// all sections.
type Diagnostic struct {
	Category Category
	Headline string
	Sections []Section
	wrap     error
}

// New creates a Diagnostic with the given category and headline.
func New(cat Category, headlineFmt string, a ...interface{}) *Diagnostic {
	return &Diagnostic{
		Category: cat,
		Headline: fmt.Sprintf(headlineFmt, a...),
	}
}

// Wrap creates an IO-category Diagnostic wrapping an underlying error.
func Wrap(err error, headlineFmt string, a ...interface{}) *Diagnostic {
	d := New(CatIO, headlineFmt, a...)
	d.wrap = err
	return d
}

// WithSection returns the Diagnostic with a section appended. It returns its
// receiver so calls can be chained.
func (d *Diagnostic) WithSection(file string, line, col int, source, explanation string) *Diagnostic {
	d.Sections = append(d.Sections, Section{
		File:        file,
		Line:        line,
		Col:         col,
		Source:      source,
		Explanation: explanation,
	})
	return d
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Category.String(), d.Headline)
}

func (d *Diagnostic) Unwrap() error {
	return d.wrap
}

// FullMessage renders the Diagnostic with all of its sections, wrapped for
// terminal output.
func (d *Diagnostic) FullMessage() string {
	var sb strings.Builder

	sb.WriteString("ERROR [")
	sb.WriteString(d.Category.String())
	sb.WriteString("] ")
	sb.WriteString(d.Headline)

	for _, sec := range d.Sections {
		sb.WriteRune('\n')

		loc := sec.File
		if loc == "" {
			loc = "<input>"
		}
		sb.WriteString(fmt.Sprintf("  --> %s:%d:%d", loc, sec.Line, sec.Col))

		if sec.Source != "" {
			sb.WriteRune('\n')
			sb.WriteString("      ")
			sb.WriteString(sec.Source)
		}

		if sec.Explanation != "" {
			expl := rosed.Edit(sec.Explanation).Wrap(renderWidth - 6).String()
			for _, line := range strings.Split(strings.TrimRight(expl, "\n"), "\n") {
				sb.WriteRune('\n')
				sb.WriteString("      ")
				sb.WriteString(line)
			}
		}
	}

	return sb.String()
}

// Render writes every Diagnostic in the batch to w, one blank line between
// them.
func Render(w io.Writer, diags []*Diagnostic) {
	for i, d := range diags {
		fmt.Fprintln(w, d.FullMessage())
		if i+1 < len(diags) {
			fmt.Fprintln(w)
		}
	}
}
