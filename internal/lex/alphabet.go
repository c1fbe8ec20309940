// Package lex generates the lexical analyzer: it partitions the codepoint
// space into an alphabet of ranges, builds an NFA from the token patterns via
// Thompson construction, determinizes it, and resolves overlapping token
// rules by precedence. It also carries the reference scanner that simulates
// the finished DFA over input text.
package lex

import (
	"fmt"
	"sort"
	"unicode"

	"github.com/dekarrin/esox/internal/input"
)

// CharRange is an inclusive codepoint interval.
type CharRange struct {
	Lo rune
	Hi rune
}

func (cr CharRange) String() string {
	if cr.Lo == cr.Hi {
		return fmt.Sprintf("[%U]", cr.Lo)
	}
	return fmt.Sprintf("[%U-%U]", cr.Lo, cr.Hi)
}

// Alphabet is a partition of the codepoint space [0, MaxRune] into disjoint
// ranges, ordered ascending. Every codepoint mentioned by any token pattern
// lies on a range boundary, so each pattern's character set is an exact union
// of whole ranges. Automata transition on range indices rather than raw
// codepoints.
type Alphabet struct {
	ranges []CharRange
}

// NewAlphabet builds the Alphabet induced by the given token rules.
//
// Every literal codepoint and every range endpoint in any pattern is a
// landmark; 0 and MaxRune always are. Each landmark becomes its own
// single-codepoint range and each gap between adjacent landmarks becomes one
// more, so the partition is total and every pattern boundary falls exactly on
// a range edge.
func NewAlphabet(rules []input.TokenRule) Alphabet {
	landmarkSet := map[rune]bool{0: true, unicode.MaxRune: true}
	for i := range rules {
		collectLandmarks(landmarkSet, rules[i].Pattern)
	}

	landmarks := make([]rune, 0, len(landmarkSet))
	for ch := range landmarkSet {
		landmarks = append(landmarks, ch)
	}
	sort.Slice(landmarks, func(i, j int) bool { return landmarks[i] < landmarks[j] })

	var ranges []CharRange
	prev := landmarks[0]
	ranges = append(ranges, CharRange{Lo: prev, Hi: prev})
	for _, ch := range landmarks[1:] {
		if ch-prev > 1 {
			ranges = append(ranges, CharRange{Lo: prev + 1, Hi: ch - 1})
		}
		ranges = append(ranges, CharRange{Lo: ch, Hi: ch})
		prev = ch
	}

	return Alphabet{ranges: ranges}
}

func collectLandmarks(landmarks map[rune]bool, pat *input.Pattern) {
	if pat == nil {
		return
	}

	switch pat.Type {
	case input.PatternSequence, input.PatternAlternative:
		for _, elem := range pat.Elements {
			collectLandmarks(landmarks, elem)
		}
	case input.PatternRepetition:
		collectLandmarks(landmarks, pat.Inner)
	case input.PatternCharSet:
		for _, chars := range pat.Chars {
			landmarks[chars.Lo] = true
			landmarks[chars.Hi] = true
		}
	case input.PatternChar:
		landmarks[pat.Char.Lo] = true
		landmarks[pat.Char.Hi] = true
	case input.PatternEpsilon:
		// matches no characters, contributes no landmarks
	}
}

// Len returns the number of ranges in the partition.
func (a Alphabet) Len() int {
	return len(a.ranges)
}

// Ranges returns the partition, ordered ascending.
func (a Alphabet) Ranges() []CharRange {
	return a.ranges
}

// IndexOf returns the index of the range containing the given codepoint. The
// second return is false only for codepoints outside [0, MaxRune]; the
// partition itself is total.
func (a Alphabet) IndexOf(ch rune) (int, bool) {
	idx := sort.Search(len(a.ranges), func(i int) bool {
		return a.ranges[i].Lo > ch
	})
	if idx == 0 {
		return 0, false
	}
	if a.ranges[idx-1].Lo <= ch && ch <= a.ranges[idx-1].Hi {
		return idx - 1, true
	}
	return 0, false
}

// FromRanges reassembles an Alphabet from a previously obtained partition,
// for use when loading a compiled bundle.
func FromRanges(ranges []CharRange) Alphabet {
	return Alphabet{ranges: ranges}
}
