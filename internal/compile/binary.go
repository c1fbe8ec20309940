package compile

import (
	"fmt"
	"io"

	"github.com/dekarrin/rezi"

	"github.com/dekarrin/esox/internal/lex"
)

// This file contains the binary format of compiled bundles. The layout is a
// fixed magic and format version followed by the rezi encoding of the Bundle;
// every variable-length section is preceded by its count.

var bundleMagic = []byte("ESOXC")

const bundleFormatVersion = 1

// Write serializes the bundle to w in one call, so a failed run never leaves
// a partial artifact behind.
func Write(w io.Writer, b *Bundle) error {
	data := append([]byte{}, bundleMagic...)
	data = append(data, rezi.EncInt(bundleFormatVersion)...)
	data = append(data, rezi.EncBinary(b)...)

	_, err := w.Write(data)
	return err
}

// Read deserializes a bundle previously written with Write.
func Read(r io.Reader) (*Bundle, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if len(data) < len(bundleMagic) || string(data[:len(bundleMagic)]) != string(bundleMagic) {
		return nil, fmt.Errorf("not a compiled bundle (bad magic)")
	}
	data = data[len(bundleMagic):]

	version, n, err := rezi.DecInt(data)
	if err != nil {
		return nil, fmt.Errorf("decoding format version: %w", err)
	}
	if version != bundleFormatVersion {
		return nil, fmt.Errorf("unsupported bundle format version %d", version)
	}
	data = data[n:]

	b := &Bundle{}
	if _, err := rezi.DecBinary(data, b); err != nil {
		return nil, fmt.Errorf("decoding bundle: %w", err)
	}
	return b, nil
}

func (b *Bundle) MarshalBinary() ([]byte, error) {
	var enc []byte

	enc = append(enc, rezi.EncString(b.Language)...)
	enc = append(enc, rezi.EncString(b.Algorithm)...)
	enc = append(enc, rezi.EncBool(b.HasLexer)...)

	enc = append(enc, rezi.EncInt(len(b.Alphabet))...)
	for _, cr := range b.Alphabet {
		enc = append(enc, rezi.EncInt(int(cr.Lo))...)
		enc = append(enc, rezi.EncInt(int(cr.Hi))...)
	}

	enc = append(enc, rezi.EncInt(len(b.LexStates))...)
	for _, st := range b.LexStates {
		enc = append(enc, rezi.EncBool(st.Accepting)...)
		enc = append(enc, rezi.EncInt(st.Rule)...)
		enc = append(enc, rezi.EncInt(len(st.Edges))...)
		for _, e := range st.Edges {
			enc = append(enc, rezi.EncInt(e.Label)...)
			enc = append(enc, rezi.EncInt(e.To)...)
		}
	}

	enc = append(enc, encStrings(b.TermNames)...)
	enc = append(enc, encStrings(b.NonTermNames)...)
	enc = append(enc, rezi.EncInt(b.NonTermCount)...)

	enc = append(enc, rezi.EncInt(len(b.Rules))...)
	for _, r := range b.Rules {
		enc = append(enc, rezi.EncInt(r.LHS)...)
		enc = append(enc, rezi.EncInt(len(r.RHS))...)
		for _, s := range r.RHS {
			enc = append(enc, encSym(s)...)
		}
	}

	enc = append(enc, encSym(b.Entry)...)

	enc = append(enc, rezi.EncInt(len(b.LLCells))...)
	for _, c := range b.LLCells {
		enc = append(enc, rezi.EncInt(c.NonTerminal)...)
		enc = append(enc, encSym(c.Lookahead)...)
		enc = append(enc, rezi.EncInt(c.Rule)...)
	}

	enc = append(enc, rezi.EncInt(b.LRK)...)
	enc = append(enc, rezi.EncInt(len(b.LRCells))...)
	for _, row := range b.LRCells {
		enc = append(enc, rezi.EncInt(len(row))...)
		for _, cellActs := range row {
			enc = append(enc, rezi.EncInt(len(cellActs))...)
			for _, c := range cellActs {
				enc = append(enc, rezi.EncInt(c.Type)...)
				enc = append(enc, rezi.EncInt(c.State)...)
				enc = append(enc, rezi.EncInt(c.Rule)...)
			}
		}
	}

	return enc, nil
}

func (b *Bundle) UnmarshalBinary(data []byte) error {
	d := &decoder{data: data}

	b.Language = d.str()
	b.Algorithm = d.str()
	b.HasLexer = d.boolean()

	alphaCount := d.integer()
	b.Alphabet = nil
	for i := 0; i < alphaCount && d.err == nil; i++ {
		lo := d.integer()
		hi := d.integer()
		b.Alphabet = append(b.Alphabet, lexRange(lo, hi))
	}

	stateCount := d.integer()
	b.LexStates = nil
	for i := 0; i < stateCount && d.err == nil; i++ {
		st := LexState{Accepting: d.boolean(), Rule: d.integer()}
		edgeCount := d.integer()
		for j := 0; j < edgeCount && d.err == nil; j++ {
			st.Edges = append(st.Edges, LexEdge{Label: d.integer(), To: d.integer()})
		}
		b.LexStates = append(b.LexStates, st)
	}

	b.TermNames = d.strings()
	b.NonTermNames = d.strings()
	b.NonTermCount = d.integer()

	ruleCount := d.integer()
	b.Rules = nil
	for i := 0; i < ruleCount && d.err == nil; i++ {
		r := BundleRule{LHS: d.integer()}
		rhsCount := d.integer()
		for j := 0; j < rhsCount && d.err == nil; j++ {
			r.RHS = append(r.RHS, d.sym())
		}
		b.Rules = append(b.Rules, r)
	}

	b.Entry = d.sym()

	llCount := d.integer()
	b.LLCells = nil
	for i := 0; i < llCount && d.err == nil; i++ {
		b.LLCells = append(b.LLCells, LLCell{
			NonTerminal: d.integer(),
			Lookahead:   d.sym(),
			Rule:        d.integer(),
		})
	}

	b.LRK = d.integer()
	lrStates := d.integer()
	b.LRCells = nil
	for i := 0; i < lrStates && d.err == nil; i++ {
		slotCount := d.integer()
		row := make([][]Cell, 0, slotCount)
		for j := 0; j < slotCount && d.err == nil; j++ {
			actCount := d.integer()
			var cellActs []Cell
			for k := 0; k < actCount && d.err == nil; k++ {
				cellActs = append(cellActs, Cell{Type: d.integer(), State: d.integer(), Rule: d.integer()})
			}
			row = append(row, cellActs)
		}
		b.LRCells = append(b.LRCells, row)
	}

	return d.err
}

func lexRange(lo, hi int) lex.CharRange {
	return lex.CharRange{Lo: rune(lo), Hi: rune(hi)}
}

func encStrings(strs []string) []byte {
	enc := rezi.EncInt(len(strs))
	for _, s := range strs {
		enc = append(enc, rezi.EncString(s)...)
	}
	return enc
}

func encSym(s Sym) []byte {
	enc := rezi.EncInt(s.Kind)
	return append(enc, rezi.EncInt(s.Index)...)
}

// decoder tracks position and the first error while pulling rezi primitives
// off the data, so field reads can be written linearly.
type decoder struct {
	data []byte
	err  error
}

func (d *decoder) integer() int {
	if d.err != nil {
		return 0
	}
	v, n, err := rezi.DecInt(d.data)
	if err != nil {
		d.err = err
		return 0
	}
	d.data = d.data[n:]
	return v
}

func (d *decoder) str() string {
	if d.err != nil {
		return ""
	}
	v, n, err := rezi.DecString(d.data)
	if err != nil {
		d.err = err
		return ""
	}
	d.data = d.data[n:]
	return v
}

func (d *decoder) boolean() bool {
	if d.err != nil {
		return false
	}
	v, n, err := rezi.DecBool(d.data)
	if err != nil {
		d.err = err
		return false
	}
	d.data = d.data[n:]
	return v
}

func (d *decoder) strings() []string {
	count := d.integer()
	var strs []string
	for i := 0; i < count && d.err == nil; i++ {
		strs = append(strs, d.str())
	}
	return strs
}

func (d *decoder) sym() Sym {
	return Sym{Kind: d.integer(), Index: d.integer()}
}
