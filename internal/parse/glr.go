package parse

import (
	"fmt"

	"github.com/dekarrin/esox/internal/grammar"
)

// GLRParser is the reference driver for a GLR ActionGotoTable. Conflicted
// cells fork the parse instead of failing it: the driver maintains a
// graph-structured stack whose tops are the live branches, reduces each
// branch to fixpoint before every shift, and merges branches back together
// when their divergence turns out not to matter.
//
// Each branch carries a record of its shifts and reduces. The record is only
// flushed to the Visitor once the live frontier has collapsed to a single
// branch, so the Visitor never observes a parse that is later discarded.
type GLRParser struct {
	table *ActionGotoTable
	trace func(s string)
}

// NewGLRParser creates a driver for the given table. The table may be
// canonical or conflicted; on a canonical table the frontier never grows past
// one branch and the driver behaves exactly like LRParser.
func NewGLRParser(table *ActionGotoTable) *GLRParser {
	return &GLRParser{table: table}
}

// RegisterTraceListener sets a function to call with a line of text when
// branches merge, when a reduce runs along several stack paths, and on
// accept. Forks caused by a conflicted cell and the frontier collapsing to
// one branch produce no line.
func (p *GLRParser) RegisterTraceListener(listener func(s string)) {
	p.trace = listener
}

func (p *GLRParser) notifyTrace(fmtStr string, args ...interface{}) {
	if p.trace != nil {
		p.trace(fmt.Sprintf(fmtStr, args...))
	}
}

// gssNode is one node of the graph-structured stack. A node may have several
// predecessor edges when branches merged on its state; path enumeration
// during reduces explores every one.
type gssNode struct {
	state int
	edges []gssEdge
}

type gssEdge struct {
	sym  grammar.Symbol
	prev *gssNode
}

// visitEvent is one recorded Visitor call.
type visitEvent struct {
	isShift bool
	tok     Token
	rule    int
}

// glrBranch is one live top of the GSS together with its unflushed record.
type glrBranch struct {
	top    *gssNode
	record []visitEvent
}

// fork gives a branch on the given node carrying a copy of the record with
// the event appended. Records are copied, never shared, so sibling branches
// can diverge freely.
func (br glrBranch) fork(top *gssNode, event visitEvent) glrBranch {
	record := make([]visitEvent, len(br.record), len(br.record)+1)
	copy(record, br.record)
	record = append(record, event)
	return glrBranch{top: top, record: record}
}

func (br glrBranch) recordsEqual(other glrBranch) bool {
	if len(br.record) != len(other.record) {
		return false
	}
	for i := range br.record {
		if br.record[i] != other.record[i] {
			return false
		}
	}
	return true
}

// Parse runs the generalized parse over the tokens, which must not include an
// end marker; the driver supplies its own. Acceptance happens when a branch
// reduces the entry rule at end of input; failure is every branch reporting
// no applicable action, combined into an *UnexpectedTokensError (or the plain
// single-branch error when only one interpretation was live).
func (p *GLRParser) Parse(tokens []Token, v Visitor) error {
	frontier := []glrBranch{{top: &gssNode{state: p.table.Initial()}}}

	pos := 0
	for {
		a := EndToken(1, 1)
		if pos < len(tokens) {
			a = tokens[pos]
		} else if len(tokens) > 0 {
			a = endTokenAfter(tokens)
		}

		readyBranches, accepted, err := p.reducePhase(frontier, a)
		if err != nil {
			return err
		}
		if accepted != nil {
			flushRecord(v, accepted.record)
			p.notifyTrace("accept")
			return nil
		}

		frontier = p.shiftPhase(readyBranches, a)
		pos++

		// once only one interpretation survives, its history is settled and
		// can be observed
		if len(frontier) == 1 && len(frontier[0].record) > 0 {
			flushRecord(v, frontier[0].record)
			frontier[0].record = nil
		}
	}
}

// shiftTarget pairs a branch that saw a Shift action with the state it wants
// to shift into.
type shiftTarget struct {
	br     glrBranch
	target int
}

// reducePhase applies every applicable reduce on every branch until no new
// one appears, queuing branches that saw a Shift action. A branch that
// reduces the entry rule on End is the accepted parse and wins immediately;
// branch processing is in insertion order, so which branch that is does not
// depend on map iteration.
func (p *GLRParser) reducePhase(frontier []glrBranch, a Token) ([]shiftTarget, *glrBranch, error) {
	g := p.table.Grammar()
	sym := a.symbol()

	var ready []shiftTarget
	var stuckExpected [][]string

	worklist := make([]glrBranch, len(frontier))
	copy(worklist, frontier)

	for len(worklist) > 0 {
		br := worklist[0]
		worklist = worklist[1:]

		acts := p.table.Actions(br.top.state, sym)
		if len(acts) == 0 {
			stuckExpected = append(stuckExpected, p.table.ExpectedTerminals(br.top.state))
			continue
		}

		for _, act := range acts {
			switch act.Type {
			case LRShift:
				ready = append(ready, shiftTarget{br: br, target: act.State})
			case LRAccept:
				acceptedBranch := br
				return nil, &acceptedBranch, nil
			case LRReduce:
				r := g.Rule(act.Rule)
				popCount := len(r.Expansion())
				lhs := grammar.NonTerminal(r.LHS)

				bases := pathsBack(br.top, popCount)
				if len(bases) > 1 {
					p.notifyTrace("reduce %s along %d paths", g.RuleString(act.Rule), len(bases))
				}
				for _, base := range bases {
					target, ok := p.table.Goto(base.state, lhs)
					if !ok {
						continue
					}
					newTop := &gssNode{
						state: target,
						edges: []gssEdge{{sym: lhs, prev: base}},
					}
					worklist = append(worklist, br.fork(newTop, visitEvent{rule: act.Rule}))
				}
			}
		}
	}

	if len(ready) == 0 {
		if len(stuckExpected) == 1 {
			return nil, nil, &UnexpectedTokenError{Got: a, Expected: stuckExpected[0]}
		}
		return nil, nil, &UnexpectedTokensError{Got: a, Expected: stuckExpected}
	}

	return ready, nil, nil
}

// shiftPhase consumes the token on every ready branch. Branches landing on
// the same state share one GSS node (the stack is a graph, not a tree) only
// when their records agree; they then collapse into a single branch, which is
// what makes the merge unobservable from outside.
func (p *GLRParser) shiftPhase(ready []shiftTarget, a Token) []glrBranch {
	sym := a.symbol()

	merged := map[string]*gssNode{}
	var newFrontier []glrBranch

	for _, st := range ready {
		// nodes are shared only between branches with the same history, so a
		// reduce path never runs through one branch's stack under another
		// branch's record
		branch := st.br.fork(nil, visitEvent{isShift: true, tok: a})
		key := fmt.Sprintf("%d %#v", st.target, branch.record)

		node, exists := merged[key]
		if !exists {
			node = &gssNode{state: st.target}
			merged[key] = node
		}
		node.edges = append(node.edges, gssEdge{sym: sym, prev: st.br.top})
		branch.top = node

		collapsed := false
		if exists {
			for i := range newFrontier {
				if newFrontier[i].top == node && newFrontier[i].recordsEqual(branch) {
					collapsed = true
					break
				}
			}
			if collapsed {
				p.notifyTrace("merge on state %d", st.target)
			}
		}
		if !collapsed {
			newFrontier = append(newFrontier, branch)
		}
	}

	return newFrontier
}

// pathsBack returns every node reachable from n by walking exactly depth
// edges toward the stack bottom. Shared predecessors can make several paths
// land on the same node; each distinct node is returned once.
func pathsBack(n *gssNode, depth int) []*gssNode {
	if depth == 0 {
		return []*gssNode{n}
	}

	seen := map[*gssNode]bool{}
	var out []*gssNode
	for _, e := range n.edges {
		for _, base := range pathsBack(e.prev, depth-1) {
			if !seen[base] {
				seen[base] = true
				out = append(out, base)
			}
		}
	}
	return out
}

func flushRecord(v Visitor, record []visitEvent) {
	for _, ev := range record {
		if ev.isShift {
			v.Shift(ev.tok)
		} else {
			v.Reduce(ev.rule)
		}
	}
}
