package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/logicflow/pkg/domain"
)

var (
	nodeLine   = regexp.MustCompile(`(?i)^(` + keywords(domain.Kinds) + `):\s*(.+)$`)
	branchLine = regexp.MustCompile(`(?i)^(YES|NO)\s*->\s*(.+)$`)
)

func keywords(kinds []domain.NodeKind) string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = k.Keyword()
	}
	return strings.Join(out, "|")
}

// Anchor titles used when Mode.SynthesizeAnchors is set.
const (
	StartTitle = "Start"
	EndTitle   = "End"
)

// Mode selects between the grammar variants of the notation.
// The zero value is the strict variant without anchors.
type Mode struct {
	// SynthesizeAnchors wraps the parsed nodes in a Start and an End node,
	// connected unconditionally to the first and last declared node.
	SynthesizeAnchors bool `yaml:"synthesize_anchors" mapstructure:"synthesize_anchors"`

	// FallbackLineAsProcess turns unrecognized lines into Process nodes,
	// split into title and description like any node label. When unset, and
	// for lines whose title would be empty, they are reported and skipped.
	FallbackLineAsProcess bool `yaml:"fallback_line_as_process" mapstructure:"fallback_line_as_process"`

	// NewID generates node ids. Nil uses a per-parse counter (node_1, node_2, ...).
	NewID func() string `yaml:"-" mapstructure:"-"`
}

// Result is the outcome of a parse. Parsing never fails; everything the
// grammar could not make sense of is listed in Diagnostics.
type Result struct {
	Graph       *domain.Graph       `json:"graph"`
	Diagnostics []domain.Diagnostic `json:"diagnostics,omitempty"`
}

// Parser converts the line notation into a graph.
type Parser struct {
	mode Mode
}

// NewParser creates a new parser instance.
func NewParser(mode Mode) *Parser {
	return &Parser{mode: mode}
}

// Parse is shorthand for NewParser(mode).Parse(text).
func Parse(text string, mode Mode) *Result {
	return NewParser(mode).Parse(text)
}

type branchRef struct {
	target string
	line   int
}

// declaration is a node line as read, before ids and edges exist.
type declaration struct {
	kind  domain.NodeKind
	title string
	desc  string
	line  int
	yes   *branchRef
	no    *branchRef
}

type scanState int

const (
	stateNone scanState = iota
	stateAwaitingBranches
)

// scanner is the line state machine. In stateAwaitingBranches, decision
// indexes the open Decision in decls.
type scanner struct {
	mode     Mode
	state    scanState
	decision int
	decls    []declaration
	diags    []domain.Diagnostic
}

// Parse runs the three stages: scan lines, resolve titles, emit edges.
func (p *Parser) Parse(text string) *Result {
	s := &scanner{mode: p.mode}
	for i, raw := range strings.Split(text, "\n") {
		s.feed(i+1, strings.TrimSpace(raw))
	}

	g := &domain.Graph{Nodes: []domain.Node{}, Edges: []domain.Edge{}}
	if len(s.decls) == 0 {
		return &Result{Graph: g, Diagnostics: s.diags}
	}

	newID := p.mode.NewID
	if newID == nil {
		newID = counter()
	}

	var start, end string
	if p.mode.SynthesizeAnchors {
		start = newID()
		g.Nodes = append(g.Nodes, domain.Node{ID: start, Kind: domain.KindStart, Title: StartTitle})
	}
	ids := make([]string, len(s.decls))
	for i, d := range s.decls {
		ids[i] = newID()
		g.Nodes = append(g.Nodes, domain.Node{ID: ids[i], Kind: d.kind, Title: d.title, Description: d.desc})
	}
	if p.mode.SynthesizeAnchors {
		end = newID()
		g.Nodes = append(g.Nodes, domain.Node{ID: end, Kind: domain.KindEnd, Title: EndTitle})
	}

	byTitle := s.resolveTitles(ids)

	if start != "" {
		g.Edges = append(g.Edges, domain.Edge{From: start, To: ids[0]})
	}
	for i, d := range s.decls {
		if d.kind == domain.KindDecision {
			for _, b := range []struct {
				branch domain.Branch
				ref    *branchRef
			}{{domain.BranchYes, d.yes}, {domain.BranchNo, d.no}} {
				if b.ref == nil {
					continue
				}
				to, ok := byTitle[b.ref.target]
				if !ok {
					s.report(domain.DiagDanglingBranchTarget, b.ref.line,
						"%s branch of %q targets unknown node %q", b.branch.Keyword(), d.title, b.ref.target)
					continue
				}
				g.Edges = append(g.Edges, domain.Edge{From: ids[i], To: to, Branch: b.branch})
			}
			continue
		}
		if d.kind == domain.KindOutput || i+1 >= len(s.decls) {
			continue
		}
		if s.decls[i+1].kind != domain.KindOutput {
			g.Edges = append(g.Edges, domain.Edge{From: ids[i], To: ids[i+1]})
		}
	}
	if end != "" {
		g.Edges = append(g.Edges, domain.Edge{From: ids[len(ids)-1], To: end})
	}

	return &Result{Graph: g, Diagnostics: s.diags}
}

func (s *scanner) feed(line int, text string) {
	if text == "" {
		return
	}

	if m := nodeLine.FindStringSubmatch(text); m != nil {
		kind, err := domain.ParseNodeKind(m[1])
		title, desc := splitLabel(m[2])
		if err == nil && title != "" {
			s.open(declaration{kind: kind, title: title, desc: desc, line: line})
			return
		}
		// A node line without a title still ends the open decision.
		s.state = stateNone
	}

	if s.state == stateAwaitingBranches {
		if m := branchLine.FindStringSubmatch(text); m != nil {
			s.attach(line, m[1], strings.TrimSpace(m[2]))
			return
		}
	}

	if s.mode.FallbackLineAsProcess {
		if title, desc := splitLabel(text); title != "" {
			s.open(declaration{kind: domain.KindProcess, title: title, desc: desc, line: line})
			return
		}
	}
	s.report(domain.DiagParseAmbiguity, line, "unrecognized line %q ignored", text)
}

func (s *scanner) open(d declaration) {
	s.decls = append(s.decls, d)
	if d.kind == domain.KindDecision {
		s.state = stateAwaitingBranches
		s.decision = len(s.decls) - 1
		return
	}
	s.state = stateNone
}

func (s *scanner) attach(line int, keyword, target string) {
	d := &s.decls[s.decision]
	ref := &branchRef{target: target, line: line}
	slot := &d.yes
	if strings.EqualFold(keyword, "no") {
		slot = &d.no
	}
	if *slot != nil {
		s.report(domain.DiagDuplicateBranch, line,
			"%s branch of %q redeclared (was line %d), last one wins", strings.ToUpper(keyword), d.title, (*slot).line)
	}
	*slot = ref
}

// resolveTitles builds the title lookup used by branch targets.
// Duplicates are reported; the last declaration wins.
func (s *scanner) resolveTitles(ids []string) map[string]string {
	byTitle := make(map[string]string, len(s.decls))
	firstLine := make(map[string]int, len(s.decls))
	for i, d := range s.decls {
		if prev, ok := firstLine[d.title]; ok {
			s.report(domain.DiagDuplicateTitle, d.line,
				"title %q already declared on line %d, branches resolve to line %d", d.title, prev, d.line)
		} else {
			firstLine[d.title] = d.line
		}
		byTitle[d.title] = ids[i]
	}
	return byTitle
}

func (s *scanner) report(kind domain.DiagnosticKind, line int, format string, args ...any) {
	s.diags = append(s.diags, domain.Diagnostic{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)})
}

// splitLabel splits "title | description" on the first pipe.
// A description equal to the title is dropped.
func splitLabel(rest string) (title, desc string) {
	title, desc, _ = strings.Cut(rest, "|")
	title = strings.TrimSpace(title)
	desc = strings.TrimSpace(desc)
	if desc == title {
		desc = ""
	}
	return title, desc
}

func counter() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("node_%d", n)
	}
}
