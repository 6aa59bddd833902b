package io

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/matzehuels/prooftower/pkg/dag"
	"github.com/matzehuels/prooftower/pkg/errors"
	"github.com/matzehuels/prooftower/pkg/proof"
)

// RootEdgeID is the id given to the anchor edge of the conclusion. A trace
// that already uses it gets the first free "root_n" instead.
const RootEdgeID = "root"

// Data keys of proof trace nodes.
const (
	keyType     = "type"
	keyElement  = "element"
	keyNL       = "nLElement"
	keySubProof = "subProof"
	keyRule     = "rule"
	keyOp       = "op"
)

// ReadProof decodes a proof trace from r.
//
// Nodes keep their document order; premises of a rule keep the order of
// their edges. ReadProof does not close r.
func ReadProof(r io.Reader) (proof.EdgeList, error) {
	g, err := decodeGraph(xml.NewDecoder(r))
	if err != nil {
		return proof.EdgeList{}, errors.Wrap(errors.ErrCodeInvalidTrace, err, "decode proof trace")
	}
	if g == nil {
		return proof.EdgeList{}, errors.New(errors.ErrCodeInvalidTrace, "proof trace has no <graph> element")
	}

	d, err := traceDAG(g)
	if err != nil {
		return proof.EdgeList{}, err
	}
	roots := d.Sinks()
	if len(roots) != 1 {
		return proof.EdgeList{}, errors.New(errors.ErrCodeInvalidTrace, "proof trace needs exactly one conclusion, found %d", len(roots))
	}

	nodes := make(map[string]proof.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		pn, err := proofNode(n)
		if err != nil {
			return proof.EdgeList{}, err
		}
		nodes[n.ID] = pn
	}

	ids := newEdgeIDs(g.Edges)
	l := proof.NewEdgeList()
	l.Add(nodes[roots[0].ID], ids.mint(RootEdgeID), "")
	for i, e := range g.Edges {
		id := e.ID
		if id == "" {
			id = ids.mint("e" + strconv.Itoa(i))
		}
		l.Add(nodes[e.Source], id, e.Target)
	}
	return l, nil
}

// edgeIDs hands out edge ids that no trace edge uses.
type edgeIDs map[string]bool

func newEdgeIDs(edges []xmlEdge) edgeIDs {
	used := make(edgeIDs, len(edges)+1)
	for _, e := range edges {
		if e.ID != "" {
			used[e.ID] = true
		}
	}
	return used
}

// mint returns base, or base with the first free "_n" suffix.
func (u edgeIDs) mint(base string) string {
	id := base
	for n := 1; u[id]; n++ {
		id = base + "_" + strconv.Itoa(n)
	}
	u[id] = true
	return id
}

// traceDAG checks the graph shape of a trace.
func traceDAG(g *xmlGraph) (*dag.DAG, error) {
	d := dag.New(nil)
	for _, n := range g.Nodes {
		if proof.IsSyntheticID(n.ID) {
			return nil, errors.New(errors.ErrCodeInvalidTrace, "node id %q is reserved for synthetic nodes", n.ID)
		}
		if err := d.AddNode(dag.Node{ID: n.ID, Kind: value(n.Data, keyType)}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidTrace, err, "node %q", n.ID)
		}
	}
	seen := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		if e.ID != "" {
			if proof.IsSyntheticID(e.ID) {
				return nil, errors.New(errors.ErrCodeInvalidTrace, "edge id %q is reserved for synthetic edges", e.ID)
			}
			if seen[e.ID] {
				return nil, errors.New(errors.ErrCodeInvalidTrace, "duplicate edge id %q", e.ID)
			}
			seen[e.ID] = true
		}
		if err := d.AddEdge(dag.Edge{ID: e.ID, From: e.Source, To: e.Target}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidTrace, err, "edge %s->%s", e.Source, e.Target)
		}
		if d.OutDegree(e.Source) > 1 {
			return nil, errors.New(errors.ErrCodeInvalidTrace, "node %q supports more than one node", e.Source)
		}
	}
	if err := d.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTrace, err, "proof trace")
	}
	return d, nil
}

func proofNode(n xmlNode) (proof.Node, error) {
	typ := proof.NodeType(value(n.Data, keyType))
	switch typ {
	case proof.TypeAxiom, proof.TypeRule, proof.TypeKRule, proof.TypeCDRule:
	case "":
		typ = proof.TypeAxiom
	default:
		return proof.Node{}, errors.New(errors.ErrCodeInvalidTrace, "node %q: unsupported type %q", n.ID, typ)
	}
	el := value(n.Data, keyElement)
	pn := proof.Node{
		ID:       n.ID,
		Type:     typ,
		Element:  el,
		Labels:   proof.Labels{Default: el, NaturalLanguage: value(n.Data, keyNL)},
		SubProof: value(n.Data, keySubProof),
		Rule:     value(n.Data, keyRule),
	}
	if op, ok := find(n.Data, keyOp); ok {
		pn.Data = payload(op)
	}
	return pn, nil
}

func payload(op xmlData) *proof.Payload {
	p := &proof.Payload{}
	add := func(cs []xmlConstraint, kind proof.ConstraintKind) {
		for _, c := range cs {
			pc := proof.Constraint{ID: c.ID, Kind: kind, Op: c.Op, Bound: c.Bound}
			for _, t := range c.Terms {
				pc.Terms = append(pc.Terms, proof.Term{Var: t.Var, Coef: t.Coef})
			}
			p.Constraints = append(p.Constraints, pc)
		}
	}
	add(op.Equations, proof.KindEquation)
	add(op.Inequations, proof.KindInequation)
	for _, r := range op.Refs {
		p.Refs = append(p.Refs, proof.Ref{ConstraintID: r.ConstraintID, Type: r.Type, Coe: r.Coe})
	}
	return p
}

// ImportProof reads the proof trace at path.
func ImportProof(path string) (proof.EdgeList, error) {
	f, err := os.Open(path)
	if err != nil {
		return proof.EdgeList{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()
	return ReadProof(f)
}

// WriteProof encodes l as a proof trace. Synthetic nodes are written like
// any other node, so a magic view can be saved but not re-read.
func WriteProof(w io.Writer, l proof.EdgeList) error {
	g := xmlGraph{ID: "proof"}
	for _, e := range l.Edges {
		n := l.Nodes[e.Source]
		g.Nodes = append(g.Nodes, encodeNode(n))
		if !e.IsAnchor() {
			g.Edges = append(g.Edges, xmlEdge{ID: e.ID, Source: e.Source, Target: e.Target})
		}
	}
	out := struct {
		XMLName xml.Name `xml:"graphml"`
		Graph   xmlGraph `xml:"graph"`
	}{Graph: g}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode proof trace: %w", err)
	}
	return nil
}

func encodeNode(n proof.Node) xmlNode {
	x := xmlNode{ID: n.ID}
	put := func(key, v string) {
		if v != "" {
			x.Data = append(x.Data, xmlData{Key: key, Text: v})
		}
	}
	put(keyType, string(n.Type))
	put(keyElement, n.Element)
	put(keyNL, n.Labels.NaturalLanguage)
	put(keySubProof, n.SubProof)
	put(keyRule, n.Rule)
	if n.Data != nil {
		op := xmlData{Key: keyOp}
		for _, c := range n.Data.Constraints {
			xc := xmlConstraint{ID: c.ID, Op: c.Op, Bound: c.Bound}
			for _, t := range c.Terms {
				xc.Terms = append(xc.Terms, xmlTerm{Var: t.Var, Coef: t.Coef})
			}
			if c.Kind == proof.KindEquation {
				op.Equations = append(op.Equations, xc)
			} else {
				op.Inequations = append(op.Inequations, xc)
			}
		}
		for _, r := range n.Data.Refs {
			op.Refs = append(op.Refs, xmlRef{ConstraintID: r.ConstraintID, Type: r.Type, Coe: r.Coe})
		}
		x.Data = append(x.Data, op)
	}
	return x
}
