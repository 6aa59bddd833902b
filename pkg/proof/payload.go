package proof

// ConstraintKind distinguishes equalities from inequalities.
type ConstraintKind string

const (
	KindEquation   ConstraintKind = "equation"
	KindInequation ConstraintKind = "inequation"
)

// Term is one coefficient-variable product of a linear constraint.
type Term struct {
	Var  string  `json:"var"`
	Coef float64 `json:"coef"`
}

// Constraint is a linear (in)equation attached to a numeric rule.
type Constraint struct {
	ID    string         `json:"id"`
	Kind  ConstraintKind `json:"kind"`
	Op    string         `json:"op,omitempty"` // comparison for inequations, e.g. "<="
	Terms []Term         `json:"terms"`
	Bound float64        `json:"bound"`
}

// Ref states how a constraint takes part in a numeric rule.
type Ref struct {
	ConstraintID string  `json:"constraintID"`
	Type         string  `json:"type"` // premise or conclusion
	Coe          float64 `json:"coe"`
}

// Payload is the numeric explanation attached to a constraint rule.
type Payload struct {
	Constraints []Constraint `json:"constraints"`
	Refs        []Ref        `json:"refs,omitempty"`
}

// Dimension is one cell of a parallel-coordinates record.
type Dimension struct {
	Value float64 `json:"value"`
	Type  string  `json:"type"`
}

// Record maps dimension names to values.
type Record map[string]Dimension

// Dimension names added to every record next to the constraint variables.
const (
	DimBound      = "bound"
	DimMultiplier = "multiplier"
)

// Records converts the payload into one record per constraint. Variables
// become dimensions typed by the constraint kind; the bound and the
// multiplier from the matching reference are added as extra dimensions.
func (p *Payload) Records() []Record {
	if p == nil {
		return nil
	}
	coe := make(map[string]Ref, len(p.Refs))
	for _, r := range p.Refs {
		coe[r.ConstraintID] = r
	}
	out := make([]Record, 0, len(p.Constraints))
	for _, c := range p.Constraints {
		rec := make(Record, len(c.Terms)+2)
		for _, t := range c.Terms {
			rec[t.Var] = Dimension{Value: t.Coef, Type: string(c.Kind)}
		}
		rec[DimBound] = Dimension{Value: c.Bound, Type: string(c.Kind)}
		if r, ok := coe[c.ID]; ok {
			rec[DimMultiplier] = Dimension{Value: r.Coe, Type: r.Type}
		}
		out = append(out, rec)
	}
	return out
}

// Widget is the parallel-coordinates chart fed with constraint records.
type Widget interface {
	Update(records []Record) error
	Selection() []Record
	Destroy()
}
