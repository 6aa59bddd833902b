package proof

import "testing"

func TestPayloadRecords(t *testing.T) {
	p := &Payload{
		Constraints: []Constraint{
			{ID: "c1", Kind: KindEquation, Terms: []Term{{Var: "x", Coef: 1}, {Var: "y", Coef: -2}}, Bound: 4},
			{ID: "c2", Kind: KindInequation, Op: "<=", Terms: []Term{{Var: "x", Coef: 3}}, Bound: 1},
		},
		Refs: []Ref{{ConstraintID: "c1", Type: "premise", Coe: 2}},
	}
	recs := p.Records()
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if got := recs[0]["y"]; got.Value != -2 || got.Type != "equation" {
		t.Errorf("recs[0][y] = %+v", got)
	}
	if got := recs[0][DimMultiplier]; got.Value != 2 || got.Type != "premise" {
		t.Errorf("multiplier = %+v", got)
	}
	if _, ok := recs[1][DimMultiplier]; ok {
		t.Error("c2 has no reference and should carry no multiplier")
	}
	if got := recs[1][DimBound]; got.Value != 1 || got.Type != "inequation" {
		t.Errorf("bound = %+v", got)
	}
}

func TestPayloadRecordsNil(t *testing.T) {
	var p *Payload
	if p.Records() != nil {
		t.Error("nil payload should yield no records")
	}
}
