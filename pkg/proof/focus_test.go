package proof

import (
	"errors"
	"slices"
	"testing"
)

func TestFocusSubProof(t *testing.T) {
	l, err := FocusSubProof(sampleProof(), "a1")
	if err != nil {
		t.Fatal(err)
	}
	h, err := Stratify(l)
	if err != nil {
		t.Fatalf("Stratify(focused): %v", err)
	}
	root := h.Root()
	if root.ID != RestID || root.Node.Type != TypeRest {
		t.Fatalf("root = %s (%s), want rest node", root.ID, root.Node.Type)
	}
	want := []string{"r0", "a1", "r2", "l1", "l2"}
	if got := ids(h.Descendants()); !slices.Equal(got, want) {
		t.Errorf("Descendants() = %v, want %v", got, want)
	}
}

func TestFocusSubProofUnknown(t *testing.T) {
	if _, err := FocusSubProof(sampleProof(), "nope"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("err = %v, want ErrUnknownNode", err)
	}
}
