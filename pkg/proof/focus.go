package proof

import "fmt"

// FocusSubProof returns an edge list holding only the sub-proof rooted at
// id. The sub-proof hangs below a synthetic rest-of-proof node, which
// becomes the new root.
func FocusSubProof(l EdgeList, id string) (EdgeList, error) {
	h, err := Stratify(l)
	if err != nil {
		return EdgeList{}, err
	}
	top, ok := h.Node(id)
	if !ok {
		return EdgeList{}, fmt.Errorf("focus %q: %w", id, ErrUnknownNode)
	}

	out := NewEdgeList()
	out.Add(Node{
		ID:      RestID,
		Type:    TypeRest,
		Element: "Rest of the proof",
		Labels:  Labels{Default: "Rest of the proof"},
	}, RestID, "")
	for _, n := range h.Subtree(top.ID) {
		target := n.Parent
		if n.ID == top.ID {
			target = RestID
		}
		out.Add(n.Node, n.EdgeID, target)
	}
	return out, nil
}
