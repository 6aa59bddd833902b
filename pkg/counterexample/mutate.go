package counterexample

import (
	"fmt"
	"slices"
	"strings"
)

// HideTask hides the given nodes.
func HideTask(d *Data, ids []string) Task {
	return visibilityTask(d, "hide", ids, false)
}

// ShowTask shows the given nodes.
func ShowTask(d *Data, ids []string) Task {
	return visibilityTask(d, "show", ids, true)
}

func visibilityTask(d *Data, name string, ids []string, visible bool) Task {
	ids = slices.Clone(ids)
	prev := make(map[string]bool, len(ids))
	return Task{
		Name: name + " " + strings.Join(ids, ","),
		Do: func() error {
			for _, id := range ids {
				if _, ok := d.nodes[id]; !ok {
					return fmt.Errorf("%w: %q", ErrUnknownNode, id)
				}
			}
			for _, id := range ids {
				n := d.nodes[id]
				prev[id] = n.Visible
				n.Visible = visible
			}
			return nil
		},
		Undo: func() error {
			for id, v := range prev {
				d.nodes[id].Visible = v
			}
			return nil
		},
	}
}

// GroupTask groups members under a new group labelled label.
func GroupTask(d *Data, label string, members []string) Task {
	members = slices.Clone(members)
	var created *Group
	return Task{
		Name: "group " + label,
		Do: func() error {
			if created != nil {
				return d.addGroupWithID(*created)
			}
			g, err := d.AddGroup(label, members)
			if err != nil {
				return err
			}
			snap := *g
			snap.Leaves = slices.Clone(g.Leaves)
			snap.Groups = slices.Clone(g.Groups)
			created = &snap
			return nil
		},
		Undo: func() error {
			_, err := d.RemoveGroup(created.ID)
			return err
		},
	}
}

// UngroupTask dissolves group id.
func UngroupTask(d *Data, id string) Task {
	var removed *Group
	return Task{
		Name: "ungroup " + id,
		Do: func() error {
			g, err := d.RemoveGroup(id)
			if err != nil {
				return err
			}
			removed = g
			return nil
		},
		Undo: func() error {
			d.restoreGroup(*removed)
			return nil
		},
	}
}

// ToggleGroupTask expands or collapses group id. Descendant groups with the
// same element follow the new state.
func ToggleGroupTask(d *Data, id string) Task {
	prev := map[string]bool{}
	return Task{
		Name: "toggle " + id,
		Do: func() error {
			g, ok := d.groups[id]
			if !ok {
				return fmt.Errorf("%w: %q", ErrUnknownGroup, id)
			}
			clear(prev)
			prev[id] = g.Expanded
			g.Expanded = !g.Expanded
			for _, sub := range d.Subgroups(id) {
				sg := d.groups[sub]
				if sg.Element != g.Element {
					continue
				}
				prev[sub] = sg.Expanded
				sg.Expanded = g.Expanded
			}
			return nil
		},
		Undo: func() error {
			for gid, v := range prev {
				if g, ok := d.groups[gid]; ok {
					g.Expanded = v
				}
			}
			return nil
		},
	}
}

// ShowReachableHiddenTask shows every hidden node reachable from id through
// hidden nodes in snap.
func ShowReachableHiddenTask(d *Data, snap *Snapshot, id string) Task {
	return ShowTask(d, snap.Search.SearchReachableHiddenNodes(id))
}
