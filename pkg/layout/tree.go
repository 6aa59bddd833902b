package layout

import "github.com/matzehuels/prooftower/pkg/proof"

// tidy is the working record of the tidy tree algorithm.
type tidy struct {
	node     *proof.HNode
	parent   *tidy
	children []*tidy

	ancestor        *tidy // a
	defaultAncestor *tidy // A
	thread          *tidy // t

	prelim float64 // z
	mod    float64 // m
	change float64 // c
	shift  float64 // s
	number int     // i, index among siblings
	x      float64
}

func newTidyTree(h *proof.Hierarchy) *tidy {
	root := &tidy{node: h.Root()}
	root.ancestor = root
	stack := []*tidy{root}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		kids := v.node.Children
		if len(kids) == 0 {
			continue
		}
		v.children = make([]*tidy, len(kids))
		for i, id := range kids {
			cn, _ := h.Node(id)
			c := &tidy{node: cn, parent: v, number: i}
			c.ancestor = c
			v.children[i] = c
			stack = append(stack, c)
		}
	}
	virtual := &tidy{children: []*tidy{root}}
	virtual.ancestor = virtual
	root.parent = virtual
	return root
}

func (v *tidy) eachAfter(fn func(*tidy)) {
	for _, c := range v.children {
		c.eachAfter(fn)
	}
	fn(v)
}

func (v *tidy) eachBefore(fn func(*tidy)) {
	fn(v)
	for _, c := range v.children {
		c.eachBefore(fn)
	}
}

func nextLeft(v *tidy) *tidy {
	if len(v.children) > 0 {
		return v.children[0]
	}
	return v.thread
}

func nextRight(v *tidy) *tidy {
	if len(v.children) > 0 {
		return v.children[len(v.children)-1]
	}
	return v.thread
}

func moveSubtree(wm, wp *tidy, shift float64) {
	change := shift / float64(wp.number-wm.number)
	wp.change -= change
	wp.shift += shift
	wm.change += change
	wp.prelim += shift
	wp.mod += shift
}

func executeShifts(v *tidy) {
	var shift, change float64
	for i := len(v.children) - 1; i >= 0; i-- {
		w := v.children[i]
		w.prelim += shift
		w.mod += shift
		change += w.change
		shift += w.shift + change
	}
}

func nextAncestor(vim, v, ancestor *tidy) *tidy {
	if vim.ancestor.parent == v.parent {
		return vim.ancestor
	}
	return ancestor
}

type separation func(a, b *proof.HNode) float64

// walker holds the separation function shared by both walks.
type walker struct{ sep separation }

func (k walker) firstWalk(v *tidy) {
	siblings := v.parent.children
	var w *tidy
	if v.number > 0 {
		w = siblings[v.number-1]
	}
	if len(v.children) > 0 {
		executeShifts(v)
		mid := (v.children[0].prelim + v.children[len(v.children)-1].prelim) / 2
		if w != nil {
			v.prelim = w.prelim + k.sep(v.node, w.node)
			v.mod = v.prelim - mid
		} else {
			v.prelim = mid
		}
	} else if w != nil {
		v.prelim = w.prelim + k.sep(v.node, w.node)
	}
	anc := v.parent.defaultAncestor
	if anc == nil {
		anc = siblings[0]
	}
	v.parent.defaultAncestor = k.apportion(v, w, anc)
}

func secondWalk(v *tidy) {
	v.x = v.prelim + v.parent.mod
	v.mod += v.parent.mod
}

func (k walker) apportion(v, w, ancestor *tidy) *tidy {
	if w == nil {
		return ancestor
	}
	vip, vop := v, v
	vim := w
	vom := v.parent.children[0]
	sip, sop := vip.mod, vop.mod
	sim, som := vim.mod, vom.mod
	for {
		vim = nextRight(vim)
		vip = nextLeft(vip)
		if vim == nil || vip == nil {
			break
		}
		vom = nextLeft(vom)
		vop = nextRight(vop)
		vop.ancestor = v
		shift := vim.prelim + sim - vip.prelim - sip + k.sep(vim.node, vip.node)
		if shift > 0 {
			moveSubtree(nextAncestor(vim, v, ancestor), v, shift)
			sip += shift
			sop += shift
		}
		sim += vim.mod
		sip += vip.mod
		som += vom.mod
		sop += vop.mod
	}
	if vim != nil && nextRight(vop) == nil {
		vop.thread = vim
		vop.mod += sim - sop
	}
	if vip != nil && nextLeft(vom) == nil {
		vom.thread = vip
		vom.mod += sip - som
		ancestor = v
	}
	return ancestor
}

// Tree positions the visible nodes of h as a tidy tree with the root at
// the top. Sizes must already be computed.
func Tree(h *proof.Hierarchy, opts Options) Bounds {
	opts = opts.WithDefaults()
	nodes := h.Descendants()
	var maxW, maxH float64
	for _, n := range nodes {
		maxW = max(maxW, n.Width)
		maxH = max(maxH, n.Height)
	}
	if maxW == 0 {
		maxW = 1
	}
	k := walker{sep: func(a, b *proof.HNode) float64 {
		return (a.Width+b.Width)/2/maxW + 0.03
	}}

	root := newTidyTree(h)
	root.eachAfter(k.firstWalk)
	root.parent.mod = -root.prelim
	root.eachBefore(secondWalk)

	if !opts.AllowOverlap {
		dy := maxH + opts.LevelGap
		root.eachBefore(func(v *tidy) {
			v.node.X = v.x * maxW
			v.node.Y = float64(v.node.Depth-h.Root().Depth) * dy
		})
		return bounds(h)
	}

	// Fit into the viewport.
	left, right, bottom := root, root, root
	root.eachBefore(func(v *tidy) {
		if v.x < left.x {
			left = v
		}
		if v.x > right.x {
			right = v
		}
		if v.node.Depth > bottom.node.Depth {
			bottom = v
		}
	})
	s := 1.0
	if left != right {
		s = k.sep(left.node, right.node) / 2
	}
	tx := s - left.x
	kx := opts.Width / (right.x + s + tx)
	depth := float64(bottom.node.Depth - h.Root().Depth)
	if depth == 0 {
		depth = 1
	}
	ky := opts.Height / depth
	root.eachBefore(func(v *tidy) {
		v.node.X = (v.x + tx) * kx
		v.node.Y = float64(v.node.Depth-h.Root().Depth) * ky
	})
	return bounds(h)
}
