package layout

// walker carries the per-node state of the Buchheim/Jünger/Leipert
// improvement of Walker's algorithm. Breadth positions are computed in
// sibling units and written to out.Y by secondWalk.
type walker struct {
	out      *Node
	parent   *walker
	children []*walker
	index    int // position among siblings

	ancestor   *walker // a
	defaultAnc *walker // A
	thread     *walker // t

	prelim float64 // z
	mod    float64 // m
	change float64 // c
	shift  float64 // s
}

func (w *walker) eachAfter(fn func(*walker)) {
	for _, child := range w.children {
		child.eachAfter(fn)
	}
	fn(w)
}

func (w *walker) eachBefore(fn func(*walker)) {
	fn(w)
	for _, child := range w.children {
		child.eachBefore(fn)
	}
}

// separation is 1 between siblings and 2 between cousins
func separation(a, b *walker) float64 {
	if a.parent == b.parent {
		return 1
	}
	return 2
}

func nextLeft(v *walker) *walker {
	if len(v.children) > 0 {
		return v.children[0]
	}
	return v.thread
}

func nextRight(v *walker) *walker {
	if len(v.children) > 0 {
		return v.children[len(v.children)-1]
	}
	return v.thread
}

func nextAncestor(vim, v, ancestor *walker) *walker {
	if vim.ancestor.parent == v.parent {
		return vim.ancestor
	}
	return ancestor
}

func moveSubtree(wm, wp *walker, shift float64) {
	change := shift / float64(wp.index-wm.index)
	wp.change -= change
	wp.shift += shift
	wm.change += change
	wp.prelim += shift
	wp.mod += shift
}

func executeShifts(v *walker) {
	var shift, change float64
	for i := len(v.children) - 1; i >= 0; i-- {
		w := v.children[i]
		w.prelim += shift
		w.mod += shift
		change += w.change
		shift += w.shift + change
	}
}

func firstWalk(v *walker) {
	siblings := v.parent.children
	var w *walker
	if v.index > 0 {
		w = siblings[v.index-1]
	}

	if len(v.children) > 0 {
		executeShifts(v)
		midpoint := (v.children[0].prelim + v.children[len(v.children)-1].prelim) / 2
		if w != nil {
			v.prelim = w.prelim + separation(v, w)
			v.mod = v.prelim - midpoint
		} else {
			v.prelim = midpoint
		}
	} else if w != nil {
		v.prelim = w.prelim + separation(v, w)
	}

	ancestor := v.parent.defaultAnc
	if ancestor == nil {
		ancestor = siblings[0]
	}
	v.parent.defaultAnc = apportion(v, w, ancestor)
}

func secondWalk(v *walker) {
	v.out.Y = v.prelim + v.parent.mod
	v.mod += v.parent.mod
}

// apportion pushes v's subtree away from its left siblings' subtrees until
// the contours are at least one separation apart
func apportion(v, w, ancestor *walker) *walker {
	if w == nil {
		return ancestor
	}

	vip, vop := v, v
	vim := w
	vom := vip.parent.children[0]
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

		shift := vim.prelim + sim - vip.prelim - sip + separation(vim, vip)
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
