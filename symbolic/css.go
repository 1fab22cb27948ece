package symbolic

import (
	"math/big"

	"github.com/dalzilio/rudd"
)

// CSS is a coloured state set: a BDD predicate over the state, parameter and
// hybrid-variable bits of the owning Context. Values are immutable and
// belong to exactly one Context; passing a CSS to a method of a different
// Context is a programming error (checked where practical).
type CSS struct {
	ctx  *Context
	node rudd.Node
}

// IncompatibleContext is returned when an operation mixes CSS values or
// user-supplied predicates from different symbolic contexts.
type IncompatibleContext struct{}

func (IncompatibleContext) Error() string {
	return "symbolic: CSS values belong to different contexts"
}

func (c *Context) wrap(n rudd.Node) CSS { return CSS{ctx: c, node: n} }

// BelongsTo reports whether the CSS was produced by ctx, letting a caller
// check layout compatibility of a user-supplied wild-card predicate before
// handing it to the evaluator.
func (a CSS) BelongsTo(ctx *Context) bool { return a.ctx == ctx }

func (a CSS) sameCtx(b CSS) error {
	if a.ctx != b.ctx {
		return IncompatibleContext{}
	}
	return nil
}

// Empty returns the empty CSS.
func (c *Context) Empty() CSS { return c.wrap(c.bdd.False()) }

// Full returns the CSS containing every tuple (the unit set).
func (c *Context) Full() CSS { return c.wrap(c.unit) }

// Union returns a ∪ b.
func (a CSS) Union(b CSS) (CSS, error) {
	if err := a.sameCtx(b); err != nil {
		return CSS{}, err
	}
	return a.ctx.wrap(a.ctx.bdd.Or(a.node, b.node)), nil
}

// Intersect returns a ∩ b.
func (a CSS) Intersect(b CSS) (CSS, error) {
	if err := a.sameCtx(b); err != nil {
		return CSS{}, err
	}
	return a.ctx.wrap(a.ctx.bdd.And(a.node, b.node)), nil
}

// Complement returns U \ a, where U is the context's unit set: the CSS
// complement is always taken relative to the reachable (state, colour, ...)
// universe, never the raw BDD universe.
func (a CSS) Complement() CSS {
	return a.ctx.wrap(a.ctx.bdd.And(a.ctx.unit, a.ctx.bdd.Not(a.node)))
}

// Equal reports semantic equality: the BDD library canonicalises nodes, so
// this is a pointer/identity comparison under the hood.
func (a CSS) Equal(b CSS) bool {
	return a.ctx == b.ctx && a.ctx.bdd.Equal(a.node, b.node)
}

// IsEmpty reports whether the CSS denotes no tuples at all.
func (a CSS) IsEmpty() bool {
	return a.ctx.bdd.Equal(a.node, a.ctx.bdd.False())
}

// Cardinality returns the number of distinct states, distinct colours, and
// distinct (state, colour) pairs satisfying the CSS, projecting out hybrid
// bits first since they are not part of the (state, colour) universe proper.
func (a CSS) Cardinality() (states, colours, pairs *big.Int) {
	c := a.ctx
	onlyStateColour := c.wrap(a.node)
	for g := 0; g < c.k; g++ {
		onlyStateColour = onlyStateColour.projectOutVars(c.hybridVars[g])
	}
	stateSet := onlyStateColour
	for _, pv := range c.paramVars {
		stateSet = stateSet.projectOutVars([]int{pv})
	}
	colourSet := onlyStateColour
	for _, sv := range c.stateVars {
		colourSet = colourSet.projectOutVars([]int{sv})
	}
	// Satcount counts assignments over every variable of the manager; shift
	// out the bits each projected set no longer depends on.
	total := c.n*(2+c.k) + c.p
	states = new(big.Int).Rsh(c.bdd.Satcount(stateSet.node), uint(total-c.n))
	colours = new(big.Int).Rsh(c.bdd.Satcount(colourSet.node), uint(total-c.p))
	pairs = new(big.Int).Rsh(c.bdd.Satcount(onlyStateColour.node), uint(total-c.n-c.p))
	return states, colours, pairs
}

func (a CSS) projectOutVars(vars []int) CSS {
	set := a.ctx.makeset(vars)
	return a.ctx.wrap(a.ctx.bdd.Exist(a.node, set))
}

// EncodeProposition returns the CSS restricting network variable v to true,
// intersected with the unit set.
func (c *Context) EncodeProposition(v int) CSS {
	return c.wrap(c.bdd.And(c.unit, c.bdd.Ithvar(c.stateVars[v])))
}

// EncodeHybridVar returns the CSS asserting that the current state equals
// the state recorded in hybrid group idx (a bitwise equality over all N
// network variables), intersected with the unit set.
func (c *Context) EncodeHybridVar(idx int) CSS {
	terms := make([]rudd.Node, c.n)
	for i := 0; i < c.n; i++ {
		terms[i] = c.bdd.Equiv(c.bdd.Ithvar(c.stateVars[i]), c.bdd.Ithvar(c.hybridVars[idx][i]))
	}
	cmp := c.bdd.And(terms...)
	return c.wrap(c.bdd.And(c.unit, cmp))
}

// Substitute implements the Bind operation: it pins hybrid group idx of x to
// the current state and then projects that group out, i.e. it computes
// { (s,c,h) | (s,c,h[idx -> s]) in x }; the result does not constrain
// group idx.
func (c *Context) Substitute(x CSS, idx int) (CSS, error) {
	if err := x.sameCtx(c.wrap(nil)); err != nil {
		return CSS{}, err
	}
	cmp := c.EncodeHybridVar(idx)
	intersected := c.bdd.And(x.node, cmp.node)
	set := c.makeset(c.hybridVars[idx])
	return c.wrap(c.bdd.Exist(intersected, set)), nil
}

// Jump renames hybrid group idx into the state group, discarding the prior
// state entirely: it computes { (s,c,h) | exists s0. (s0,c,h) in x and
// s0 = h[idx] }, i.e. evaluation continues as though the current state were
// h[idx].
func (c *Context) Jump(x CSS, idx int) (CSS, error) {
	if err := x.sameCtx(c.wrap(nil)); err != nil {
		return CSS{}, err
	}
	cmp := c.EncodeHybridVar(idx)
	intersected := c.bdd.And(x.node, cmp.node)
	set := c.makeset(c.stateVars)
	return c.wrap(c.bdd.Exist(intersected, set)), nil
}

// ProjectOut existentially quantifies hybrid group idx out of x, used for
// the Exists hybrid quantifier.
func (c *Context) ProjectOut(x CSS, idx int) (CSS, error) {
	if err := x.sameCtx(c.wrap(nil)); err != nil {
		return CSS{}, err
	}
	return x.projectOutVars(c.hybridVars[idx]), nil
}

// TransitionPreimage computes EX(x): the set of (s,c) with some asynchronous
// successor in x, unioned with the self-loop patch that lets a steady state
// (no real successor) satisfy EX(x) exactly when it satisfies x itself. Under
// this self-loop convention a steady state satisfies AX(phi) exactly when it
// satisfies phi, which fixed-point / attractor formulas rely on.
func (c *Context) TransitionPreimage(x CSS) (CSS, error) {
	if err := x.sameCtx(c.wrap(nil)); err != nil {
		return CSS{}, err
	}
	acc := c.bdd.False()
	for i := 0; i < c.n; i++ {
		acc = c.bdd.Or(acc, c.preimageVar(i, x.node))
	}
	selfLoopHit := c.bdd.And(c.selfLoop, x.node)
	return c.wrap(c.bdd.And(c.unit, c.bdd.Or(acc, selfLoopHit))), nil
}

// preimageVar computes the predecessors of x reachable by flipping variable
// i specifically: it shifts x onto the next-state bits, conjoins with T_i,
// and projects the next-state bits back out.
func (c *Context) preimageVar(i int, x rudd.Node) rudd.Node {
	shifted := c.stateToNext(x)
	rel := c.bdd.And(c.varTrans[i], shifted)
	set := c.makeset(c.nextVars)
	return c.bdd.Exist(rel, set)
}

// TransitionImage computes the forward counterpart of TransitionPreimage:
// the set of asynchronous successors of x, with the same self-loop
// convention applied so an image query started at a steady state includes
// the state itself.
func (c *Context) TransitionImage(x CSS) (CSS, error) {
	if err := x.sameCtx(c.wrap(nil)); err != nil {
		return CSS{}, err
	}
	acc := c.bdd.False()
	for i := 0; i < c.n; i++ {
		acc = c.bdd.Or(acc, c.imageVar(i, x.node))
	}
	selfLoopHit := c.bdd.And(c.selfLoop, x.node)
	return c.wrap(c.bdd.And(c.unit, c.bdd.Or(acc, selfLoopHit))), nil
}

func (c *Context) imageVar(i int, x rudd.Node) rudd.Node {
	rel := c.bdd.And(c.varTrans[i], x)
	set := c.makeset(c.stateVars)
	projected := c.bdd.Exist(rel, set)
	return c.nextToState(projected)
}

// SelfLoopStates returns the CSS of (state, colour) pairs with no
// asynchronous successor, i.e. steady states of the network under that
// colour.
func (c *Context) SelfLoopStates() CSS {
	return c.wrap(c.bdd.And(c.unit, c.selfLoop))
}

// PreimageVar exposes the per-variable predecessor computation directly so
// the evaluator can implement saturation: rather than always unioning over
// every variable at once, it can apply a single variable's transition,
// re-test convergence, and move to the next variable only once the current
// one is exhausted.
func (c *Context) PreimageVar(i int, x CSS) (CSS, error) {
	if err := x.sameCtx(c.wrap(nil)); err != nil {
		return CSS{}, err
	}
	return c.wrap(c.preimageVar(i, x.node)), nil
}
