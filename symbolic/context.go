// Package symbolic lifts a parametrised Boolean network into a symbolic
// transition system over binary decision diagrams. It owns the BDD variable
// layout — network-state bits, free-parameter bits, and the hybrid-variable
// copies of the state bits used to encode bound HCTL state-variables — and
// exposes the projection, substitution and image/pre-image operations the
// evaluator composes into HCTL semantics.
//
// The BDD manager itself comes from github.com/dalzilio/rudd; this package
// never manipulates BDD internals directly, only through rudd's exported
// Set/Node API.
package symbolic

import (
	"fmt"

	"github.com/dalzilio/rudd"

	"github.com/tessellated-space/hctl-psbn/network"
)

// Context owns one rudd.Set variable manager laid out in blocks per network
// variable: state bit, next-state bit, then one bit per hybrid group, with
// all parameter bits trailing at the end. Grouping the bits for a given
// network variable together keeps update-function BDDs (which typically
// depend on a small neighbourhood of variables) close in the variable order.
type Context struct {
	bdd rudd.Set
	net *network.Network

	n int // number of network variables
	p int // number of parameters
	k int // number of hybrid variable groups

	stateVars  []int
	nextVars   []int
	hybridVars [][]int // k groups, n vars each
	paramVars  []int

	updateFuncs []rudd.Node // compiled update function per network variable, over state+param vars
	varTrans    []rudd.Node // per-variable transition relation T_i(s, s', c)
	selfLoop    rudd.Node   // predicate: state s is a fixed point under colour c
	unit        rudd.Node   // admissible (state, colour, hybrid...) tuples
}

// DefaultNodesize and DefaultCachesize seed the underlying rudd table; they
// are deliberately generous since HCTL evaluation on non-trivial networks
// tends to build many intermediate nodes during fixpoint iteration.
const (
	DefaultNodesize  = 1 << 16
	DefaultCachesize = 1 << 14
)

// NewContext builds a symbolic context for net with k hybrid variable
// groups (as computed by the validator's canonical renaming pass). Any
// network variable left without an update function is treated as fully
// free: an implicit parameter is allocated to drive its next value, so the
// resulting transition relation always totally determines successors given
// a colour.
func NewContext(net *network.Network, k int) (*Context, error) {
	net.ResolveFreeUpdates()

	n := net.N()
	if k < 0 {
		k = 0
	}
	blockWidth := 2 + k
	total := n*blockWidth + net.P()
	if total == 0 {
		return nil, fmt.Errorf("symbolic: network has no variables")
	}

	b := rudd.Hudd(total, DefaultNodesize, DefaultCachesize)
	if err := b.Error(); err != "" {
		return nil, fmt.Errorf("symbolic: %s", err)
	}

	ctx := &Context{
		bdd:        b,
		net:        net,
		n:          n,
		p:          net.P(),
		k:          k,
		stateVars:  make([]int, n),
		nextVars:   make([]int, n),
		hybridVars: make([][]int, k),
		paramVars:  make([]int, net.P()),
	}
	for g := 0; g < k; g++ {
		ctx.hybridVars[g] = make([]int, n)
	}
	for i := 0; i < n; i++ {
		base := i * blockWidth
		ctx.stateVars[i] = base
		ctx.nextVars[i] = base + 1
		for g := 0; g < k; g++ {
			ctx.hybridVars[g][i] = base + 2 + g
		}
	}
	paramBase := n * blockWidth
	for j := 0; j < net.P(); j++ {
		ctx.paramVars[j] = paramBase + j
	}

	ctx.updateFuncs = make([]rudd.Node, n)
	for i, e := range net.Update {
		ctx.updateFuncs[i] = ctx.compile(e, ctx.stateVars)
	}

	ctx.buildTransitionRelations()
	ctx.unit = ctx.bdd.True()

	return ctx, nil
}

// N, P and K expose the layout's block sizes.
func (c *Context) N() int { return c.n }
func (c *Context) P() int { return c.p }
func (c *Context) K() int { return c.k }

// Network returns the network this context was built from.
func (c *Context) Network() *network.Network { return c.net }

// SetUnit installs a custom admissible-tuple set, e.g. one derived from
// static PSBN constraints over the parameter bits. The zero value (never
// calling SetUnit) leaves the unit set as "everything".
func (c *Context) SetUnit(u CSS) {
	c.unit = u.node
}

// Unit returns the current admissible-tuple set.
func (c *Context) Unit() CSS { return CSS{ctx: c, node: c.unit} }

func (c *Context) compile(e *network.Expr, stateVars []int) rudd.Node {
	if e == nil {
		return c.bdd.False()
	}
	switch e.Kind {
	case network.ExprConst:
		return c.bdd.From(e.Bool)
	case network.ExprVar:
		return c.bdd.Ithvar(stateVars[e.Index])
	case network.ExprParam:
		return c.bdd.Ithvar(c.paramVars[e.Index])
	case network.ExprNot:
		return c.bdd.Not(c.compile(e.Children[0], stateVars))
	case network.ExprAnd:
		nodes := make([]rudd.Node, len(e.Children))
		for i, ch := range e.Children {
			nodes[i] = c.compile(ch, stateVars)
		}
		return c.bdd.And(nodes...)
	case network.ExprOr:
		nodes := make([]rudd.Node, len(e.Children))
		for i, ch := range e.Children {
			nodes[i] = c.compile(ch, stateVars)
		}
		return c.bdd.Or(nodes...)
	default:
		return c.bdd.False()
	}
}

// buildTransitionRelations compiles, for each network variable i, the
// relation T_i(s, s', c) that holds when the asynchronous step flips exactly
// variable i to match its update function, and the selfLoop predicate that
// holds when no variable wants to flip (a steady state under colour c).
func (c *Context) buildTransitionRelations() {
	c.varTrans = make([]rudd.Node, c.n)
	agree := make([]rudd.Node, c.n)
	for i := 0; i < c.n; i++ {
		agree[i] = c.bdd.Equiv(c.bdd.Ithvar(c.stateVars[i]), c.updateFuncs[i])
	}

	for i := 0; i < c.n; i++ {
		frameParts := make([]rudd.Node, 0, c.n)
		for j := 0; j < c.n; j++ {
			if j == i {
				continue
			}
			frameParts = append(frameParts, c.bdd.Equiv(c.bdd.Ithvar(c.nextVars[j]), c.bdd.Ithvar(c.stateVars[j])))
		}
		flips := c.bdd.Not(agree[i])
		moves := c.bdd.Equiv(c.bdd.Ithvar(c.nextVars[i]), c.updateFuncs[i])
		parts := append(frameParts, flips, moves)
		c.varTrans[i] = c.bdd.And(parts...)
	}

	c.selfLoop = c.bdd.And(agree...)
}

// stateToNext renames the state group into the next-state group inside n,
// used to test "does the successor state satisfy this predicate".
func (c *Context) stateToNext(n rudd.Node) rudd.Node {
	r, err := c.bdd.NewReplacer(c.stateVars, c.nextVars)
	if err != nil {
		return c.bdd.False()
	}
	return c.bdd.Replace(n, r)
}

// nextToState is the inverse renaming, used after existentially projecting
// out the state group during a forward image computation.
func (c *Context) nextToState(n rudd.Node) rudd.Node {
	r, err := c.bdd.NewReplacer(c.nextVars, c.stateVars)
	if err != nil {
		return c.bdd.False()
	}
	return c.bdd.Replace(n, r)
}

func (c *Context) makeset(vars []int) rudd.Node {
	return c.bdd.Makeset(vars)
}
