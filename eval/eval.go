// Package eval implements the bottom-up, cache-enabled evaluator that turns
// a validated HCTL syntax tree into a coloured state set. Temporal operators
// are computed by Kleene fixpoint iteration over the BDD lattice; hybrid
// operators by the symbolic context's substitution primitives; duplicate
// sub-formulas share one evaluation through a fingerprint-keyed cache scoped
// to a single Evaluate call.
package eval

import (
	"fmt"

	"github.com/tessellated-space/hctl-psbn/ast"
	"github.com/tessellated-space/hctl-psbn/network"
	"github.com/tessellated-space/hctl-psbn/symbolic"
)

// WildCardMissing reports an extended-formula placeholder with no supplied
// context CSS.
type WildCardMissing struct{ Name string }

func (e *WildCardMissing) Error() string { return fmt.Sprintf("wild-card %%%s%% missing from context", e.Name) }

// Evaluator computes CSS values for a validated, canonical HCTL tree against
// one symbolic context. Each Evaluator owns a private cache; reuse an
// Evaluator across Evaluate calls only if you want that cache to persist,
// which is not the default entry point (see Evaluate).
type Evaluator struct {
	ctx   *symbolic.Context
	wild  map[string]symbolic.CSS
	cache map[string]symbolic.CSS
}

// New builds an Evaluator over ctx with an optional extended-formula
// context mapping wild-card names to caller-supplied CSS values.
func New(ctx *symbolic.Context, wild map[string]symbolic.CSS) *Evaluator {
	return &Evaluator{ctx: ctx, wild: wild, cache: map[string]symbolic.CSS{}}
}

// Evaluate is the package's single high-level entry point: it builds a
// fresh Evaluator (a fresh cache) over ctx and evaluates tree.
func Evaluate(tree *ast.Node, ctx *symbolic.Context, wild map[string]symbolic.CSS) (symbolic.CSS, error) {
	return New(ctx, wild).Eval(tree)
}

// Eval evaluates tree bottom-up, consulting and populating the Evaluator's
// cache along the way.
func (e *Evaluator) Eval(n *ast.Node) (symbolic.CSS, error) {
	key := n.Fingerprint()
	if v, ok := e.cache[key]; ok {
		return v, nil
	}
	v, err := e.evalUncached(n)
	if err != nil {
		return symbolic.CSS{}, err
	}
	e.cache[key] = v
	return v, nil
}

func (e *Evaluator) evalUncached(n *ast.Node) (symbolic.CSS, error) {
	switch n.Op {
	case ast.OpConst:
		if n.Bool {
			return e.ctx.Full(), nil
		}
		return e.ctx.Empty(), nil

	case ast.OpProp:
		idx := e.ctx.Network().VarByName(n.Name)
		if idx < 0 {
			return symbolic.CSS{}, &network.UnknownProposition{Name: n.Name}
		}
		return e.ctx.EncodeProposition(idx), nil

	case ast.OpVar:
		return e.ctx.EncodeHybridVar(n.VarIdx), nil

	case ast.OpWildCard:
		css, ok := e.wild[n.Name]
		if !ok {
			return symbolic.CSS{}, &WildCardMissing{Name: n.Name}
		}
		return css, nil

	case ast.OpNot:
		child, err := e.Eval(n.Left)
		if err != nil {
			return symbolic.CSS{}, err
		}
		return child.Complement(), nil

	case ast.OpAnd:
		return e.binaryOp(n, func(l, r symbolic.CSS) (symbolic.CSS, error) { return l.Intersect(r) })
	case ast.OpOr:
		return e.binaryOp(n, func(l, r symbolic.CSS) (symbolic.CSS, error) { return l.Union(r) })
	case ast.OpImp:
		return e.binaryOp(n, func(l, r symbolic.CSS) (symbolic.CSS, error) { return l.Complement().Union(r) })
	case ast.OpIff:
		return e.binaryOp(n, e.equiv)
	case ast.OpXor:
		return e.binaryOp(n, func(l, r symbolic.CSS) (symbolic.CSS, error) {
			eq, err := e.equiv(l, r)
			if err != nil {
				return symbolic.CSS{}, err
			}
			return eq.Complement(), nil
		})

	case ast.OpEX:
		child, err := e.Eval(n.Left)
		if err != nil {
			return symbolic.CSS{}, err
		}
		return e.ctx.TransitionPreimage(child)

	case ast.OpAX:
		child, err := e.Eval(n.Left)
		if err != nil {
			return symbolic.CSS{}, err
		}
		return e.ax(child)

	case ast.OpEF:
		child, err := e.Eval(n.Left)
		if err != nil {
			return symbolic.CSS{}, err
		}
		return e.lfpEU(e.ctx.Full(), child)

	case ast.OpAF:
		child, err := e.Eval(n.Left)
		if err != nil {
			return symbolic.CSS{}, err
		}
		g, err := e.gfpEG(child.Complement())
		if err != nil {
			return symbolic.CSS{}, err
		}
		return g.Complement(), nil

	case ast.OpEG:
		child, err := e.Eval(n.Left)
		if err != nil {
			return symbolic.CSS{}, err
		}
		return e.gfpEG(child)

	case ast.OpAG:
		child, err := e.Eval(n.Left)
		if err != nil {
			return symbolic.CSS{}, err
		}
		f, err := e.lfpEU(e.ctx.Full(), child.Complement())
		if err != nil {
			return symbolic.CSS{}, err
		}
		return f.Complement(), nil

	case ast.OpEU:
		l, r, err := e.evalPair(n)
		if err != nil {
			return symbolic.CSS{}, err
		}
		return e.lfpEU(l, r)

	case ast.OpAU:
		l, r, err := e.evalPair(n)
		if err != nil {
			return symbolic.CSS{}, err
		}
		return e.lfpAU(l, r)

	case ast.OpEW:
		l, r, err := e.evalPair(n)
		if err != nil {
			return symbolic.CSS{}, err
		}
		eu, err := e.lfpEU(l, r)
		if err != nil {
			return symbolic.CSS{}, err
		}
		eg, err := e.gfpEG(l)
		if err != nil {
			return symbolic.CSS{}, err
		}
		return eu.Union(eg)

	case ast.OpAW:
		l, r, err := e.evalPair(n)
		if err != nil {
			return symbolic.CSS{}, err
		}
		notR := r.Complement()
		lOrR, err := l.Union(r)
		if err != nil {
			return symbolic.CSS{}, err
		}
		notLorR := lOrR.Complement()
		eu, err := e.lfpEU(notR, notLorR)
		if err != nil {
			return symbolic.CSS{}, err
		}
		return eu.Complement(), nil

	case ast.OpBind:
		body, err := e.Eval(n.Left)
		if err != nil {
			return symbolic.CSS{}, err
		}
		return e.ctx.Substitute(body, n.VarIdx)

	case ast.OpJump:
		body, err := e.Eval(n.Left)
		if err != nil {
			return symbolic.CSS{}, err
		}
		return e.ctx.Jump(body, n.VarIdx)

	case ast.OpExists:
		body, err := e.Eval(n.Left)
		if err != nil {
			return symbolic.CSS{}, err
		}
		return e.ctx.ProjectOut(body, n.VarIdx)

	case ast.OpForall:
		body, err := e.Eval(n.Left)
		if err != nil {
			return symbolic.CSS{}, err
		}
		neg := body.Complement()
		proj, err := e.ctx.ProjectOut(neg, n.VarIdx)
		if err != nil {
			return symbolic.CSS{}, err
		}
		return proj.Complement(), nil

	default:
		return symbolic.CSS{}, fmt.Errorf("eval: unhandled operator %v", n.Op)
	}
}

func (e *Evaluator) equiv(l, r symbolic.CSS) (symbolic.CSS, error) {
	both, err := l.Intersect(r)
	if err != nil {
		return symbolic.CSS{}, err
	}
	neither, err := l.Complement().Intersect(r.Complement())
	if err != nil {
		return symbolic.CSS{}, err
	}
	return both.Union(neither)
}

func (e *Evaluator) binaryOp(n *ast.Node, combine func(l, r symbolic.CSS) (symbolic.CSS, error)) (symbolic.CSS, error) {
	l, r, err := e.evalPair(n)
	if err != nil {
		return symbolic.CSS{}, err
	}
	return combine(l, r)
}

func (e *Evaluator) evalPair(n *ast.Node) (symbolic.CSS, symbolic.CSS, error) {
	l, err := e.Eval(n.Left)
	if err != nil {
		return symbolic.CSS{}, symbolic.CSS{}, err
	}
	r, err := e.Eval(n.Right)
	if err != nil {
		return symbolic.CSS{}, symbolic.CSS{}, err
	}
	return l, r, nil
}

// ax computes AX(phi) = ~EX(~phi) using the context's self-loop-aware
// preimage, so steady states satisfy AX(phi) exactly when they satisfy phi.
func (e *Evaluator) ax(phi symbolic.CSS) (symbolic.CSS, error) {
	pre, err := e.ctx.TransitionPreimage(phi.Complement())
	if err != nil {
		return symbolic.CSS{}, err
	}
	return pre.Complement(), nil
}

// lfpEU computes the least fixpoint X = psi | (phi & EX(X)), the semantics
// of E[phi U psi]. Rather than applying the full transition preimage (a
// union over every network variable) on each round, it saturates one
// variable's contribution at a time and only advances to the next variable
// once the current one stops adding states: intermediate BDDs built this way
// tend to stay far smaller than the Jacobi-style "apply every variable, then
// recheck" iteration, though both converge to the same fixpoint.
func (e *Evaluator) lfpEU(phi, psi symbolic.CSS) (symbolic.CSS, error) {
	x := psi
	n := e.ctx.N()
	selfLoop := e.ctx.SelfLoopStates()
	for changed := true; changed; {
		changed = false
		for i := -1; i < n; i++ {
			var pre symbolic.CSS
			var err error
			if i < 0 {
				// Pseudo-variable pass: steady states are their own only
				// successor by convention, so they contribute to EX(x)
				// exactly when they are already in x.
				pre, err = selfLoop.Intersect(x)
			} else {
				pre, err = e.ctx.PreimageVar(i, x)
			}
			if err != nil {
				return symbolic.CSS{}, err
			}
			step, err := phi.Intersect(pre)
			if err != nil {
				return symbolic.CSS{}, err
			}
			next, err := step.Union(x)
			if err != nil {
				return symbolic.CSS{}, err
			}
			if !next.Equal(x) {
				x = next
				changed = true
				i-- // stay on this variable until it adds nothing more
			}
		}
	}
	return x, nil
}

// gfpEG computes the greatest fixpoint X = phi & EX(X) by Kleene iteration
// downward from phi.
func (e *Evaluator) gfpEG(phi symbolic.CSS) (symbolic.CSS, error) {
	x := phi
	for {
		pre, err := e.ctx.TransitionPreimage(x)
		if err != nil {
			return symbolic.CSS{}, err
		}
		next, err := phi.Intersect(pre)
		if err != nil {
			return symbolic.CSS{}, err
		}
		if next.Equal(x) {
			return x, nil
		}
		x = next
	}
}

// lfpAU computes the least fixpoint X = psi | (phi & AX(X)) by Kleene
// iteration upward from the empty set.
func (e *Evaluator) lfpAU(phi, psi symbolic.CSS) (symbolic.CSS, error) {
	x := e.ctx.Empty()
	for {
		ax, err := e.ax(x)
		if err != nil {
			return symbolic.CSS{}, err
		}
		step, err := phi.Intersect(ax)
		if err != nil {
			return symbolic.CSS{}, err
		}
		next, err := step.Union(psi)
		if err != nil {
			return symbolic.CSS{}, err
		}
		if next.Equal(x) {
			return x, nil
		}
		x = next
	}
}
