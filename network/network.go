// Package network describes parametrised Boolean networks (PSBNs) as
// in-memory, Go-native structures: named state variables, named free
// parameters, and one update expression per variable. Building a Network is
// a plain constructor call, mirroring the builder style used elsewhere in
// this module rather than a text-format parser — reading PSBNs from an
// on-disk model format is external plumbing this package does not attempt.
package network

import "fmt"

// UnknownProposition reports a proposition name that does not match any
// declared network variable. It is raised by whichever caller first has
// enough context to know the network's vocabulary: the validator, if given
// a lookup function, otherwise the evaluator.
type UnknownProposition struct{ Name string }

func (e *UnknownProposition) Error() string {
	return fmt.Sprintf("unknown proposition %q", e.Name)
}

// ExprKind tags the variant of an update-function Expr.
type ExprKind int

const (
	ExprConst ExprKind = iota
	ExprVar
	ExprParam
	ExprNot
	ExprAnd
	ExprOr
)

// Expr is a Boolean expression over network state variables and free
// parameters, used as an update function's right-hand side.
type Expr struct {
	Kind     ExprKind
	Bool     bool
	Index    int     // ExprVar / ExprParam: index into the owning Network's Vars/Params.
	Children []*Expr // ExprNot (1 child), ExprAnd/ExprOr (>=1 children).
}

// Const builds a Boolean literal.
func Const(b bool) *Expr { return &Expr{Kind: ExprConst, Bool: b} }

// Var references network state-variable index i.
func Var(i int) *Expr { return &Expr{Kind: ExprVar, Index: i} }

// Param references free-parameter index i.
func Param(i int) *Expr { return &Expr{Kind: ExprParam, Index: i} }

// Not negates e.
func Not(e *Expr) *Expr { return &Expr{Kind: ExprNot, Children: []*Expr{e}} }

// And conjoins one or more expressions.
func And(es ...*Expr) *Expr {
	if len(es) == 0 {
		return Const(true)
	}
	return &Expr{Kind: ExprAnd, Children: es}
}

// Or disjoins one or more expressions.
func Or(es ...*Expr) *Expr {
	if len(es) == 0 {
		return Const(false)
	}
	return &Expr{Kind: ExprOr, Children: es}
}

func (e *Expr) String() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ExprConst:
		if e.Bool {
			return "true"
		}
		return "false"
	case ExprVar:
		return fmt.Sprintf("v%d", e.Index)
	case ExprParam:
		return fmt.Sprintf("p%d", e.Index)
	case ExprNot:
		return fmt.Sprintf("~%s", e.Children[0])
	case ExprAnd:
		return joinExprs(e.Children, " & ")
	case ExprOr:
		return joinExprs(e.Children, " | ")
	default:
		return "<bad-expr>"
	}
}

func joinExprs(es []*Expr, sep string) string {
	s := "("
	for i, c := range es {
		if i > 0 {
			s += sep
		}
		s += c.String()
	}
	return s + ")"
}

// Network is a parametrised Boolean network: N named state variables, P
// named free parameters, and one update Expr per state variable.
type Network struct {
	VarNames   []string
	ParamNames []string
	Update     []*Expr // len == len(VarNames); nil entries mean "fully free" (no constraint).

	varIndex   map[string]int
	paramIndex map[string]int
}

// New builds an empty Network over the given ordered state-variable names.
// Update functions default to nil (unconstrained) until set with SetUpdate.
func New(varNames []string) *Network {
	n := &Network{
		VarNames: append([]string(nil), varNames...),
		Update:   make([]*Expr, len(varNames)),
	}
	n.varIndex = make(map[string]int, len(varNames))
	for i, name := range n.VarNames {
		n.varIndex[name] = i
	}
	n.paramIndex = make(map[string]int)
	return n
}

// N returns the number of state variables.
func (n *Network) N() int { return len(n.VarNames) }

// P returns the number of free parameters.
func (n *Network) P() int { return len(n.ParamNames) }

// VarByName returns the index of a state variable, or -1 if absent.
func (n *Network) VarByName(name string) int {
	if idx, ok := n.varIndex[name]; ok {
		return idx
	}
	return -1
}

// HasVar reports whether name is a declared network variable.
func (n *Network) HasVar(name string) bool { return n.VarByName(name) >= 0 }

// AddParam declares a new free parameter and returns its index.
func (n *Network) AddParam(name string) int {
	idx := len(n.ParamNames)
	n.ParamNames = append(n.ParamNames, name)
	n.paramIndex[name] = idx
	return idx
}

// SetUpdate assigns the update expression for state variable varIdx.
func (n *Network) SetUpdate(varIdx int, e *Expr) {
	n.Update[varIdx] = e
}

// ResolveFreeUpdates allocates an implicit parameter for every variable that
// has no update expression, so that every variable's next value is
// determined given a colour. It is idempotent: variables that already have
// an update function are left untouched.
func (n *Network) ResolveFreeUpdates() {
	for i, u := range n.Update {
		if u != nil {
			continue
		}
		idx := n.AddParam(fmt.Sprintf("__free_%s", n.VarNames[i]))
		n.Update[i] = Param(idx)
	}
}

// IsFullyParametrised reports whether every variable's update is
// unconstrained (nil), i.e. the network places no restriction beyond the
// asynchronous transition scheme itself.
func (n *Network) IsFullyParametrised() bool {
	for _, u := range n.Update {
		if u != nil {
			return false
		}
	}
	return true
}
