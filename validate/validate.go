// Package validate checks a parsed HCTL syntax tree for well-formedness and
// rewrites it into canonical form: every hybrid variable is renamed to a
// dense, position-stable index, with index slots recycled across sibling and
// exited scopes so the live variable count never exceeds the maximum
// simultaneous binding depth.
package validate

import (
	"fmt"

	"github.com/tessellated-space/hctl-psbn/ast"
	"github.com/tessellated-space/hctl-psbn/network"
)

// FreeVariable reports a hybrid-variable reference with no enclosing binder.
type FreeVariable struct{ Name string }

func (e *FreeVariable) Error() string { return fmt.Sprintf("free variable {%s}", e.Name) }

// Result is the outcome of a successful validation pass.
type Result struct {
	Tree *ast.Node
	// K is the maximum number of hybrid variables simultaneously live at any
	// point in the formula, i.e. the number of hybrid BDD variable groups a
	// symbolic context must allocate to evaluate this tree.
	K int
}

// KnownProp, when non-nil, reports whether name is a valid network variable.
// Passing nil defers proposition-vocabulary checking to evaluation time,
// exactly as described for the "PSBN vocabulary known" cases.
type KnownProp func(name string) bool

// Validate checks tree for free variables and known propositions (if
// knownProp is supplied), then rewrites it into canonical form.
func Validate(tree *ast.Node, knownProp KnownProp) (Result, error) {
	r := &renamer{knownProp: knownProp}
	canon, err := r.rename(tree, map[string]int{})
	if err != nil {
		return Result{}, err
	}
	return Result{Tree: canon, K: r.maxK}, nil
}

type renamer struct {
	used      []bool
	maxK      int
	knownProp KnownProp
}

func (r *renamer) allocate() int {
	for i, u := range r.used {
		if !u {
			r.used[i] = true
			return i
		}
	}
	r.used = append(r.used, true)
	if len(r.used) > r.maxK {
		r.maxK = len(r.used)
	}
	return len(r.used) - 1
}

func (r *renamer) release(idx int) { r.used[idx] = false }

// rename recurses over tree, resolving Var references against env (source
// name -> canonical index) and reassigning fresh canonical indices to every
// hybrid binder. env is mutated and restored around each binder's subtree
// rather than copied, since bindings are strictly stack-disciplined: a
// binder's effect on env is fully undone before its sibling is visited.
func (r *renamer) rename(n *ast.Node, env map[string]int) (*ast.Node, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Op {
	case ast.OpConst:
		return ast.Const(n.Bool), nil

	case ast.OpProp:
		if r.knownProp != nil && !r.knownProp(n.Name) {
			return nil, &network.UnknownProposition{Name: n.Name}
		}
		return ast.Prop(n.Name), nil

	case ast.OpWildCard:
		return ast.WildCard(n.Name), nil

	case ast.OpVar:
		idx, ok := env[n.Name]
		if !ok {
			return nil, &FreeVariable{n.Name}
		}
		return &ast.Node{Op: ast.OpVar, Name: n.Name, VarIdx: idx}, nil

	default:
		if n.Op == ast.OpJump {
			// @{x} refers to the existing binding of x; it opens no new slot.
			idx, ok := env[n.Name]
			if !ok {
				return nil, &FreeVariable{n.Name}
			}
			body, err := r.rename(n.Left, env)
			if err != nil {
				return nil, err
			}
			return &ast.Node{Op: n.Op, Name: n.Name, VarIdx: idx, Left: body}, nil
		}
		if ast.IsHybrid(n.Op) {
			idx := r.allocate()
			old, had := env[n.Name]
			env[n.Name] = idx
			body, err := r.rename(n.Left, env)
			if had {
				env[n.Name] = old
			} else {
				delete(env, n.Name)
			}
			r.release(idx)
			if err != nil {
				return nil, err
			}
			return &ast.Node{Op: n.Op, Name: n.Name, VarIdx: idx, Left: body}, nil
		}
		if ast.IsUnary(n.Op) {
			left, err := r.rename(n.Left, env)
			if err != nil {
				return nil, err
			}
			return ast.Unary(n.Op, left), nil
		}
		left, err := r.rename(n.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := r.rename(n.Right, env)
		if err != nil {
			return nil, err
		}
		return ast.Binary(n.Op, left, right), nil
	}
}
