// Package ast defines the HCTL syntax tree: a tagged-variant node type with
// canonical display strings for pretty-printing and structural fingerprints
// used as evaluation cache keys.
package ast

import "fmt"

// Op identifies the operator or variant carried by a Node.
type Op int

const (
	OpConst Op = iota
	OpProp
	OpVar
	OpWildCard
	OpNot
	OpAnd
	OpOr
	OpImp
	OpIff
	OpXor
	OpEX
	OpAX
	OpEF
	OpAF
	OpEG
	OpAG
	OpEU
	OpAU
	OpEW
	OpAW
	OpBind
	OpJump
	OpExists
	OpForall
)

var opNames = map[Op]string{
	OpConst: "Const", OpProp: "Prop", OpVar: "Var", OpWildCard: "WildCard",
	OpNot: "~", OpAnd: "&", OpOr: "|", OpImp: "=>", OpIff: "<=>", OpXor: "^",
	OpEX: "EX", OpAX: "AX", OpEF: "EF", OpAF: "AF", OpEG: "EG", OpAG: "AG",
	OpEU: "EU", OpAU: "AU", OpEW: "EW", OpAW: "AW",
	OpBind: "!", OpJump: "@", OpExists: "3", OpForall: "V",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Node is a tagged-variant HCTL syntax-tree node. Only the fields relevant to
// Op are populated:
//
//	OpConst             Bool
//	OpProp, OpWildCard  Name
//	OpVar               VarIdx (canonical index, set by validation; -1 before)
//	OpNot..OpXor         Left, [Right]
//	OpEX..OpAG           Left (unary temporal)
//	OpEU..OpAW           Left, Right (binary temporal)
//	OpBind..OpForall     Name (source-level, kept after validation), VarIdx
//	                     (canonical, set by validation), Left (body)
type Node struct {
	Op     Op
	Bool   bool
	Name   string
	VarIdx int
	Left   *Node
	Right  *Node
}

// Const builds a Boolean constant leaf.
func Const(b bool) *Node { return &Node{Op: OpConst, Bool: b} }

// Prop builds a proposition (network-variable) reference.
func Prop(name string) *Node { return &Node{Op: OpProp, Name: name} }

// Var builds a hybrid-variable reference by source name, pre-validation.
// VarIdx is -1 until the validator resolves it.
func Var(name string) *Node { return &Node{Op: OpVar, Name: name, VarIdx: -1} }

// WildCard builds an extended-context placeholder reference.
func WildCard(name string) *Node { return &Node{Op: OpWildCard, Name: name} }

// Unary builds a unary node (Not or a unary temporal operator).
func Unary(op Op, child *Node) *Node {
	return &Node{Op: op, Left: child}
}

// Binary builds a binary node (Boolean connective or binary temporal
// operator).
func Binary(op Op, left, right *Node) *Node {
	return &Node{Op: op, Left: left, Right: right}
}

// Hybrid builds a hybrid-quantifier node over source name and body,
// pre-validation. VarIdx is -1 until the validator resolves it.
func Hybrid(op Op, name string, body *Node) *Node {
	return &Node{Op: op, Name: name, VarIdx: -1, Left: body}
}

// String renders the canonical display form. It is deliberately compact and
// fully parenthesised so it round-trips through the parser up to whitespace.
// The evaluation cache is keyed by Fingerprint, not by this string.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Op {
	case OpConst:
		if n.Bool {
			return "true"
		}
		return "false"
	case OpProp:
		return n.Name
	case OpVar:
		return fmt.Sprintf("{%s}", n.canonicalName())
	case OpWildCard:
		return fmt.Sprintf("%%%s%%", n.Name)
	case OpNot:
		return fmt.Sprintf("(~%s)", n.Left)
	case OpEX, OpAX, OpEF, OpAF, OpEG, OpAG:
		return fmt.Sprintf("(%s %s)", n.Op, n.Left)
	case OpAnd, OpOr, OpImp, OpIff, OpXor:
		return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right)
	case OpEU, OpAU, OpEW, OpAW:
		return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right)
	case OpBind, OpJump, OpExists, OpForall:
		return fmt.Sprintf("(%s{%s}: %s)", n.Op, n.canonicalName(), n.Left)
	default:
		return fmt.Sprintf("<bad-op %d>", n.Op)
	}
}

// canonicalName returns the validated canonical name if VarIdx has been
// resolved, otherwise the original source name.
func (n *Node) canonicalName() string {
	if n.VarIdx < 0 {
		return n.Name
	}
	return CanonicalName(n.VarIdx)
}

// CanonicalName renders a canonical hybrid-variable index the way the
// validator's renaming pass does: 0 -> "x", 1 -> "xx", 2 -> "xxx", ...
func CanonicalName(idx int) string {
	b := make([]byte, idx+1)
	for i := range b {
		b[i] = 'x'
	}
	return string(b)
}

// Fingerprint returns the structural cache key for a validated (canonical)
// sub-tree: variant tag, canonical indices and literal payloads, and child
// fingerprints, composed so that two canonical sub-trees are fingerprint-
// equal iff they are structurally identical.
func (n *Node) Fingerprint() string {
	if n == nil {
		return "_"
	}
	switch n.Op {
	case OpConst:
		return fmt.Sprintf("C%v", n.Bool)
	case OpProp:
		return fmt.Sprintf("P%s", n.Name)
	case OpVar:
		return fmt.Sprintf("V%d", n.VarIdx)
	case OpWildCard:
		return fmt.Sprintf("W%s", n.Name)
	case OpBind, OpJump, OpExists, OpForall:
		return fmt.Sprintf("H%d,%d(%s)", n.Op, n.VarIdx, n.Left.Fingerprint())
	case OpNot, OpEX, OpAX, OpEF, OpAF, OpEG, OpAG:
		return fmt.Sprintf("U%d(%s)", n.Op, n.Left.Fingerprint())
	default:
		return fmt.Sprintf("B%d(%s,%s)", n.Op, n.Left.Fingerprint(), n.Right.Fingerprint())
	}
}

// Walk visits n and every descendant in pre-order.
func Walk(n *Node, visit func(*Node)) {
	if n == nil {
		return
	}
	visit(n)
	Walk(n.Left, visit)
	Walk(n.Right, visit)
}

// IsHybrid reports whether op introduces a hybrid-variable binding.
func IsHybrid(op Op) bool {
	switch op {
	case OpBind, OpJump, OpExists, OpForall:
		return true
	default:
		return false
	}
}

// IsUnary reports whether op takes exactly one child (Not and the unary
// temporal operators).
func IsUnary(op Op) bool {
	switch op {
	case OpNot, OpEX, OpAX, OpEF, OpAF, OpEG, OpAG:
		return true
	default:
		return false
	}
}
