package validate

import "github.com/tessellated-space/hctl-psbn/ast"

// Normalize rewrites derived operators into the evaluator's minimal core
// using the identities:
//
//	AX phi  = ~EX~phi        AF phi  = ~EG~phi        AG phi = ~EF~phi
//	E[phi W psi] = E[phi U psi] | EG phi
//	A[phi W psi] = ~E[~psi U ~(phi|psi)]
//	phi => psi = ~phi | psi   phi <=> psi = (phi&psi)|(~phi&~psi)
//	phi ^ psi  = ~(phi<=>psi)
//	V{x}: phi  = ~3{x}: ~phi
//
// The evaluator defines every operator directly (see eval), so applying
// Normalize is optional; it only shrinks the operator set feeding the cache
// key, which can increase sharing across sub-formulas that are semantically
// but not syntactically identical. Callers that want the evaluator's native
// per-operator semantics should skip this pass.
func Normalize(n *ast.Node) *ast.Node {
	if n == nil {
		return nil
	}
	switch n.Op {
	case ast.OpAX:
		return ast.Unary(ast.OpNot, ast.Unary(ast.OpEX, ast.Unary(ast.OpNot, Normalize(n.Left))))
	case ast.OpAF:
		return ast.Unary(ast.OpNot, ast.Unary(ast.OpEG, ast.Unary(ast.OpNot, Normalize(n.Left))))
	case ast.OpAG:
		return ast.Unary(ast.OpNot, ast.Unary(ast.OpEF, ast.Unary(ast.OpNot, Normalize(n.Left))))
	case ast.OpImp:
		return ast.Binary(ast.OpOr, ast.Unary(ast.OpNot, Normalize(n.Left)), Normalize(n.Right))
	case ast.OpIff:
		l, r := Normalize(n.Left), Normalize(n.Right)
		return ast.Binary(ast.OpOr,
			ast.Binary(ast.OpAnd, l, r),
			ast.Binary(ast.OpAnd, ast.Unary(ast.OpNot, l), ast.Unary(ast.OpNot, r)))
	case ast.OpXor:
		l, r := Normalize(n.Left), Normalize(n.Right)
		iff := ast.Binary(ast.OpOr,
			ast.Binary(ast.OpAnd, l, r),
			ast.Binary(ast.OpAnd, ast.Unary(ast.OpNot, l), ast.Unary(ast.OpNot, r)))
		return ast.Unary(ast.OpNot, iff)
	case ast.OpEW:
		l, r := Normalize(n.Left), Normalize(n.Right)
		return ast.Binary(ast.OpOr, ast.Binary(ast.OpEU, l, r), ast.Unary(ast.OpEG, l))
	case ast.OpAW:
		l, r := Normalize(n.Left), Normalize(n.Right)
		notR := ast.Unary(ast.OpNot, r)
		notLorR := ast.Unary(ast.OpNot, ast.Binary(ast.OpOr, l, r))
		return ast.Unary(ast.OpNot, ast.Binary(ast.OpEU, notR, notLorR))
	case ast.OpForall:
		body := ast.Unary(ast.OpNot, Normalize(n.Left))
		return ast.Unary(ast.OpNot, &ast.Node{Op: ast.OpExists, Name: n.Name, VarIdx: n.VarIdx, Left: body})
	default:
		if n.Left == nil && n.Right == nil {
			return n
		}
		out := &ast.Node{Op: n.Op, Bool: n.Bool, Name: n.Name, VarIdx: n.VarIdx}
		out.Left = Normalize(n.Left)
		out.Right = Normalize(n.Right)
		return out
	}
}
