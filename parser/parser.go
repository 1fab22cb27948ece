// Package parser builds an ast.Node syntax tree from a token stream by
// operator-precedence recursive descent, following the same top-down
// structure as the rest of this module's collaborators: one method per
// precedence level, each falling through to the next-tighter level.
package parser

import (
	"fmt"

	"github.com/tessellated-space/hctl-psbn/ast"
	"github.com/tessellated-space/hctl-psbn/token"
)

// ParseError reports a structural mismatch between what the grammar expected
// and what token was actually found.
type ParseError struct {
	Expected string
	Found    token.Token
	Pos      int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d: expected %s, found %s", e.Pos, e.Expected, e.Found)
}

// Parser consumes a fixed token slice with a single lookahead cursor.
type Parser struct {
	toks []token.Token
	pos  int
}

// Parse tokenises and parses formula in one step.
func Parse(formula string) (*ast.Node, error) {
	toks, err := token.New(formula).All()
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks}
	n, err := p.parseHybrid()
	if err != nil {
		return nil, err
	}
	if p.cur().Kind != token.EOF {
		return nil, &ParseError{"end of input", p.cur(), p.cur().Pos}
	}
	return n, nil
}

func (p *Parser) cur() token.Token {
	return p.toks[p.pos]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if t.Kind != token.EOF {
		p.pos++
	}
	return t
}

func (p *Parser) expect(k token.Kind, what string) (token.Token, error) {
	if p.cur().Kind != k {
		return token.Token{}, &ParseError{what, p.cur(), p.cur().Pos}
	}
	return p.advance(), nil
}

// level 8 (loosest): hybrid quantifiers, right-associative, consuming the
// remainder of the expression.
func (p *Parser) parseHybrid() (*ast.Node, error) {
	switch p.cur().Kind {
	case token.Bind, token.Jump, token.ExistsHyb, token.ForallHyb:
		op := hybridOp(p.advance().Kind)
		nameTok, err := p.expect(token.VarRef, "variable name")
		if err != nil {
			return nil, err
		}
		name := nameTok.Text

		var domain *ast.Node
		if p.cur().Kind == token.In {
			p.advance()
			wc, err := p.expect(token.WildCard, "wild-card domain")
			if err != nil {
				return nil, err
			}
			domain = ast.WildCard(wc.Text)
		}

		if _, err := p.expect(token.Colon, "':'"); err != nil {
			return nil, err
		}
		body, err := p.parseHybrid()
		if err != nil {
			return nil, err
		}
		if domain != nil {
			if op == ast.OpForall {
				body = ast.Binary(ast.OpImp, domain, body)
			} else {
				body = ast.Binary(ast.OpAnd, domain, body)
			}
		}
		return ast.Hybrid(op, name, body), nil
	default:
		return p.parseIff()
	}
}

func hybridOp(k token.Kind) ast.Op {
	switch k {
	case token.Bind:
		return ast.OpBind
	case token.Jump:
		return ast.OpJump
	case token.ExistsHyb:
		return ast.OpExists
	case token.ForallHyb:
		return ast.OpForall
	}
	panic("unreachable")
}

// level 7: Iff, left-associative.
func (p *Parser) parseIff() (*ast.Node, error) {
	left, err := p.parseImp()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == token.Iff {
		p.advance()
		right, err := p.parseImp()
		if err != nil {
			return nil, err
		}
		left = ast.Binary(ast.OpIff, left, right)
	}
	return left, nil
}

// level 6: Imp, right-associative.
func (p *Parser) parseImp() (*ast.Node, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur().Kind == token.Imp {
		p.advance()
		right, err := p.parseImp()
		if err != nil {
			return nil, err
		}
		return ast.Binary(ast.OpImp, left, right), nil
	}
	return left, nil
}

// level 5: Or, left-associative.
func (p *Parser) parseOr() (*ast.Node, error) {
	left, err := p.parseXor()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == token.Or {
		p.advance()
		right, err := p.parseXor()
		if err != nil {
			return nil, err
		}
		left = ast.Binary(ast.OpOr, left, right)
	}
	return left, nil
}

// level 4: Xor, left-associative.
func (p *Parser) parseXor() (*ast.Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == token.Xor {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.Binary(ast.OpXor, left, right)
	}
	return left, nil
}

// level 3: And, left-associative.
func (p *Parser) parseAnd() (*ast.Node, error) {
	left, err := p.parseBinaryTemporal()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == token.And {
		p.advance()
		right, err := p.parseBinaryTemporal()
		if err != nil {
			return nil, err
		}
		left = ast.Binary(ast.OpAnd, left, right)
	}
	return left, nil
}

// level 2: binary temporal EU/AU/EW/AW, left-associative.
func (p *Parser) parseBinaryTemporal() (*ast.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := binaryTemporalOp(p.cur().Kind)
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.Binary(op, left, right)
	}
}

func binaryTemporalOp(k token.Kind) (ast.Op, bool) {
	switch k {
	case token.EU:
		return ast.OpEU, true
	case token.AU:
		return ast.OpAU, true
	case token.EW:
		return ast.OpEW, true
	case token.AW:
		return ast.OpAW, true
	default:
		return 0, false
	}
}

// level 1 (tightest): Not and the unary temporal operators.
func (p *Parser) parseUnary() (*ast.Node, error) {
	switch p.cur().Kind {
	case token.Not:
		p.advance()
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.Unary(ast.OpNot, child), nil
	case token.EX, token.AX, token.EF, token.AF, token.EG, token.AG:
		op := unaryTemporalOp(p.advance().Kind)
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.Unary(op, child), nil
	default:
		return p.parseAtom()
	}
}

func unaryTemporalOp(k token.Kind) ast.Op {
	switch k {
	case token.EX:
		return ast.OpEX
	case token.AX:
		return ast.OpAX
	case token.EF:
		return ast.OpEF
	case token.AF:
		return ast.OpAF
	case token.EG:
		return ast.OpEG
	case token.AG:
		return ast.OpAG
	}
	panic("unreachable")
}

// parseAtom handles terminals and parenthesised sub-expressions. A
// parenthesised group re-enters at the loosest level so hybrid quantifiers
// may appear nested inside parentheses too.
func (p *Parser) parseAtom() (*ast.Node, error) {
	switch p.cur().Kind {
	case token.LParen:
		p.advance()
		inner, err := p.parseHybrid()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case token.True:
		p.advance()
		return ast.Const(true), nil
	case token.False:
		p.advance()
		return ast.Const(false), nil
	case token.Prop:
		t := p.advance()
		return ast.Prop(t.Text), nil
	case token.VarRef:
		t := p.advance()
		return ast.Var(t.Text), nil
	case token.WildCard:
		t := p.advance()
		return ast.WildCard(t.Text), nil
	default:
		return nil, &ParseError{"an atom", p.cur(), p.cur().Pos}
	}
}
