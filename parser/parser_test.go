package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessellated-space/hctl-psbn/ast"
)

func TestParseSimpleProposition(t *testing.T) {
	n, err := Parse("v0")
	require.NoError(t, err)
	assert.Equal(t, ast.OpProp, n.Op)
	assert.Equal(t, "v0", n.Name)
}

func TestParseAndAssociatesLeft(t *testing.T) {
	n, err := Parse("a & b & c")
	require.NoError(t, err)
	// Left-associative: (a & b) & c
	require.Equal(t, ast.OpAnd, n.Op)
	require.Equal(t, ast.OpAnd, n.Left.Op)
	assert.Equal(t, "a", n.Left.Left.Name)
	assert.Equal(t, "b", n.Left.Right.Name)
	assert.Equal(t, "c", n.Right.Name)
}

func TestParseImpAssociatesRight(t *testing.T) {
	n, err := Parse("a => b => c")
	require.NoError(t, err)
	require.Equal(t, ast.OpImp, n.Op)
	assert.Equal(t, "a", n.Left.Name)
	require.Equal(t, ast.OpImp, n.Right.Op)
	assert.Equal(t, "b", n.Right.Left.Name)
	assert.Equal(t, "c", n.Right.Right.Name)
}

func TestParsePrecedenceAndBeforeOr(t *testing.T) {
	n, err := Parse("a | b & c")
	require.NoError(t, err)
	require.Equal(t, ast.OpOr, n.Op)
	assert.Equal(t, "a", n.Left.Name)
	require.Equal(t, ast.OpAnd, n.Right.Op)
}

func TestParseUnaryTemporalBindsTighterThanBinaryTemporal(t *testing.T) {
	n, err := Parse("EX a EU b")
	require.NoError(t, err)
	require.Equal(t, ast.OpEU, n.Op)
	require.Equal(t, ast.OpEX, n.Left.Op)
	assert.Equal(t, "a", n.Left.Left.Name)
	assert.Equal(t, "b", n.Right.Name)
}

func TestParseHybridBindConsumesRestOfExpression(t *testing.T) {
	n, err := Parse("!{x}: AX {x} & true")
	require.NoError(t, err)
	require.Equal(t, ast.OpBind, n.Op)
	assert.Equal(t, "x", n.Name)
	require.Equal(t, ast.OpAnd, n.Left.Op)
	require.Equal(t, ast.OpAX, n.Left.Left.Op)
}

func TestParseDomainRestrictionOnBind(t *testing.T) {
	n, err := Parse("!{x} in %dom%: AX {x}")
	require.NoError(t, err)
	require.Equal(t, ast.OpBind, n.Op)
	require.Equal(t, ast.OpAnd, n.Left.Op)
	require.Equal(t, ast.OpWildCard, n.Left.Left.Op)
	assert.Equal(t, "dom", n.Left.Left.Name)
}

func TestParseDomainRestrictionOnForallBecomesImplication(t *testing.T) {
	n, err := Parse("V{x} in %dom%: AX {x}")
	require.NoError(t, err)
	require.Equal(t, ast.OpForall, n.Op)
	require.Equal(t, ast.OpImp, n.Left.Op)
}

func TestParseParentheses(t *testing.T) {
	n, err := Parse("(a | b) & c")
	require.NoError(t, err)
	require.Equal(t, ast.OpAnd, n.Op)
	require.Equal(t, ast.OpOr, n.Left.Op)
}

func TestParseRejectsTrailingGarbage(t *testing.T) {
	_, err := Parse("a &")
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestParseRejectsUnbalancedParens(t *testing.T) {
	_, err := Parse("(a & b")
	require.Error(t, err)
}

func TestParseS5Formula(t *testing.T) {
	n, err := Parse("!{x}: 3{y}: ((@{x}: ~{y} & AX {x}) & (@{y}: AX {y}))")
	require.NoError(t, err)
	assert.Equal(t, ast.OpBind, n.Op)
	assert.Equal(t, ast.OpExists, n.Left.Op)
}
