package ast_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessellated-space/hctl-psbn/parser"
)

// parse(print(tree)) must reproduce a tree structurally identical to the
// one Node.String() rendered from. This lives in an external test package
// because it needs both ast and parser, and parser already imports ast.
func TestParsePrintRoundTrips(t *testing.T) {
	formulas := []string{
		"true",
		"false",
		"v0",
		"~v0",
		"v0 & v1",
		"v0 | v1 & v2",
		"v0 => v1 <=> v2",
		"AX v0",
		"EF v0",
		"v0 EU v1",
		"v0 AW v1",
		"!{x}: AX {x}",
		"3{x}: (@{x}: v0)",
		"V{x} in %dom%: {x} & v0",
	}
	for _, f := range formulas {
		f := f
		t.Run(f, func(t *testing.T) {
			tree, err := parser.Parse(f)
			require.NoError(t, err)

			printed := tree.String()
			reparsed, err := parser.Parse(printed)
			require.NoError(t, err)

			assert.True(t, reflect.DeepEqual(tree, reparsed))
			assert.Equal(t, printed, reparsed.String())
		})
	}
}
