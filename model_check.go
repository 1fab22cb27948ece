package hctlpsbn

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tessellated-space/hctl-psbn/ast"
	"github.com/tessellated-space/hctl-psbn/eval"
	"github.com/tessellated-space/hctl-psbn/network"
	"github.com/tessellated-space/hctl-psbn/parser"
	"github.com/tessellated-space/hctl-psbn/symbolic"
	"github.com/tessellated-space/hctl-psbn/validate"
)

// Tree is a parsed, not-yet-validated HCTL syntax tree.
type Tree = ast.Node

// CanonicalTree is a validated tree whose hybrid variables have been renamed
// to a dense, position-stable canonical numbering, together with the number
// of simultaneously-live hybrid groups it requires.
type CanonicalTree struct {
	Tree *ast.Node
	K    int
}

// CSS is a coloured state set: the symbolic result of evaluating a formula.
type CSS = symbolic.CSS

// Log is the façade's logger. Callers may reconfigure it (level, formatter,
// output) before calling into this package; by default it logs at Info
// level to keep routine model-checking runs quiet.
var Log = logrus.New()

func init() {
	Log.SetLevel(logrus.InfoLevel)
}

// Parse tokenises and parses a formula string into an unvalidated Tree.
func Parse(formula string) (*Tree, error) {
	t, err := parser.Parse(formula)
	if err != nil {
		return nil, errors.Wrap(err, "parse formula")
	}
	return t, nil
}

// Validate checks tree for well-formedness against net's vocabulary and
// rewrites it into canonical form.
func Validate(tree *Tree, net *network.Network) (CanonicalTree, error) {
	res, err := validate.Validate(tree, net.HasVar)
	if err != nil {
		return CanonicalTree{}, errors.Wrap(err, "validate formula")
	}
	return CanonicalTree{Tree: res.Tree, K: res.K}, nil
}

// NewContext allocates a symbolic context for net sized to hold canon's
// hybrid-variable groups.
func NewContext(net *network.Network, canon CanonicalTree) (*symbolic.Context, error) {
	ctx, err := symbolic.NewContext(net, canon.K)
	if err != nil {
		return nil, errors.Wrap(err, "allocate symbolic context")
	}
	return ctx, nil
}

// Evaluate computes the CSS for a canonical tree against a symbolic context,
// optionally resolving wild-card placeholders through extended. Every
// extended CSS must belong to ctx or evaluation fails eagerly with
// IncompatibleContext rather than surfacing a confusing BDD-level error mid
// traversal.
func Evaluate(canon CanonicalTree, ctx *symbolic.Context, extended map[string]symbolic.CSS) (CSS, error) {
	for name, css := range extended {
		if !css.BelongsTo(ctx) {
			return CSS{}, errors.Wrapf(IncompatibleContext{}, "wild-card %%%s%%", name)
		}
	}
	result, err := eval.Evaluate(canon.Tree, ctx, extended)
	if err != nil {
		return CSS{}, errors.Wrap(err, "evaluate formula")
	}
	return result, nil
}

// ModelCheck runs the full pipeline: parse, validate against net's
// vocabulary, allocate a symbolic context, and evaluate, short-circuiting on
// the first error encountered at any stage.
func ModelCheck(net *network.Network, formula string, extended map[string]symbolic.CSS) (CSS, error) {
	log := Log.WithField("formula", formula)
	log.Debug("parsing formula")
	tree, err := Parse(formula)
	if err != nil {
		return CSS{}, err
	}

	log.Debug("validating formula")
	canon, err := Validate(tree, net)
	if err != nil {
		return CSS{}, err
	}
	log = log.WithField("hybrid_groups", canon.K)

	log.Debug("allocating symbolic context")
	ctx, err := NewContext(net, canon)
	if err != nil {
		return CSS{}, err
	}

	log.Debug("evaluating formula")
	result, err := Evaluate(canon, ctx, extended)
	if err != nil {
		log.WithError(err).Warn("model check failed")
		return CSS{}, err
	}
	log.Info("model check complete")
	return result, nil
}

// Cardinality returns the number of distinct states, distinct colours, and
// distinct (state, colour) pairs a CSS denotes.
func Cardinality(css CSS) (states, colours, pairs *big.Int) {
	return css.Cardinality()
}
