package hctlpsbn

import (
	"github.com/tessellated-space/hctl-psbn/eval"
	"github.com/tessellated-space/hctl-psbn/network"
	"github.com/tessellated-space/hctl-psbn/parser"
	"github.com/tessellated-space/hctl-psbn/symbolic"
	"github.com/tessellated-space/hctl-psbn/token"
	"github.com/tessellated-space/hctl-psbn/validate"
)

// The façade re-exports the error taxonomy raised by its collaborators
// under one set of names, without changing where each is actually detected:
// LexicalError and ParseError come from tokenising/parsing the formula
// string, FreeVariable and UnknownProposition from validating and (when
// vocabulary wasn't yet known) evaluating it, WildCardMissing and
// IncompatibleContext from evaluating extended formulae against a supplied
// context.
type (
	LexicalError        = token.LexicalError
	ParseError          = parser.ParseError
	FreeVariable        = validate.FreeVariable
	UnknownProposition  = network.UnknownProposition
	WildCardMissing     = eval.WildCardMissing
	IncompatibleContext = symbolic.IncompatibleContext
)
