// Package hctlpsbn is the analysis façade for symbolic HCTL model checking
// over parametrised Boolean networks: it wires together the tokeniser,
// parser, validator, symbolic context, and evaluator in the token/ast/
// parser/validate/symbolic/network/eval sub-packages, exposing a small,
// stable entry point for callers that just want an answer for a formula
// against a network.
package hctlpsbn
