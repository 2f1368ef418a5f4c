// Package expression compiles and evaluates boolean filter
// expressions against slug search results, e.g.
// `Words > 1 && len(Slug) < 30`.
package expression

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/kvasirlabs/grokipedia-go/pkg/slugindex"
)

// SlugInfo is the evaluation environment for one search result.
type SlugInfo struct {
	// Slug is the canonical identifier, e.g. "Joe_Biden".
	Slug string
	// Name is the normalized form, e.g. "joe biden".
	Name string
	// Words is the number of words in the normalized form.
	Words int
	// Length is the character length of the slug.
	Length int
}

// NewSlugInfo derives the evaluation environment from a slug.
func NewSlugInfo(slug string) SlugInfo {
	name := slugindex.Normalize(slug)
	return SlugInfo{
		Slug:   slug,
		Name:   name,
		Words:  len(strings.Fields(name)),
		Length: len(slug),
	}
}

// CompiledExpression pairs an expression with its compiled program.
type CompiledExpression struct {
	Text    string
	Program *vm.Program
}

// Compile compiles each expression against the SlugInfo environment.
func Compile(expressions []string) ([]CompiledExpression, error) {
	compiled := make([]CompiledExpression, 0, len(expressions))
	for _, text := range expressions {
		program, err := expr.Compile(text, expr.Env(SlugInfo{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile expression %q: %w", text, err)
		}
		compiled = append(compiled, CompiledExpression{Text: text, Program: program})
	}
	return compiled, nil
}

// MatchAll reports whether the slug satisfies every expression.
func MatchAll(info SlugInfo, expressions []CompiledExpression) (bool, error) {
	for _, expression := range expressions {
		result, err := expr.Run(expression.Program, info)
		if err != nil {
			return false, fmt.Errorf("check expression: %w", err)
		}

		matched, ok := result.(bool)
		if !ok {
			return false, fmt.Errorf("expression %q did not evaluate to a boolean", expression.Text)
		}
		if !matched {
			return false, nil
		}
	}
	return true, nil
}
