// Package parse implements the shell's external parser collaborator
// described in spec.md §4.1: parse(line) → ParsedInput | failure. It fixes
// the single top-level separator for a line (one of PIPE, SEQ, PARA, or NONE
// when there is exactly one single input), then classifies each resulting
// piece as a Command, a nested Pipeline, or a Subshell whose raw text is
// left untouched for the caller to re-parse recursively (spec.md §3's
// "subshell contents are parsed recursively" invariant; see shellcore's
// exec/dispatch.go for the reuse of this function at every nesting level).
package parse

import (
	"fmt"
	"strings"

	"github.com/haricheung/coshell/internal/shellcore"
	"github.com/haricheung/coshell/internal/shellcore/tokenize"
)

// ParseError reports a failure to parse a line. The REPL treats any
// ParseError as "reprompt silently" per spec.md §4.1/§7 — the message is for
// diagnostics only, never shown to the interactive user.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string { return e.Msg }

func fail(format string, args ...any) error {
	return &ParseError{Msg: fmt.Sprintf(format, args...)}
}

// Parse turns one REPL line into a shellcore.ParsedInput. It never panics on
// malformed input; every rejection path returns a *ParseError.
func Parse(line string) (shellcore.ParsedInput, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return shellcore.ParsedInput{}, fail("empty input")
	}
	if err := checkBalanced(trimmed); err != nil {
		return shellcore.ParsedInput{}, err
	}

	hasSemi, err := hasDepth0Byte(trimmed, ';')
	if err != nil {
		return shellcore.ParsedInput{}, err
	}
	hasAmp, err := hasDepth0Byte(trimmed, '&')
	if err != nil {
		return shellcore.ParsedInput{}, err
	}
	if hasSemi && hasAmp {
		return shellcore.ParsedInput{}, fail("a line chooses exactly one top-level separator, found both ';' and '&'")
	}

	switch {
	case hasSemi:
		return buildTopLevel(trimmed, shellcore.SepSeq, ';')
	case hasAmp:
		return buildTopLevel(trimmed, shellcore.SepPara, '&')
	}

	hasPipe, err := hasDepth0Byte(trimmed, '|')
	if err != nil {
		return shellcore.ParsedInput{}, err
	}
	if hasPipe {
		return buildTopPipe(trimmed)
	}

	single, err := classify(trimmed)
	if err != nil {
		return shellcore.ParsedInput{}, err
	}
	return shellcore.ParsedInput{Sep: shellcore.SepNone, Inputs: []shellcore.SingleInput{single}}, nil
}

// buildTopLevel splits trimmed on every depth-0 occurrence of sep and
// classifies each piece as a Command, Pipeline, or Subshell single input —
// the SEQ and PARA rows of spec.md §4.2's dispatch table.
func buildTopLevel(trimmed string, kind shellcore.Separator, sep byte) (shellcore.ParsedInput, error) {
	pieces, err := splitDepth0(trimmed, sep)
	if err != nil {
		return shellcore.ParsedInput{}, err
	}
	inputs := make([]shellcore.SingleInput, 0, len(pieces))
	for _, p := range pieces {
		single, err := classify(p)
		if err != nil {
			return shellcore.ParsedInput{}, err
		}
		inputs = append(inputs, single)
	}
	return shellcore.ParsedInput{Sep: kind, Inputs: inputs}, nil
}

// buildTopPipe splits trimmed on every depth-0 '|' into pipeline stages. Per
// spec.md §4.4, a top-level pipeline stage may be a Command or a Subshell,
// but never a further nested Pipeline (the grammar affords only one pipe
// level at any single nesting depth).
func buildTopPipe(trimmed string) (shellcore.ParsedInput, error) {
	pieces, err := splitDepth0(trimmed, '|')
	if err != nil {
		return shellcore.ParsedInput{}, err
	}
	inputs := make([]shellcore.SingleInput, 0, len(pieces))
	for _, p := range pieces {
		piece := strings.TrimSpace(p)
		if piece == "" {
			return shellcore.ParsedInput{}, fail("empty pipeline stage")
		}
		if isParenWrapped(piece) {
			inputs = append(inputs, shellcore.SingleInput{Kind: shellcore.KindSubshell, Subshell: innerText(piece)})
			continue
		}
		words := tokenize.Words(piece)
		if len(words) == 0 {
			return shellcore.ParsedInput{}, fail("empty command in pipeline stage %q", piece)
		}
		inputs = append(inputs, shellcore.SingleInput{Kind: shellcore.KindCommand, Command: shellcore.Command{Args: words}})
	}
	return shellcore.ParsedInput{Sep: shellcore.SepPipe, Inputs: inputs}, nil
}

// classify turns one SEQ/PARA/NONE piece into a single input: a subshell if
// it is wholly parenthesized, a nested pipeline if it contains a depth-0
// '|', or a plain command otherwise.
func classify(piece string) (shellcore.SingleInput, error) {
	trimmed := strings.TrimSpace(piece)
	if trimmed == "" {
		return shellcore.SingleInput{}, fail("empty single input")
	}

	if isParenWrapped(trimmed) {
		return shellcore.SingleInput{Kind: shellcore.KindSubshell, Subshell: innerText(trimmed)}, nil
	}

	hasPipe, err := hasDepth0Byte(trimmed, '|')
	if err != nil {
		return shellcore.SingleInput{}, err
	}
	if hasPipe {
		stages, err := splitDepth0(trimmed, '|')
		if err != nil {
			return shellcore.SingleInput{}, err
		}
		cmds := make([]shellcore.Command, 0, len(stages))
		for _, s := range stages {
			stage := strings.TrimSpace(s)
			if stage == "" {
				return shellcore.SingleInput{}, fail("empty pipeline stage")
			}
			if isParenWrapped(stage) {
				return shellcore.SingleInput{}, fail("subshell stage %q not permitted in a nested pipeline", stage)
			}
			words := tokenize.Words(stage)
			if len(words) == 0 {
				return shellcore.SingleInput{}, fail("empty command in pipeline stage %q", stage)
			}
			cmds = append(cmds, shellcore.Command{Args: words})
		}
		return shellcore.SingleInput{Kind: shellcore.KindPipeline, Pipeline: cmds}, nil
	}

	words := tokenize.Words(trimmed)
	if len(words) == 0 {
		return shellcore.SingleInput{}, fail("empty command %q", trimmed)
	}
	return shellcore.SingleInput{Kind: shellcore.KindCommand, Command: shellcore.Command{Args: words}}, nil
}

// isParenWrapped reports whether trimmed is a single parenthesized group
// spanning its entire length — i.e. the '(' at index 0 closes at the final
// index, not partway through (which would make it a command invocation
// whose argument merely starts with a literal paren-like token).
func isParenWrapped(trimmed string) bool {
	if len(trimmed) < 2 || trimmed[0] != '(' || trimmed[len(trimmed)-1] != ')' {
		return false
	}
	depth := 0
	for i := 0; i < len(trimmed); i++ {
		switch trimmed[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i == len(trimmed)-1
			}
		}
	}
	return false
}

// innerText strips the outer parentheses confirmed present by isParenWrapped.
func innerText(trimmed string) string {
	return strings.TrimSpace(trimmed[1 : len(trimmed)-1])
}

// checkBalanced rejects lines whose parentheses do not balance.
func checkBalanced(s string) error {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return fail("unmatched ')' at position %d", i)
			}
		}
	}
	if depth != 0 {
		return fail("unclosed '(' in input")
	}
	return nil
}

// hasDepth0Byte reports whether b occurs outside any parenthesized group.
func hasDepth0Byte(s string, b byte) (bool, error) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false, fail("unmatched ')' at position %d", i)
			}
		default:
			if s[i] == b && depth == 0 {
				return true, nil
			}
		}
	}
	return false, nil
}

// splitDepth0 splits s on every depth-0 occurrence of sep, returning the
// pieces with surrounding whitespace trimmed. Parenthesized groups are never
// split, however deeply nested.
func splitDepth0(s string, sep byte) ([]string, error) {
	var pieces []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fail("unmatched ')' at position %d", i)
			}
		default:
			if s[i] == sep && depth == 0 {
				pieces = append(pieces, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	pieces = append(pieces, strings.TrimSpace(s[start:]))
	for _, p := range pieces {
		if p == "" {
			return nil, fail("empty single input between separators")
		}
	}
	return pieces, nil
}
