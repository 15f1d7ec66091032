// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import "strings"

// Command is one parsed step of a pipeline: a verb plus arguments, plus
// an optional connector operator describing how it joins the next step.
// The last command in a sequence has an empty Op unless the input ended
// with an operator, in which case that operator stays on it.
type Command struct {
	Args []string
	Op   string
}

var operators = map[string]bool{
	"&&": true,
	"||": true,
	"|":  true,
	"<":  true,
	">":  true,
	";":  true,
}

// Tokenize splits raw into a sequence of Command records, honoring
// balanced single/double quotes and backslash escapes. Operator tokens
// must be whitespace-separated from their neighbors (spec §4.1): a token
// that is not itself exactly one of the operator literals is always
// treated as a plain argument, never split out of a larger token.
//
// On unbalanced quoting the sequence is empty — the caller treats this as
// a silent no-op (spec §4.1, §7).
func Tokenize(raw string) []Command {
	words, ok := splitWords(raw)
	if !ok {
		return nil
	}

	var cmds []Command
	var current []string
	for _, w := range words {
		if operators[w] {
			cmds = append(cmds, Command{Args: current, Op: w})
			current = nil
			continue
		}
		current = append(current, w)
	}
	if len(current) > 0 {
		cmds = append(cmds, Command{Args: current})
	}
	return cmds
}

// splitWords performs shell-style word splitting: runs of unquoted
// whitespace separate words; single and double quotes group whitespace
// into one word and are themselves removed; a backslash escapes the next
// rune outside single quotes. Returns ok=false on unbalanced quoting.
func splitWords(raw string) ([]string, bool) {
	raw = strings.TrimSpace(raw)

	var words []string
	var cur strings.Builder
	haveWord := false

	var quote rune // 0, '\'', or '"'
	escaped := false

	flush := func() {
		if haveWord {
			words = append(words, cur.String())
			cur.Reset()
			haveWord = false
		}
	}

	for _, r := range raw {
		switch {
		case escaped:
			cur.WriteRune(r)
			haveWord = true
			escaped = false
		case quote != 0:
			switch {
			case r == quote:
				quote = 0
			case r == '\\' && quote == '"':
				escaped = true
			default:
				cur.WriteRune(r)
				haveWord = true
			}
		case r == '\\':
			escaped = true
			haveWord = true
		case r == '\'' || r == '"':
			quote = r
			haveWord = true
		case isSpace(r):
			flush()
		default:
			cur.WriteRune(r)
			haveWord = true
		}
	}
	flush()

	if quote != 0 || escaped {
		return nil, false
	}
	return words, true
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}
