// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// =============================================================================
// TOKENIZE TESTS
// =============================================================================

func TestTokenize_SingleCommand(t *testing.T) {
	cmds := Tokenize("ls -a")
	require.Len(t, cmds, 1)
	require.Equal(t, []string{"ls", "-a"}, cmds[0].Args)
	require.Empty(t, cmds[0].Op)
}

func TestTokenize_Operators(t *testing.T) {
	cmds := Tokenize("echo hi ; cat out.txt")
	require.Len(t, cmds, 2)
	require.Equal(t, ";", cmds[0].Op)
	require.Equal(t, []string{"cat", "out.txt"}, cmds[1].Args)
}

func TestTokenize_OperatorRequiresWhitespace(t *testing.T) {
	// "a|b" is whitespace-glued to its neighbors, so it is one plain
	// argument, not three tokens.
	cmds := Tokenize("echo a|b")
	require.Len(t, cmds, 1)
	require.Equal(t, []string{"echo", "a|b"}, cmds[0].Args)
}

func TestTokenize_QuotingGroupsWhitespace(t *testing.T) {
	cmds := Tokenize(`echo "hello world"`)
	require.Len(t, cmds, 1)
	require.Equal(t, []string{"echo", "hello world"}, cmds[0].Args)
}

func TestTokenize_BackslashEscape(t *testing.T) {
	cmds := Tokenize(`echo a\ b`)
	require.Len(t, cmds, 1)
	require.Equal(t, []string{"echo", "a b"}, cmds[0].Args)
}

func TestTokenize_UnbalancedQuoteIsEmpty(t *testing.T) {
	cmds := Tokenize(`echo "unterminated`)
	require.Nil(t, cmds)
}

func TestTokenize_TrailingOperatorHasNoFinalCommand(t *testing.T) {
	cmds := Tokenize("echo hi ;")
	require.Len(t, cmds, 1)
	require.Equal(t, ";", cmds[0].Op)
}
