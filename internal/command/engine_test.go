// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestEngine() *Engine {
	return NewEngine(NewRunner(fakeUsers{}))
}

// =============================================================================
// PIPELINE ENGINE TESTS
// =============================================================================

func TestEngine_SemicolonConcatenates(t *testing.T) {
	root := t.TempDir()
	e := newTestEngine()

	reply, dir := e.Execute(context.Background(), "echo one ; echo two", root, root)
	require.Equal(t, root, dir)
	require.Contains(t, Strip(reply), "one")
	require.Contains(t, Strip(reply), "two")
}

func TestEngine_RedirectWritesStrippedOutput(t *testing.T) {
	root := t.TempDir()
	e := newTestEngine()

	_, _ = e.Execute(context.Background(), "echo hello > out.txt ; cat out.txt", root, root)

	data, err := os.ReadFile(filepath.Join(root, "out.txt"))
	require.NoError(t, err)
	require.Equal(t, " hello", string(data))
}

func TestEngine_InputRedirectFeedsFileContent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "words.txt"), []byte("one two three"), 0o644))
	e := newTestEngine()

	reply, _ := e.Execute(context.Background(), "wc < words.txt", root, root)
	require.Equal(t, "3", Strip(reply))
}

func TestEngine_AndShortCircuitsOnFailure(t *testing.T) {
	root := t.TempDir()
	e := newTestEngine()

	reply, _ := e.Execute(context.Background(), "cd missing && echo unreachable", root, root)
	require.NotContains(t, Strip(reply), "unreachable")
}

func TestEngine_OrRunsOnlyOnFailure(t *testing.T) {
	root := t.TempDir()
	e := newTestEngine()

	reply, _ := e.Execute(context.Background(), "cd missing || echo fallback", root, root)
	require.Contains(t, Strip(reply), "fallback")
}

func TestEngine_PipeRoutesStrippedOutputAsInput(t *testing.T) {
	root := t.TempDir()
	e := newTestEngine()

	reply, _ := e.Execute(context.Background(), "echo alpha beta | grep beta", root, root)
	require.Contains(t, reply, ColorHighlight("beta"))
}

func TestEngine_CdUpdatesCurrentDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	e := newTestEngine()

	_, dir := e.Execute(context.Background(), "cd sub", root, root)
	require.Equal(t, Canonicalize(filepath.Join(root, "sub")), dir)
}

func TestEngine_UnbalancedQuotesIsNoop(t *testing.T) {
	root := t.TempDir()
	e := newTestEngine()

	reply, dir := e.Execute(context.Background(), `echo "oops`, root, root)
	require.Empty(t, reply)
	require.Equal(t, root, dir)
}

func TestEngine_TrailingAndOperatorYieldsEmptyPayload(t *testing.T) {
	root := t.TempDir()
	e := newTestEngine()

	reply, _ := e.Execute(context.Background(), "echo hello &&", root, root)
	require.Empty(t, reply)
}

func TestEngine_TrailingOrOperatorYieldsEmptyPayload(t *testing.T) {
	root := t.TempDir()
	e := newTestEngine()

	reply, _ := e.Execute(context.Background(), "cd missing ||", root, root)
	require.Empty(t, reply)
}

func TestEngine_TrailingPipeOperatorYieldsEmptyPayload(t *testing.T) {
	root := t.TempDir()
	e := newTestEngine()

	reply, _ := e.Execute(context.Background(), "echo hello |", root, root)
	require.Empty(t, reply)
}

func TestEngine_RedirectFailureReportsErrorAndFlipsSuccess(t *testing.T) {
	root := t.TempDir()
	e := newTestEngine()

	// The destination directory component is a file, so the write beneath
	// it can never succeed.
	require.NoError(t, os.WriteFile(filepath.Join(root, "blocker"), []byte("x"), 0o644))

	reply, _ := e.Execute(context.Background(), "echo hi > blocker/out.txt", root, root)
	require.Equal(t, "Error", reply)
}

func TestEngine_CatRejectsPathEscapingSandbox(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(filepath.Dir(root), "engine-outside.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o644))
	e := newTestEngine()

	reply, _ := e.Execute(context.Background(), "cat ../"+filepath.Base(outside), root, root)
	require.Contains(t, Strip(reply), "No such file or directory")
	require.NotContains(t, reply, "secret")
}
