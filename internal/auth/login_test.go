// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"testing"

	"github.com/punctIT/Secure-Shell/internal/session"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// LOGIN TESTS
// =============================================================================

func TestHandleLogin_Success(t *testing.T) {
	path := writePasswordFile(t, map[string]string{"alice": "hunter2"})
	store, err := NewStore(path)
	require.NoError(t, err)
	registry := session.NewRegistry()

	out := HandleLogin("login alice hunter2", store, registry)
	require.True(t, out.Success)
	require.Equal(t, "alice", out.Username)
	require.Contains(t, out.Reply, successReply)
}

func TestHandleLogin_WrongPassword(t *testing.T) {
	path := writePasswordFile(t, map[string]string{"alice": "hunter2"})
	store, err := NewStore(path)
	require.NoError(t, err)
	registry := session.NewRegistry()

	out := HandleLogin("login alice wrong", store, registry)
	require.False(t, out.Success)
	require.Contains(t, out.Reply, "Incorrect password")
}

func TestHandleLogin_RejectsSecondConcurrentSession(t *testing.T) {
	path := writePasswordFile(t, map[string]string{"alice": "hunter2"})
	store, err := NewStore(path)
	require.NoError(t, err)
	registry := session.NewRegistry()

	first := HandleLogin("login alice hunter2", store, registry)
	require.True(t, first.Success)

	second := HandleLogin("login alice hunter2", store, registry)
	require.False(t, second.Success)
	require.Contains(t, second.Reply, "already logged in")
}

func TestHandleLogin_InvalidFormat(t *testing.T) {
	path := writePasswordFile(t, map[string]string{"alice": "hunter2"})
	store, err := NewStore(path)
	require.NoError(t, err)
	registry := session.NewRegistry()

	out := HandleLogin("login alice", store, registry)
	require.False(t, out.Success)
	require.Contains(t, out.Reply, "Invalid login format")
}
