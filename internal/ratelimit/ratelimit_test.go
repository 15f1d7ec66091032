// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// =============================================================================
// LOGIN LIMITER TESTS
// =============================================================================

func TestLoginLimiter_AllowsWithinBurst(t *testing.T) {
	l := NewLoginLimiter(1, 3)
	require.True(t, l.Allow("10.0.0.1"))
	require.True(t, l.Allow("10.0.0.1"))
	require.True(t, l.Allow("10.0.0.1"))
}

func TestLoginLimiter_BlocksPastBurst(t *testing.T) {
	l := NewLoginLimiter(0.001, 1)
	require.True(t, l.Allow("10.0.0.2"))
	require.False(t, l.Allow("10.0.0.2"))
}

func TestLoginLimiter_AddressesAreIndependent(t *testing.T) {
	l := NewLoginLimiter(0.001, 1)
	require.True(t, l.Allow("10.0.0.3"))
	require.True(t, l.Allow("10.0.0.4"))
}
