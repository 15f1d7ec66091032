// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ratelimit throttles repeated login attempts per remote address.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter tracks one token-bucket limiter per remote address, lazily
// created on first use and swept periodically so idle addresses don't
// accumulate forever.
type LoginLimiter struct {
	mu         sync.RWMutex
	limiters   map[string]*rate.Limiter
	lastAccess map[string]time.Time

	rps   rate.Limit
	burst int
}

// NewLoginLimiter builds a limiter allowing rps attempts per second with
// the given burst, per remote address.
func NewLoginLimiter(rps float64, burst int) *LoginLimiter {
	l := &LoginLimiter{
		limiters:   make(map[string]*rate.Limiter),
		lastAccess: make(map[string]time.Time),
		rps:        rate.Limit(rps),
		burst:      burst,
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether a login attempt from addr is currently permitted.
func (l *LoginLimiter) Allow(addr string) bool {
	return l.limiterFor(addr).Allow()
}

func (l *LoginLimiter) limiterFor(addr string) *rate.Limiter {
	l.mu.RLock()
	limiter, ok := l.limiters[addr]
	l.mu.RUnlock()
	if ok {
		l.touch(addr)
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if limiter, ok = l.limiters[addr]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(l.rps, l.burst)
	l.limiters[addr] = limiter
	l.lastAccess[addr] = time.Now()
	return limiter
}

func (l *LoginLimiter) touch(addr string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastAccess[addr] = time.Now()
}

func (l *LoginLimiter) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		l.sweep()
	}
}

func (l *LoginLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := time.Now().Add(-30 * time.Minute)
	for addr, last := range l.lastAccess {
		if last.Before(cutoff) {
			delete(l.limiters, addr)
			delete(l.lastAccess, addr)
		}
	}
}
