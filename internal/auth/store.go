// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth verifies login credentials against a hot-reloadable
// password file, with an optional TOTP second factor.
package auth

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

// ErrUnknownUser is returned by Verify when the username is not present in
// the password file.
var ErrUnknownUser = errors.New("unknown user")

// ErrBadPassword is returned by Verify when the bcrypt comparison fails.
var ErrBadPassword = errors.New("incorrect password")

// Store holds the parsed password file in memory and refreshes it when the
// backing file changes on disk.
type Store struct {
	mu   sync.RWMutex
	path string
	hash map[string]string

	totpMu sync.RWMutex
	totp   map[string]string

	watcher *fsnotify.Watcher
}

// NewStore loads path immediately and returns a Store ready for Verify
// calls. Call Watch separately to enable hot reload.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path, hash: make(map[string]string), totp: make(map[string]string)}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// reload re-reads the password file. Format: whitespace-separated tokens
// alternating username/hash; a username repeated later in the file wins
// over its earlier entry.
func (s *Store) reload() error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open password file: %w", err)
	}
	defer f.Close()

	fresh := make(map[string]string)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var fields []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields = append(fields, strings.Fields(line)...)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read password file: %w", err)
	}
	for i := 0; i+1 < len(fields); i += 2 {
		fresh[fields[i]] = fields[i+1]
	}

	s.mu.Lock()
	s.hash = fresh
	s.mu.Unlock()
	return nil
}

// Verify reports whether password is the correct credential for username.
func (s *Store) Verify(username, password string) error {
	s.mu.RLock()
	hash, exists := s.hash[username]
	s.mu.RUnlock()
	if !exists {
		return ErrUnknownUser
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrBadPassword
	}
	return nil
}

// SetTOTPSecret registers a TOTP secret for username, enabling the second
// factor for that account.
func (s *Store) SetTOTPSecret(username, secret string) {
	s.totpMu.Lock()
	defer s.totpMu.Unlock()
	s.totp[username] = secret
}

// RequiresTOTP reports whether username has a registered TOTP secret.
func (s *Store) RequiresTOTP(username string) bool {
	s.totpMu.RLock()
	defer s.totpMu.RUnlock()
	_, ok := s.totp[username]
	return ok
}

// VerifyTOTP validates code against username's registered secret.
func (s *Store) VerifyTOTP(username, code string) bool {
	s.totpMu.RLock()
	secret, ok := s.totp[username]
	s.totpMu.RUnlock()
	if !ok {
		return false
	}
	return totp.Validate(code, secret)
}

// Watch starts an fsnotify watcher that reloads the password file whenever
// it is written or recreated (common with editors that replace the file
// rather than write in place). It returns a stop function.
func (s *Store) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(s.path); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch password file: %w", err)
	}
	s.watcher = w

	done := make(chan struct{})
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					if err := s.reload(); err != nil {
						log.Printf("PASSWORD_FILE_RELOAD_ERROR | path=%s error=%v", s.path, err)
						continue
					}
					log.Printf("PASSWORD_FILE_RELOADED | path=%s", s.path)
				}
				if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
					if err := w.Add(s.path); err == nil {
						if err := s.reload(); err != nil {
							log.Printf("PASSWORD_FILE_RELOAD_ERROR | path=%s error=%v", s.path, err)
							continue
						}
						log.Printf("PASSWORD_FILE_RELOADED | path=%s", s.path)
					}
				}
			case werr, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("PASSWORD_FILE_WATCH_ERROR | error=%v", werr)
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		w.Close()
	}, nil
}
