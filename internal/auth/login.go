// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"strings"

	"github.com/punctIT/Secure-Shell/internal/session"
)

// LoginOutcome is the result of processing one "login" wire message.
type LoginOutcome struct {
	Username  string
	Reply     string
	Success   bool
	NeedsTOTP bool
}

// successReply is the literal wire text on a successful login (the
// misspelling is part of the protocol, not a typo).
const successReply = "?&NSuccesful login"

// HandleLogin parses and authenticates a "login <user> <pass> [totp]" line
// against store, and reserves the username in registry on success. The
// caller is responsible for releasing the registry entry on disconnect.
func HandleLogin(raw string, store *Store, registry *session.Registry) LoginOutcome {
	fields := strings.Fields(raw)
	if len(fields) < 3 || fields[0] != "login" {
		return errOutcome("Invalid login format")
	}

	username, password := fields[1], fields[2]

	if err := store.Verify(username, password); err != nil {
		switch err {
		case ErrUnknownUser:
			return errOutcome("Invalid username")
		default:
			return errOutcome("Incorrect password")
		}
	}

	if store.RequiresTOTP(username) {
		if len(fields) < 4 {
			return LoginOutcome{NeedsTOTP: true, Reply: "?&ETOTP code required"}
		}
		if !store.VerifyTOTP(username, fields[3]) {
			return errOutcome("Invalid TOTP code")
		}
	}

	if !registry.TryLogin(username) {
		return errOutcome("User already logged in")
	}

	return LoginOutcome{
		Username: username,
		Success:  true,
		Reply:    successReply,
	}
}

func errOutcome(msg string) LoginOutcome {
	return LoginOutcome{Reply: "?&E" + msg}
}
