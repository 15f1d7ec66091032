// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Command rigshell-server runs the TLS shell server: it prompts for a
// certificate, key, sandbox root, and password file (prefilled from the
// last-accepted answers), then serves connections until interrupted.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/punctIT/Secure-Shell/internal/auditlog"
	"github.com/punctIT/Secure-Shell/internal/config"
	"github.com/punctIT/Secure-Shell/internal/serverapp"
	"github.com/punctIT/Secure-Shell/internal/transport"
)

// listenAddr is fixed per deployment rather than operator-configurable.
const listenAddr = "0.0.0.0:8443"

func main() {
	stdin := bufio.NewReader(os.Stdin)
	cfgPath := config.Path()
	defaults, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("CONFIG_LOAD_ERROR | path=%s error=%v", cfgPath, err)
	}

	certPath := promptUntilValid(stdin, "TLS certificate path", defaults.CertPath, fileExists)
	keyPath := promptUntilValid(stdin, "TLS private key path", defaults.KeyPath, fileExists)
	root := promptUntilValid(stdin, "sandbox root directory", defaults.RootDir, dirExists)
	passwordFile := promptUntilValid(stdin, "password file path", defaults.PasswordFile, fileExists)
	auditDBPath := promptWithDefault(stdin, "audit database path", orDefault(defaults.AuditDBPath, "./rigshell-audit.db"))

	if err := config.Save(cfgPath, config.Defaults{
		CertPath:     certPath,
		KeyPath:      keyPath,
		RootDir:      root,
		PasswordFile: passwordFile,
		AuditDBPath:  auditDBPath,
	}); err != nil {
		log.Printf("CONFIG_SAVE_ERROR | path=%s error=%v", cfgPath, err)
	}

	audit, err := auditlog.Open(auditDBPath)
	if err != nil {
		log.Fatalf("AUDIT_LOG_OPEN_ERROR | error=%v", err)
	}
	defer audit.Close()

	tlsConfig, err := transport.ServerTLSConfig(certPath, keyPath)
	if err != nil {
		log.Fatalf("TLS_CONFIG_ERROR | error=%v", err)
	}

	srv, err := serverapp.New(serverapp.Options{
		Addr:         listenAddr,
		TLSConfig:    tlsConfig,
		Root:         root,
		PasswordFile: passwordFile,
		Audit:        audit,
	})
	if err != nil {
		log.Fatalf("SERVER_INIT_ERROR | error=%v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := srv.Serve(ctx); err != nil {
		log.Fatalf("SERVER_ERROR | error=%v", err)
	}
}

func promptUntilValid(stdin *bufio.Reader, label, defaultVal string, valid func(string) bool) string {
	for {
		value := promptWithDefault(stdin, label, defaultVal)
		if valid(value) {
			return value
		}
		fmt.Printf("invalid %s: %q, try again\n", label, value)
	}
}

func promptWithDefault(stdin *bufio.Reader, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("%s: ", label)
	}
	line, _ := stdin.ReadString('\n')
	line = trimNewline(line)
	if line == "" {
		return defaultVal
	}
	return line
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && info.IsDir()
}
