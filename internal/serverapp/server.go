// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package serverapp wires authentication, the session registry, and the
// command pipeline engine into a TLS listener: the accept loop, the
// welcome banner, and the per-connection read/dispatch/write cycle.
package serverapp

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/punctIT/Secure-Shell/internal/auditlog"
	"github.com/punctIT/Secure-Shell/internal/auth"
	"github.com/punctIT/Secure-Shell/internal/command"
	"github.com/punctIT/Secure-Shell/internal/ratelimit"
	"github.com/punctIT/Secure-Shell/internal/session"
)

const welcomeBanner = "Welcome to rigshell. Please login: login <user> <pass>\n"

// Server accepts TLS connections and drives each one through login and
// the command pipeline.
type Server struct {
	listener net.Listener
	root     string

	store    *auth.Store
	registry *session.Registry
	runner   *command.Runner
	engine   *command.Engine
	audit    *auditlog.Log
	limiter  *ratelimit.LoginLimiter
}

// Options configures a new Server.
type Options struct {
	Addr         string
	TLSConfig    *tls.Config
	Root         string
	PasswordFile string
	Audit        *auditlog.Log
}

// New builds a Server bound to opts.Addr, ready for Serve.
func New(opts Options) (*Server, error) {
	store, err := auth.NewStore(opts.PasswordFile)
	if err != nil {
		return nil, fmt.Errorf("load password file: %w", err)
	}
	if _, err := store.Watch(); err != nil {
		log.Printf("PASSWORD_WATCH_DISABLED | error=%v", err)
	}

	registry := session.NewRegistry()
	runner := command.NewRunner(registry)

	ln, err := tls.Listen("tcp", opts.Addr, opts.TLSConfig)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	return &Server{
		listener: ln,
		root:     command.Canonicalize(opts.Root),
		store:    store,
		registry: registry,
		runner:   runner,
		engine:   command.NewEngine(runner),
		audit:    opts.Audit,
		limiter:  ratelimit.NewLoginLimiter(1, 5),
	}, nil
}

// Serve runs the accept loop until ctx is canceled or the listener errs.
// Each accepted connection is handled on its own goroutine.
func (s *Server) Serve(ctx context.Context) error {
	log.Printf("SERVER_START | addr=%s root=%s", s.listener.Addr(), s.root)

	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				log.Printf("SERVER_SHUTDOWN | reason=context canceled")
				return nil
			default:
				return fmt.Errorf("accept: %w", err)
			}
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()
	connID := uuid.NewString()
	log.Printf("CONN_OPEN | conn=%s remote=%s", connID, remote)

	writer := bufio.NewWriter(conn)
	writer.WriteString(welcomeBanner)
	writer.Flush()

	// One scanner for the whole connection: a client that pipelines its
	// login and first command in a single write must not lose whatever
	// the login read buffered past the login line.
	scanner := bufio.NewScanner(conn)

	username, ok := s.authenticate(ctx, conn, scanner, writer, remote)
	if !ok {
		log.Printf("CONN_CLOSE | conn=%s remote=%s reason=auth_failed", connID, remote)
		return
	}
	defer func() {
		s.registry.Logout(username)
		log.Printf("CONN_CLOSE | conn=%s remote=%s user=%s", connID, remote, username)
	}()

	sess := session.New(s.root)
	sess.SetUsername(username)

	for scanner.Scan() {
		raw := scanner.Text()
		reply, nextDir := s.engine.Execute(ctx, raw, sess.Dir(), sess.Root())
		sess.SetDir(nextDir)

		if s.audit != nil {
			_ = s.audit.RecordRequest(ctx, username, raw, true)
		}

		envelope := buildEnvelope(reply, sess.Dir(), sess.Root())
		if _, err := writer.WriteString(envelope); err != nil {
			return
		}
		if err := writer.Flush(); err != nil {
			return
		}
	}
}

func (s *Server) authenticate(ctx context.Context, conn net.Conn, scanner *bufio.Scanner, writer *bufio.Writer, remote string) (string, bool) {
	host, _, _ := net.SplitHostPort(remote)

	for attempts := 0; attempts < 3; attempts++ {
		if !s.limiter.Allow(host) {
			writer.WriteString(wrapLoginReply("?&EToo many login attempts, try again later"))
			writer.Flush()
			_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
			return "", false
		}
		if !scanner.Scan() {
			return "", false
		}

		outcome := auth.HandleLogin(scanner.Text(), s.store, s.registry)
		writer.WriteString(wrapLoginReply(outcome.Reply))
		writer.Flush()

		if s.audit != nil {
			_ = s.audit.RecordLogin(ctx, remote, outcome.Username, outcome.Success, outcome.Reply)
		}
		if outcome.Success {
			return outcome.Username, true
		}
		if outcome.NeedsTOTP {
			attempts--
		}
	}
	return "", false
}

// buildEnvelope appends the "[-]:RELATIVE_PATH[-]\r\n\r\n" wire trailer to
// reply, carrying the session's current directory relative to its
// sandbox root.
func buildEnvelope(reply, dir, root string) string {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." {
		rel = ""
	}
	rel = filepath.ToSlash(rel)
	return fmt.Sprintf("%s[-]:%s[-]\r\n\r\n", reply, rel)
}

// wrapLoginReply appends the envelope trailer used during authentication,
// before a session (and therefore a relative path) exists.
func wrapLoginReply(reply string) string {
	return reply + "[-]:[-]\r\n\r\n"
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	return s.listener.Close()
}
