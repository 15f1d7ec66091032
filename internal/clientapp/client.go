// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package clientapp implements the minimal interactive client: it dials
// the server over TLS with a given CA certificate, authenticates, then
// loops reading command lines from the terminal and rendering styled
// replies.
package clientapp

import (
	"bufio"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Client drives one interactive session against a rigshell server.
type Client struct {
	conn   *tls.Conn
	reader *bufio.Reader
	out    io.Writer
}

// Dial connects to addr over TLS, verifying the server certificate against
// the CA certificate loaded from caCertPath.
func Dial(addr, caCertPath string) (*Client, error) {
	pem, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("read CA certificate: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no valid certificates found in %s", caCertPath)
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	return &Client{conn: conn, reader: bufio.NewReader(conn), out: os.Stdout}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

// ReadBanner drains the server's welcome line.
func (c *Client) ReadBanner() (string, error) {
	return c.reader.ReadString('\n')
}

// Login prompts for a username on stdin and a password via the terminal's
// non-echoing read mode, then performs the login handshake.
func (c *Client) Login(stdin *bufio.Reader) (string, error) {
	fmt.Fprint(c.out, "username: ")
	username, err := stdin.ReadString('\n')
	if err != nil {
		return "", err
	}
	username = strings.TrimSpace(username)

	fmt.Fprint(c.out, "password: ")
	passBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(c.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if _, err := fmt.Fprintf(c.conn, "login %s %s\n", username, string(passBytes)); err != nil {
		return "", err
	}
	return c.readEnvelope()
}

// readEnvelope reads lines until the buffer ends with "\r\n\r\n",
// returning the raw envelope as received.
func (c *Client) readEnvelope() (string, error) {
	var out strings.Builder
	for {
		line, err := c.reader.ReadString('\n')
		out.WriteString(line)
		if err != nil {
			return out.String(), err
		}
		if strings.HasSuffix(out.String(), "\r\n\r\n") {
			return out.String(), nil
		}
	}
}

// RunLoop reads command lines from stdin until EOF or a local "exit"
// command, sending each to the server and rendering its reply. "clear"
// and "cls" are handled locally without a round trip.
func (c *Client) RunLoop(stdin *bufio.Reader) error {
	for {
		fmt.Fprint(c.out, "> ")
		line, err := stdin.ReadString('\n')
		if err != nil {
			return err
		}
		trimmed := strings.TrimSpace(line)

		switch trimmed {
		case "exit":
			return nil
		case "clear", "cls":
			fmt.Fprint(c.out, "\033[2J\033[H")
			continue
		}

		if _, err := fmt.Fprintf(c.conn, "%s\n", trimmed); err != nil {
			return err
		}
		envelope, err := c.readEnvelope()
		if err != nil {
			return err
		}
		fmt.Fprint(c.out, Render(envelope))
	}
}
