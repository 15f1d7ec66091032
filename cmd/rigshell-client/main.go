// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Command rigshell-client is a minimal interactive client for rigshell
// servers: it prompts for a CA certificate and address, logs in, then
// relays typed command lines and renders the styled replies.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"

	"github.com/punctIT/Secure-Shell/internal/clientapp"
)

func main() {
	stdin := bufio.NewReader(os.Stdin)

	fmt.Print("CA certificate path: ")
	caPath, _ := stdin.ReadString('\n')
	caPath = trimNewline(caPath)

	fmt.Print("server address (host:port): ")
	addr, _ := stdin.ReadString('\n')
	addr = trimNewline(addr)

	client, err := clientapp.Dial(addr, caPath)
	if err != nil {
		log.Fatalf("DIAL_ERROR | error=%v", err)
	}
	defer client.Close()

	if banner, err := client.ReadBanner(); err == nil {
		fmt.Print(banner)
	}

	if _, err := client.Login(stdin); err != nil {
		log.Fatalf("LOGIN_ERROR | error=%v", err)
	}

	if err := client.RunLoop(stdin); err != nil {
		log.Printf("SESSION_END | error=%v", err)
	}
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
