// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// Canonicalize resolves symlinks and "."/".." components in path. On
// failure it returns the original path unchanged (spec §4.3) so that a
// caller can still attempt a containment check against a path that does
// not yet exist.
func Canonicalize(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return resolved
}

// Contained reports whether canonicalize(p) lies within root (a prefix
// relationship after canonicalization).
func Contained(p, root string) bool {
	cp := Canonicalize(p)
	croot := Canonicalize(root)
	if cp == croot {
		return true
	}
	return strings.HasPrefix(cp, croot+string(filepath.Separator))
}

// Resolve joins dir and arg and reports the resulting path together with
// whether it remains within root. Every filesystem-touching builtin routes
// its target through Resolve.
func Resolve(dir, arg, root string) (path string, ok bool) {
	joined := filepath.Join(dir, arg)
	return joined, Contained(joined, root)
}

// ListDir returns the canonicalized paths of path's immediate children.
func ListDir(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, Canonicalize(filepath.Join(path, e.Name())))
	}
	sort.Strings(out)
	return out, nil
}

// IsExecutable reports whether path is an executable file. On POSIX this
// means any of the 0o111 mode bits is set; on Windows it is decided by
// file extension.
func IsExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		switch ext {
		case "exe", "bat", "cmd", "com":
			return true
		default:
			return false
		}
	}
	return info.Mode()&0o111 != 0
}

// ResetIfEscaped returns root if dir has escaped root (e.g. via a
// symlinked target resolving outside the sandbox), otherwise dir
// unchanged. Spec §3: "If current_dir ever escapes sandbox_root ... the
// next reply resets it to sandbox_root."
func ResetIfEscaped(dir, root string) string {
	if Contained(dir, root) {
		return dir
	}
	return root
}
