// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"context"
	"strings"
)

// Runner dispatches a single parsed Command to its builtin handler. It
// carries no per-call state of its own — everything it needs (sandbox
// root, current directory, piped input, the shared user registry) is
// threaded through Run's arguments, so a Runner is safe to share across
// connections.
type Runner struct {
	Users UserLister
}

// NewRunner builds a Runner backed by the given user registry.
func NewRunner(users UserLister) *Runner {
	return &Runner{Users: users}
}

// Run dispatches cmd against dir/root, returning the next current_dir
// (only ever different from dir when cmd is cd/next) and the handler's
// Result. input is nil when no piped input precedes cmd, non-nil
// (possibly pointing at an empty string) otherwise.
func (r *Runner) Run(ctx context.Context, cmd Command, dir, root string, input *string) (nextDir string, res Result) {
	if len(cmd.Args) == 0 {
		return dir, ok("")
	}

	verb := cmd.Args[0]
	switch {
	case verb == "cd" || verb == "next":
		return ChangeDir(cmd.Args, dir, root)
	case verb == "pwd":
		return dir, Pwd(dir, root)
	case verb == "ls":
		return dir, Ls(cmd.Args, dir, root, input != nil)
	case verb == "cat":
		return dir, Cat(cmd.Args, dir, root)
	case verb == "echo":
		return dir, Echo(cmd.Args, input != nil)
	case verb == "grep":
		return dir, Grep(cmd.Args, dir, root, input)
	case verb == "wc":
		return dir, Wc(cmd.Args, dir, root, input)
	case verb == "mkdir":
		return dir, Mkdir(cmd.Args, dir, root)
	case verb == "rmdir":
		return dir, Rmdir(cmd.Args, dir, root)
	case verb == "rm":
		return dir, Rm(cmd.Args, dir, root)
	case verb == "mv":
		return dir, Mv(cmd.Args, dir, root)
	case verb == "who" || verb == "users":
		return dir, Who(cmd.Args, r.Users)
	case strings.HasPrefix(verb, "./"):
		return dir, RunExecutable(ctx, cmd.Args, dir, root)
	default:
		return dir, Unknown(verb)
	}
}
