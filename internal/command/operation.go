// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

// Decide is the operation handler: given the connector operator that
// followed a just-executed command and that command's Result, it decides
// how the running reply accumulator and the rest of the pipeline are
// affected (spec §4.6).
//
// newAccumulated is the reply buffer after folding in this step (unchanged
// for operators that redirect output elsewhere instead of emitting it).
// emitNow reports whether res.Output actually joined the buffer. skipNext
// reports whether the following pipeline entry is consumed by this
// operator (a redirection target, or a short-circuited branch) rather than
// run as a command. success propagates res.Success so a caller chaining
// further &&/|| can see through to it.
func Decide(op, accumulated string, res Result) (newAccumulated string, emitNow bool, skipNext bool, success bool) {
	switch op {
	case "", ";":
		return accumulated + res.Output, true, false, res.Success
	case "&&":
		return accumulated + res.Output, true, !res.Success, res.Success
	case "||":
		return accumulated + res.Output, true, res.Success, res.Success
	case ">":
		// The next pipeline entry is a bare filename operand, not a
		// command to run: this step's stripped output is written to it
		// instead of joining the reply.
		return accumulated, false, true, res.Success
	case "<":
		// The next pipeline entry is a bare filename operand whose content
		// was already supplied as this step's input; this step's output
		// joins the reply.
		return accumulated + res.Output, true, true, res.Success
	case "|":
		// Output is routed as the next command's input instead of
		// joining the reply; only the pipeline's final stage is visible
		// to the caller.
		return accumulated, false, false, res.Success
	default:
		return accumulated + res.Output, true, false, res.Success
	}
}
