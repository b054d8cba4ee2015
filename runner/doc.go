// Package runner drives external AI coding-agent processes through a
// normalized event protocol.
//
// Each agent tool speaks its own line-delimited JSON dialect on stdout; a
// Protocol implementation per tool (claude, codex) decodes raw lines into
// the closed canonical RunnerEvent set. The Process runner owns subprocess
// lifecycle: spawning, prompt delivery on stdin, line-buffered streaming,
// bounded termination waits and idempotent Stop.
//
// Normalization guarantees (see core.Handle):
//   - nothing the agent emits is silently discarded: a line that does not
//     parse as JSON, or parses but has an unrecognized item type, is coerced
//     into a log event
//   - exactly one session event per handle, as soon as the tool reports its
//     own session identifier
//   - exactly one terminal event per handle: a final, or an error
//     synthesized from a nonzero exit, a timeout, or a protocol violation
package runner
