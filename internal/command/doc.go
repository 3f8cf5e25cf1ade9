// Package command turns decoded protocol values into typed requests and
// executes them against the keyspace.
//
// Parse validates shape, arity and argument types and produces an
// immutable Command; Execute is the only code path that touches the
// store. Validation failures are *command.Error values that map directly
// onto protocol error replies.
package command
