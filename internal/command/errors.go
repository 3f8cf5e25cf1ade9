package command

import "fmt"

// Error is a command-validation failure. Kind is the conventional
// leading token of a protocol error reply ("ERR" for all current
// failures); Message is the human-readable remainder.
type Error struct {
	Kind    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Kind + " " + e.Message
}

// Is supports errors.Is comparison against the sentinel values below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func newError(format string, args ...any) *Error {
	return &Error{Kind: "ERR", Message: fmt.Sprintf(format, args...)}
}

var (
	// ErrNotArray: a request must arrive as an array value.
	ErrNotArray = newError("invalid request type, expected array")

	// ErrEmptyArray: the request array carried no elements.
	ErrEmptyArray = newError("empty request array")

	// ErrInvalidFirstAttribute: the command name slot held something
	// other than a simple string or bulk string.
	ErrInvalidFirstAttribute = newError("invalid first element, expected simple string or bulk string")
)

func errUnknownCommand(name string) *Error {
	return newError("unknown command '%s'", name)
}

func errBadArguments(cmd string) *Error {
	return newError("wrong number or type of arguments for '%s' command", cmd)
}

func errUnsupportedOption(opt, cmd string) *Error {
	return newError("unsupported option '%s' for '%s' command", opt, cmd)
}

func errInvalidExpiry(cmd string) *Error {
	return newError("invalid expire time in '%s' command", cmd)
}
