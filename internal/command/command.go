package command

import (
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/wirekv-go/internal/protocol"
)

// Command is a parsed, validated request. Implementations are the only
// members of this package's union; a Command is built once per request
// and never mutated.
type Command interface {
	// Name returns the canonical command name, used for metrics labels
	// and logging.
	Name() string
}

// Ping answers liveness probes.
type Ping struct{}

// Name implements Command.
func (Ping) Name() string { return "PING" }

// CommandInfo is the COMMAND stub: a placeholder enumeration of
// supported features, answered with an empty simple string.
type CommandInfo struct{}

// Name implements Command.
func (CommandInfo) Name() string { return "COMMAND" }

// Echo returns its message back to the client.
type Echo struct {
	Message []byte
}

// Name implements Command.
func (Echo) Name() string { return "ECHO" }

// Get reads one key from the keyspace.
type Get struct {
	Key string
}

// Name implements Command.
func (Get) Name() string { return "GET" }

// Set writes one key. Expiry is a relative time-to-live; zero means the
// entry never expires.
type Set struct {
	Key    string
	Value  []byte
	Expiry time.Duration
}

// Name implements Command.
func (Set) Name() string { return "SET" }

// Parse builds a Command from a decoded top-level value.
//
// The request must be a non-empty array whose first element is a simple
// string or bulk string naming the command, matched case-insensitively.
// Remaining elements are validated per command: PING and COMMAND take no
// arguments, ECHO and GET take exactly one string argument, and SET
// takes key and value plus an optional "PX <milliseconds>" pair.
func Parse(v protocol.Value) (Command, error) {
	if v.Kind != protocol.KindArray {
		return nil, ErrNotArray
	}
	if len(v.Items) == 0 {
		return nil, ErrEmptyArray
	}

	name, ok := argText(v.Items[0])
	if !ok {
		return nil, ErrInvalidFirstAttribute
	}
	args := v.Items[1:]

	switch strings.ToUpper(name) {
	case "PING":
		return Ping{}, nil
	case "COMMAND":
		return CommandInfo{}, nil
	case "ECHO":
		return parseEcho(args)
	case "GET":
		return parseGet(args)
	case "SET":
		return parseSet(args)
	default:
		return nil, errUnknownCommand(name)
	}
}

func parseEcho(args []protocol.Value) (Command, error) {
	if len(args) != 1 {
		return nil, errBadArguments("ECHO")
	}
	msg, ok := argBytes(args[0])
	if !ok {
		return nil, errBadArguments("ECHO")
	}
	return Echo{Message: msg}, nil
}

func parseGet(args []protocol.Value) (Command, error) {
	if len(args) != 1 {
		return nil, errBadArguments("GET")
	}
	key, ok := argText(args[0])
	if !ok {
		return nil, errBadArguments("GET")
	}
	return Get{Key: key}, nil
}

func parseSet(args []protocol.Value) (Command, error) {
	if len(args) != 2 && len(args) != 4 {
		return nil, errBadArguments("SET")
	}

	key, ok := argText(args[0])
	if !ok {
		return nil, errBadArguments("SET")
	}
	value, ok := argBytes(args[1])
	if !ok {
		return nil, errBadArguments("SET")
	}

	var expiry time.Duration
	if len(args) == 4 {
		opt, ok := argText(args[2])
		if !ok {
			return nil, errBadArguments("SET")
		}
		if !strings.EqualFold(opt, "PX") {
			return nil, errUnsupportedOption(opt, "SET")
		}
		millisText, ok := argText(args[3])
		if !ok {
			return nil, errBadArguments("SET")
		}
		millis, err := strconv.ParseInt(millisText, 10, 64)
		if err != nil || millis < 0 {
			return nil, errInvalidExpiry("SET")
		}
		expiry = time.Duration(millis) * time.Millisecond
	}

	return Set{Key: key, Value: value, Expiry: expiry}, nil
}

// argText extracts the textual payload of a simple string or bulk string
// argument.
func argText(v protocol.Value) (string, bool) {
	switch v.Kind {
	case protocol.KindSimpleString:
		return v.Str, true
	case protocol.KindBulkString:
		return string(v.Bulk), true
	}
	return "", false
}

// argBytes extracts the raw payload of a simple string or bulk string
// argument.
func argBytes(v protocol.Value) ([]byte, bool) {
	switch v.Kind {
	case protocol.KindSimpleString:
		return []byte(v.Str), true
	case protocol.KindBulkString:
		return v.Bulk, true
	}
	return nil, false
}
