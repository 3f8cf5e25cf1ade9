package command

import (
	"fmt"

	"github.com/yndnr/wirekv-go/internal/keyspace"
	"github.com/yndnr/wirekv-go/internal/protocol"
)

// Execute runs cmd against the store and returns the reply value.
//
//	PING            -> +PONG
//	COMMAND         -> + (empty simple string)
//	ECHO <msg>      -> $<msg>
//	GET <key>       -> bulk value, or null when absent or expired
//	SET <key> <val> -> bulk previous live value, else +OK
//
// Set is the only mutating command; the store serializes its
// read-previous-then-write swap under one lock acquisition, so Execute
// itself needs no synchronization.
func Execute(cmd Command, store *keyspace.Store) protocol.Value {
	switch c := cmd.(type) {
	case Ping:
		return protocol.SimpleString("PONG")
	case CommandInfo:
		return protocol.SimpleString("")
	case Echo:
		return protocol.BulkString(c.Message)
	case Get:
		value, ok := store.Get(c.Key)
		if !ok {
			return protocol.NullBulkString()
		}
		return protocol.BulkString(value)
	case Set:
		prev, hadPrev := store.Set(c.Key, c.Value, c.Expiry)
		if hadPrev {
			return protocol.BulkString(prev)
		}
		return protocol.SimpleString("OK")
	default:
		panic(fmt.Sprintf("command: execute: unhandled command %T", cmd))
	}
}
