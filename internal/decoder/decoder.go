package decoder

import (
	"errors"

	"github.com/yndnr/wirekv-go/internal/protocol"
)

// Decoder is the pull contract shared by the stream and batch
// implementations: Next blocks until a complete top-level value is
// available, the source is exhausted, or the input turns out to be
// malformed. A Decoder is single-consumer and not restartable.
type Decoder interface {
	Next() (protocol.Value, error)
}

// Protocol limits to prevent DoS attacks. Declared lengths arrive before
// any payload, so they must never be trusted for allocation.
const (
	// MaxArrayLen limits the number of elements in an array. Commands
	// have a handful of arguments; nested replies stay small too.
	MaxArrayLen = 1024

	// MaxBulkLen limits the size of a single bulk string (512KB).
	MaxBulkLen = 512 * 1024
)

var (
	// ErrClosed signals that the byte source ended cleanly. It is the
	// normal termination of a connection's decode sequence, not a
	// corruption report.
	ErrClosed = errors.New("decoder: source closed")

	// ErrProtocol signals structurally malformed input (bad length,
	// illegal terminator, non-numeric size). It is fatal to the decode
	// sequence; callers should tear the connection down.
	ErrProtocol = errors.New("decoder: protocol error")

	// ErrLimitExceeded signals a declared length beyond MaxArrayLen or
	// MaxBulkLen. Fatal like ErrProtocol, but distinguishable so callers
	// can flag the connection as hostile rather than corrupted.
	ErrLimitExceeded = errors.New("decoder: limit exceeded")
)
