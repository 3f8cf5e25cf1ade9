package protocol

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	// KindSimpleString is a CRLF-terminated text value ("+...\r\n").
	KindSimpleString Kind = iota
	// KindError is an error value ("-...\r\n") with an optional leading
	// kind token ("ERR", "WRONGTYPE", ...).
	KindError
	// KindInteger is a signed 64-bit integer (":n\r\n").
	KindInteger
	// KindBulkString is a length-prefixed, binary-safe string.
	KindBulkString
	// KindNullBulkString is the "$-1\r\n" sentinel. It is distinct from
	// an empty bulk string.
	KindNullBulkString
	// KindArray is an ordered, heterogeneous sequence of Values with an
	// explicit declared count. Arrays nest arbitrarily.
	KindArray
)

// Value is one parsed unit of the wire grammar. Exactly one variant is
// meaningful at a time, selected by Kind; the other fields are zero.
type Value struct {
	Kind Kind

	Str     string  // KindSimpleString
	ErrKind string  // KindError, may be empty
	ErrMsg  string  // KindError
	Int     int64   // KindInteger
	Bulk    []byte  // KindBulkString
	Items   []Value // KindArray
}

// SimpleString returns a simple string Value. The protocol forbids
// embedded CR or LF in s; this is not enforced here (parity with the
// original wire contract, see Encode).
func SimpleString(s string) Value {
	return Value{Kind: KindSimpleString, Str: s}
}

// Error returns an error Value. kind is the conventional leading token
// and may be empty, in which case only msg is encoded.
func Error(kind, msg string) Value {
	return Value{Kind: KindError, ErrKind: kind, ErrMsg: msg}
}

// Integer returns an integer Value.
func Integer(n int64) Value {
	return Value{Kind: KindInteger, Int: n}
}

// BulkString returns a binary-safe bulk string Value.
func BulkString(b []byte) Value {
	return Value{Kind: KindBulkString, Bulk: b}
}

// BulkStringText returns a bulk string Value from text.
func BulkStringText(s string) Value {
	return Value{Kind: KindBulkString, Bulk: []byte(s)}
}

// NullBulkString returns the null bulk string sentinel.
func NullBulkString() Value {
	return Value{Kind: KindNullBulkString}
}

// Array returns an array Value over the given items.
func Array(items ...Value) Value {
	return Value{Kind: KindArray, Items: items}
}

// Equal reports whether two Values are structurally identical.
// A null bulk string never equals an empty bulk string.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindSimpleString:
		return a.Str == b.Str
	case KindError:
		return a.ErrKind == b.ErrKind && a.ErrMsg == b.ErrMsg
	case KindInteger:
		return a.Int == b.Int
	case KindBulkString:
		return bytes.Equal(a.Bulk, b.Bulk)
	case KindNullBulkString:
		return true
	case KindArray:
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !Equal(a.Items[i], b.Items[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders a compact human-readable form for logs and test output.
func (v Value) String() string {
	switch v.Kind {
	case KindSimpleString:
		return "simple(" + v.Str + ")"
	case KindError:
		if v.ErrKind != "" {
			return "error(" + v.ErrKind + " " + v.ErrMsg + ")"
		}
		return "error(" + v.ErrMsg + ")"
	case KindInteger:
		return "int(" + strconv.FormatInt(v.Int, 10) + ")"
	case KindBulkString:
		return "bulk(" + strconv.Quote(string(v.Bulk)) + ")"
	case KindNullBulkString:
		return "null"
	case KindArray:
		parts := make([]string, len(v.Items))
		for i, it := range v.Items {
			parts[i] = it.String()
		}
		return "array[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprintf("unknown(kind=%d)", int(v.Kind))
}
