package protocol

import (
	"fmt"
	"strconv"
)

var crlf = []byte{'\r', '\n'}

// Encode renders v into its exact wire form:
//
//	SimpleString(s)      -> +s\r\n
//	Error("", m)         -> -m\r\n
//	Error(k, m)          -> -k m\r\n
//	Integer(n)           -> :n\r\n
//	BulkString(b)        -> $len(b)\r\nb\r\n
//	NullBulkString       -> $-1\r\n
//	Array(items...)      -> *count\r\n + encoded items
//
// Encoding is deterministic and has no failure mode; an unhandled Kind
// means the value model grew without the encoder and is a programming
// error, so it panics.
func Encode(v Value) []byte {
	return AppendEncode(nil, v)
}

// AppendEncode appends the wire form of v to dst and returns the
// extended slice.
func AppendEncode(dst []byte, v Value) []byte {
	switch v.Kind {
	case KindSimpleString:
		dst = append(dst, '+')
		dst = append(dst, v.Str...)
		return append(dst, crlf...)
	case KindError:
		dst = append(dst, '-')
		if v.ErrKind != "" {
			dst = append(dst, v.ErrKind...)
			dst = append(dst, ' ')
		}
		dst = append(dst, v.ErrMsg...)
		return append(dst, crlf...)
	case KindInteger:
		dst = append(dst, ':')
		dst = strconv.AppendInt(dst, v.Int, 10)
		return append(dst, crlf...)
	case KindBulkString:
		dst = append(dst, '$')
		dst = strconv.AppendInt(dst, int64(len(v.Bulk)), 10)
		dst = append(dst, crlf...)
		dst = append(dst, v.Bulk...)
		return append(dst, crlf...)
	case KindNullBulkString:
		return append(dst, "$-1\r\n"...)
	case KindArray:
		dst = append(dst, '*')
		dst = strconv.AppendInt(dst, int64(len(v.Items)), 10)
		dst = append(dst, crlf...)
		for _, item := range v.Items {
			dst = AppendEncode(dst, item)
		}
		return dst
	default:
		panic(fmt.Sprintf("protocol: encode: unhandled value kind %d", int(v.Kind)))
	}
}
