package decoder

import (
	"fmt"
	"io"
	"strconv"

	"github.com/yndnr/wirekv-go/internal/protocol"
)

// readChunk is the size of a single source read. The state machine does
// not care how many bytes a read returns; this only bounds syscall
// frequency.
const readChunk = 1024

// state enumerates the positions of the per-byte machine. There is no
// terminal state: after each completed value the machine re-enters
// stateTypeTag and runs for the lifetime of the connection.
type state int

const (
	stateTypeTag state = iota
	stateSimpleString
	stateError
	stateInteger
	stateBulkSize
	stateBulkBytes
	stateArraySize
)

// arrayFrame is one level of in-progress array nesting. The explicit
// stack replaces recursive-descent call state: nesting depth is driven
// by network input, so it must not live on the goroutine stack.
type arrayFrame struct {
	items     []protocol.Value
	remaining int
}

// Stream decodes values from an arbitrarily segmented byte source, one
// byte at a time. Parsing suspends only inside fill, when the input
// buffer is empty and more source bytes are needed; it never suspends
// mid-value.
type Stream struct {
	src io.Reader

	input   []byte // unconsumed source bytes
	readBuf []byte

	state     state
	scalar    []byte // accumulator for scalars, sizes and bulk payloads
	pendingCR bool
	bulkLeft  int

	stack []arrayFrame
	queue []protocol.Value

	err error // sticky: ErrClosed or a structural failure
}

// NewStream returns a streaming decoder reading from src.
func NewStream(src io.Reader) *Stream {
	return &Stream{
		src:     src,
		readBuf: make([]byte, readChunk),
	}
}

// Next returns the next fully parsed top-level value. It drives the
// machine over buffered input, requesting more source bytes only when
// the buffer runs dry. Once Next has returned ErrClosed or a protocol
// error, it returns that same error forever.
func (d *Stream) Next() (protocol.Value, error) {
	for {
		if len(d.queue) > 0 {
			v := d.queue[0]
			d.queue = d.queue[1:]
			return v, nil
		}
		if d.err != nil {
			return protocol.Value{}, d.err
		}
		if len(d.input) == 0 {
			if err := d.fill(); err != nil {
				d.err = err
				return protocol.Value{}, err
			}
		}
		for len(d.input) > 0 && len(d.queue) == 0 {
			b := d.input[0]
			d.input = d.input[1:]
			if err := d.step(b); err != nil {
				d.err = err
				return protocol.Value{}, err
			}
		}
	}
}

// fill blocks on the source for at least one byte. Zero bytes or a read
// failure both mean the peer is gone, which is the clean closed signal
// rather than a parse error.
func (d *Stream) fill() error {
	n, err := d.src.Read(d.readBuf)
	if n > 0 {
		d.input = append(d.input[:0], d.readBuf[:n]...)
		return nil
	}
	if err == nil {
		err = io.EOF
	}
	return fmt.Errorf("%w: %v", ErrClosed, err)
}

// step advances the machine by exactly one byte.
func (d *Stream) step(b byte) error {
	switch d.state {
	case stateTypeTag:
		switch b {
		case '+':
			d.state = stateSimpleString
		case '-':
			d.state = stateError
		case ':':
			d.state = stateInteger
		case '$':
			d.state = stateBulkSize
		case '*':
			d.state = stateArraySize
		default:
			// Soft idle: a stray byte between values is dropped, not
			// treated as corruption.
		}
		return nil
	case stateSimpleString:
		return d.scanScalar(b, d.commitSimpleString)
	case stateError:
		return d.scanScalar(b, d.commitError)
	case stateInteger:
		return d.scanScalar(b, d.commitInteger)
	case stateBulkSize:
		return d.scanSize(b, d.commitBulkSize)
	case stateBulkBytes:
		return d.stepBulkByte(b)
	case stateArraySize:
		return d.scanSize(b, d.commitArraySize)
	}
	return fmt.Errorf("%w: invalid decoder state %d", ErrProtocol, int(d.state))
}

// scanScalar accumulates simple-string/error/integer content until a
// CRLF pair. A lone CR not followed by LF is literal content: the CR is
// pushed back together with the byte that followed it, and a CR run
// like "\r\r\n" keeps all but the final CR as content.
func (d *Stream) scanScalar(b byte, commit func([]byte) error) error {
	switch {
	case b == '\n' && d.pendingCR:
		d.pendingCR = false
		err := commit(d.scalar)
		d.scalar = d.scalar[:0]
		d.state = stateTypeTag
		return err
	case b == '\r' && d.pendingCR:
		d.scalar = append(d.scalar, '\r')
	case b == '\r':
		d.pendingCR = true
	case d.pendingCR:
		d.pendingCR = false
		d.scalar = append(d.scalar, '\r', b)
	default:
		d.scalar = append(d.scalar, b)
	}
	return nil
}

// scanSize accumulates a decimal, optionally signed, length field until
// CRLF. Anything else in a length position is fatal.
func (d *Stream) scanSize(b byte, commit func(int64) error) error {
	switch {
	case b == '\n' && d.pendingCR:
		d.pendingCR = false
		n, err := strconv.ParseInt(string(d.scalar), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: malformed length %q", ErrProtocol, d.scalar)
		}
		d.scalar = d.scalar[:0]
		return commit(n)
	case d.pendingCR:
		return fmt.Errorf("%w: CR inside length field", ErrProtocol)
	case b == '\r':
		d.pendingCR = true
	case b == '-' && len(d.scalar) == 0, b >= '0' && b <= '9':
		d.scalar = append(d.scalar, b)
	default:
		return fmt.Errorf("%w: unexpected byte %q in length field", ErrProtocol, b)
	}
	return nil
}

// stepBulkByte consumes bulk string payload. While payload bytes remain
// every byte is content, CR and LF included; at the terminal position
// only an exact CRLF is legal.
func (d *Stream) stepBulkByte(b byte) error {
	if d.bulkLeft > 0 {
		d.scalar = append(d.scalar, b)
		d.bulkLeft--
		return nil
	}
	switch {
	case b == '\r' && !d.pendingCR:
		d.pendingCR = true
	case b == '\n' && d.pendingCR:
		d.pendingCR = false
		payload := append([]byte(nil), d.scalar...)
		d.scalar = d.scalar[:0]
		d.state = stateTypeTag
		d.commit(protocol.BulkString(payload))
	default:
		return fmt.Errorf("%w: invalid bulk string terminator %q", ErrProtocol, b)
	}
	return nil
}

func (d *Stream) commitSimpleString(buf []byte) error {
	d.commit(protocol.SimpleString(string(buf)))
	return nil
}

func (d *Stream) commitError(buf []byte) error {
	// The wire form carries no structured kind; the whole line is the
	// message.
	d.commit(protocol.Error("", string(buf)))
	return nil
}

func (d *Stream) commitInteger(buf []byte) error {
	n, err := strconv.ParseInt(string(buf), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: malformed integer %q", ErrProtocol, buf)
	}
	d.commit(protocol.Integer(n))
	return nil
}

func (d *Stream) commitBulkSize(n int64) error {
	switch {
	case n == -1:
		d.state = stateTypeTag
		d.commit(protocol.NullBulkString())
	case n > MaxBulkLen:
		return fmt.Errorf("%w: bulk string length %d exceeds %d", ErrLimitExceeded, n, MaxBulkLen)
	case n >= 0:
		d.bulkLeft = int(n)
		d.state = stateBulkBytes
	default:
		return fmt.Errorf("%w: invalid bulk string length %d", ErrProtocol, n)
	}
	return nil
}

func (d *Stream) commitArraySize(n int64) error {
	if n < 0 {
		return fmt.Errorf("%w: invalid array length %d", ErrProtocol, n)
	}
	if n > MaxArrayLen {
		return fmt.Errorf("%w: array length %d exceeds %d", ErrLimitExceeded, n, MaxArrayLen)
	}
	d.state = stateTypeTag
	if n == 0 {
		// Nothing to wait for: the empty array is already complete.
		d.commit(protocol.Array())
		return nil
	}
	d.stack = append(d.stack, arrayFrame{
		items:     make([]protocol.Value, 0, n),
		remaining: int(n),
	})
	return nil
}

// commit finalizes a value. If arrays are open, the value lands in the
// top frame; every frame that fills up is popped and its array treated
// as a just-finished value in turn, so one terminating byte can close
// arbitrarily many nested levels. With no open frames the value joins
// the output queue.
func (d *Stream) commit(v protocol.Value) {
	for {
		if len(d.stack) == 0 {
			d.queue = append(d.queue, v)
			return
		}
		top := &d.stack[len(d.stack)-1]
		top.items = append(top.items, v)
		top.remaining--
		if top.remaining > 0 {
			return
		}
		v = protocol.Value{Kind: protocol.KindArray, Items: top.items}
		d.stack = d.stack[:len(d.stack)-1]
	}
}
