package decoder

import (
	"fmt"
	"io"
	"strconv"

	"github.com/yndnr/wirekv-go/internal/protocol"
)

// BatchChunkSize is the fixed amount of input a Batch decoder consumes
// per source read.
const BatchChunkSize = 1024

// Batch is the legacy decoder. Each fill performs exactly one read of up
// to BatchChunkSize bytes and then parses as many complete values as fit
// entirely within that chunk, using a plain recursive descent that
// assumes the whole value is resident.
//
// Known limitation, preserved on purpose: a value whose encoding
// straddles the end of the chunk is not parsed correctly — the fill
// fails with ErrProtocol. Stream supersedes this decoder; Batch remains
// selectable for parity testing.
type Batch struct {
	src   io.Reader
	queue []protocol.Value
	err   error
}

// NewBatch returns a batch decoder reading from src.
func NewBatch(src io.Reader) *Batch {
	return &Batch{src: src}
}

// Next returns the next parsed value, reading one more chunk from the
// source when the queue is empty.
func (d *Batch) Next() (protocol.Value, error) {
	for {
		if len(d.queue) > 0 {
			v := d.queue[0]
			d.queue = d.queue[1:]
			return v, nil
		}
		if d.err != nil {
			return protocol.Value{}, d.err
		}
		if err := d.fill(); err != nil {
			d.err = err
			return protocol.Value{}, err
		}
	}
}

func (d *Batch) fill() error {
	buf := make([]byte, BatchChunkSize)
	n, err := d.src.Read(buf)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}

	c := &chunk{buf: buf[:n]}
	for !c.empty() {
		// A NUL in tag position ends the chunk. Historical behavior from
		// when the read buffer was fixed-size and zero-filled; kept so a
		// NUL never surfaces as an unknown-tag failure.
		if c.buf[c.pos] == 0 {
			break
		}
		v, err := c.parseValue()
		if err != nil {
			return err
		}
		d.queue = append(d.queue, v)
	}
	return nil
}

// chunk is a cursor over one fixed-size read.
type chunk struct {
	buf []byte
	pos int
}

func (c *chunk) empty() bool { return c.pos >= len(c.buf) }

func (c *chunk) next() (byte, error) {
	if c.empty() {
		return 0, fmt.Errorf("%w: value truncated at chunk boundary", ErrProtocol)
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

func (c *chunk) parseValue() (protocol.Value, error) {
	tag, err := c.next()
	if err != nil {
		return protocol.Value{}, err
	}
	switch tag {
	case '+':
		s, err := c.readLine()
		if err != nil {
			return protocol.Value{}, err
		}
		return protocol.SimpleString(string(s)), nil
	case '-':
		s, err := c.readLine()
		if err != nil {
			return protocol.Value{}, err
		}
		return protocol.Error("", string(s)), nil
	case ':':
		n, err := c.readInt()
		if err != nil {
			return protocol.Value{}, err
		}
		return protocol.Integer(n), nil
	case '$':
		return c.parseBulk()
	case '*':
		return c.parseArray()
	default:
		return protocol.Value{}, fmt.Errorf("%w: unknown type tag %q", ErrProtocol, tag)
	}
}

// readLine scans until CRLF with the same literal-CR tolerance as the
// streaming scanner: a CR not followed by LF stays content, and in a CR
// run only the final "\r\n" terminates.
func (c *chunk) readLine() ([]byte, error) {
	var out []byte
	for {
		b, err := c.next()
		if err != nil {
			return nil, err
		}
		if b != '\r' {
			out = append(out, b)
			continue
		}
		nxt, err := c.next()
		if err != nil {
			return nil, err
		}
		for nxt == '\r' {
			out = append(out, b)
			b = nxt
			nxt, err = c.next()
			if err != nil {
				return nil, err
			}
		}
		if nxt == '\n' {
			return out, nil
		}
		out = append(out, b, nxt)
	}
}

func (c *chunk) readInt() (int64, error) {
	line, err := c.readLine()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(string(line), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed integer %q", ErrProtocol, line)
	}
	return n, nil
}

func (c *chunk) parseBulk() (protocol.Value, error) {
	size, err := c.readInt()
	if err != nil {
		return protocol.Value{}, err
	}
	if size == -1 {
		return protocol.NullBulkString(), nil
	}
	if size < 0 {
		return protocol.Value{}, fmt.Errorf("%w: invalid bulk string length %d", ErrProtocol, size)
	}
	if size > MaxBulkLen {
		return protocol.Value{}, fmt.Errorf("%w: bulk string length %d exceeds %d", ErrLimitExceeded, size, MaxBulkLen)
	}
	payload := make([]byte, 0, size)
	for int64(len(payload)) < size {
		b, err := c.next()
		if err != nil {
			return protocol.Value{}, err
		}
		payload = append(payload, b)
	}
	cr, err := c.next()
	if err != nil {
		return protocol.Value{}, err
	}
	lf, err := c.next()
	if err != nil {
		return protocol.Value{}, err
	}
	if cr != '\r' || lf != '\n' {
		return protocol.Value{}, fmt.Errorf("%w: invalid bulk string terminator", ErrProtocol)
	}
	return protocol.BulkString(payload), nil
}

func (c *chunk) parseArray() (protocol.Value, error) {
	size, err := c.readInt()
	if err != nil {
		return protocol.Value{}, err
	}
	if size < 0 {
		return protocol.Value{}, fmt.Errorf("%w: invalid array length %d", ErrProtocol, size)
	}
	if size > MaxArrayLen {
		return protocol.Value{}, fmt.Errorf("%w: array length %d exceeds %d", ErrLimitExceeded, size, MaxArrayLen)
	}
	items := make([]protocol.Value, 0, size)
	for int64(len(items)) < size {
		item, err := c.parseValue()
		if err != nil {
			return protocol.Value{}, err
		}
		items = append(items, item)
	}
	return protocol.Value{Kind: protocol.KindArray, Items: items}, nil
}
