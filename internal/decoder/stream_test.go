package decoder

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/yndnr/wirekv-go/internal/protocol"
)

// segmentReader returns the input in fixed-size segments, simulating a
// network peer whose writes arrive arbitrarily fragmented.
type segmentReader struct {
	data []byte
	size int
}

func (r *segmentReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := r.size
	if n > len(r.data) {
		n = len(r.data)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

// drain collects every value until the decoder reports an error.
func drain(d Decoder) ([]protocol.Value, error) {
	var out []protocol.Value
	for {
		v, err := d.Next()
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
}

func TestStreamDecodesValues(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []protocol.Value
	}{
		{
			name:  "simple string",
			input: "+OK\r\n",
			want:  []protocol.Value{protocol.SimpleString("OK")},
		},
		{
			name:  "error line",
			input: "-ERR unknown command\r\n",
			want:  []protocol.Value{protocol.Error("", "ERR unknown command")},
		},
		{
			name:  "integer",
			input: ":1000\r\n",
			want:  []protocol.Value{protocol.Integer(1000)},
		},
		{
			name:  "negative integer",
			input: ":-42\r\n",
			want:  []protocol.Value{protocol.Integer(-42)},
		},
		{
			name:  "bulk string",
			input: "$5\r\nhello\r\n",
			want:  []protocol.Value{protocol.BulkStringText("hello")},
		},
		{
			name:  "empty bulk string",
			input: "$0\r\n\r\n",
			want:  []protocol.Value{protocol.BulkString([]byte{})},
		},
		{
			name:  "bulk string payload may contain CRLF",
			input: "$4\r\na\r\nb\r\n",
			want:  []protocol.Value{protocol.BulkString([]byte("a\r\nb"))},
		},
		{
			name:  "null bulk string",
			input: "$-1\r\n",
			want:  []protocol.Value{protocol.NullBulkString()},
		},
		{
			name:  "empty array completes immediately",
			input: "*0\r\n",
			want:  []protocol.Value{protocol.Array()},
		},
		{
			name:  "flat array",
			input: "*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n",
			want: []protocol.Value{protocol.Array(
				protocol.BulkStringText("GET"),
				protocol.BulkStringText("foo"),
			)},
		},
		{
			name:  "nested empty arrays",
			input: "*2\r\n*0\r\n*0\r\n",
			want: []protocol.Value{protocol.Array(
				protocol.Array(),
				protocol.Array(),
			)},
		},
		{
			name:  "one byte closes three nested levels",
			input: "*1\r\n*1\r\n*1\r\n+x\r\n",
			want: []protocol.Value{protocol.Array(
				protocol.Array(
					protocol.Array(protocol.SimpleString("x")),
				),
			)},
		},
		{
			name:  "values after a closed nested array",
			input: "*2\r\n*1\r\n:1\r\n+tail\r\n:2\r\n",
			want: []protocol.Value{
				protocol.Array(
					protocol.Array(protocol.Integer(1)),
					protocol.SimpleString("tail"),
				),
				protocol.Integer(2),
			},
		},
		{
			name:  "multiple top-level values",
			input: "+first\r\n:2\r\n$5\r\nthird\r\n",
			want: []protocol.Value{
				protocol.SimpleString("first"),
				protocol.Integer(2),
				protocol.BulkStringText("third"),
			},
		},
		{
			name:  "stray bytes between values are skipped",
			input: "\n\x00ab+OK\r\n",
			want:  []protocol.Value{protocol.SimpleString("OK")},
		},
		{
			name:  "lone CR in simple string is content",
			input: "+a\rb\r\n",
			want:  []protocol.Value{protocol.SimpleString("a\rb")},
		},
		{
			name:  "CR run keeps all but the final CR",
			input: "+a\r\r\n",
			want:  []protocol.Value{protocol.SimpleString("a\r")},
		},
		{
			name:  "double CR before CRLF",
			input: "+a\r\r\r\n",
			want:  []protocol.Value{protocol.SimpleString("a\r\r")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Segment size 1 means every byte arrives alone; larger
			// sizes must not change the result.
			for _, size := range []int{1, 2, 3, 7, len(tt.input), 4096} {
				d := NewStream(&segmentReader{data: []byte(tt.input), size: size})
				got, err := drain(d)
				if !errors.Is(err, ErrClosed) {
					t.Fatalf("segment size %d: drain error = %v, want ErrClosed", size, err)
				}
				if len(got) != len(tt.want) {
					t.Fatalf("segment size %d: got %d values, want %d", size, len(got), len(tt.want))
				}
				for i := range got {
					if !protocol.Equal(got[i], tt.want[i]) {
						t.Errorf("segment size %d: value %d = %s, want %s",
							size, i, got[i], tt.want[i])
					}
				}
			}
		})
	}
}

func TestStreamProtocolErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "non-numeric bulk length", input: "$abc\r\n"},
		{name: "bulk length below negative one", input: "$-2\r\n"},
		{name: "negative array length", input: "*-1\r\n"},
		{name: "non-numeric array length", input: "*x\r\n"},
		{name: "garbage after bulk payload", input: "$1\r\nxZZ"},
		{name: "CR inside length field", input: "$1\r2\r\n"},
		{name: "malformed integer", input: ":12a\r\n"},
		{name: "empty integer line", input: ":\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewStream(bytes.NewReader([]byte(tt.input)))
			_, err := drain(d)
			if !errors.Is(err, ErrProtocol) {
				t.Fatalf("drain error = %v, want ErrProtocol", err)
			}
		})
	}
}

func TestStreamRejectsOversizedLengths(t *testing.T) {
	// A declared length arrives before any payload and must never be
	// trusted for allocation: a one-line request with a huge count has
	// to fail cleanly instead of panicking or reserving gigabytes.
	tests := []struct {
		name  string
		input string
	}{
		{name: "array count near max int64", input: "*9223372036854775000\r\n"},
		{name: "bulk length near max int64", input: "$9223372036854775000\r\n"},
		{name: "array count just over the limit", input: "*1025\r\n"},
		{name: "bulk length just over the limit", input: "$524289\r\n"},
		{name: "oversized array nested inside a small one", input: "*1\r\n*2000000\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewStream(bytes.NewReader([]byte(tt.input)))
			_, err := drain(d)
			if !errors.Is(err, ErrLimitExceeded) {
				t.Fatalf("drain error = %v, want ErrLimitExceeded", err)
			}
		})
	}
}

func TestStreamAcceptsLengthsAtTheLimit(t *testing.T) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "*%d\r\n", MaxArrayLen)
	for i := 0; i < MaxArrayLen; i++ {
		buf.WriteString(":1\r\n")
	}

	d := NewStream(bytes.NewReader(buf.Bytes()))
	v, err := d.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if len(v.Items) != MaxArrayLen {
		t.Fatalf("decoded %d items, want %d", len(v.Items), MaxArrayLen)
	}
}

func TestStreamClosedOnEOF(t *testing.T) {
	d := NewStream(bytes.NewReader(nil))
	_, err := d.Next()
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("Next error = %v, want ErrClosed", err)
	}
}

func TestStreamErrorIsSticky(t *testing.T) {
	d := NewStream(bytes.NewReader([]byte("$bad\r\n+OK\r\n")))
	_, first := d.Next()
	if !errors.Is(first, ErrProtocol) {
		t.Fatalf("first Next error = %v, want ErrProtocol", first)
	}
	_, second := d.Next()
	if second != first {
		t.Fatalf("second Next error = %v, want the first error repeated", second)
	}
}

func TestStreamValueSplitAcrossReads(t *testing.T) {
	// The value straddles two source reads; the machine must suspend and
	// resume mid-value.
	d := NewStream(io.MultiReader(
		bytes.NewReader([]byte("*2\r\n$3\r\nSE")),
		bytes.NewReader([]byte("T\r\n$1\r\na\r\n")),
	))

	v, err := d.Next()
	if err != nil {
		t.Fatalf("Next error = %v", err)
	}
	want := protocol.Array(protocol.BulkStringText("SET"), protocol.BulkStringText("a"))
	if !protocol.Equal(v, want) {
		t.Fatalf("Next = %s, want %s", v, want)
	}
}
