package decoder

import (
	"bytes"
	"errors"
	"testing"

	"github.com/yndnr/wirekv-go/internal/protocol"
)

func TestBatchDecodesChunk(t *testing.T) {
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
			input: "-ERR nope\r\n",
			want:  []protocol.Value{protocol.Error("", "ERR nope")},
		},
		{
			name:  "integer",
			input: ":-12\r\n",
			want:  []protocol.Value{protocol.Integer(-12)},
		},
		{
			name:  "bulk string",
			input: "$5\r\nhello\r\n",
			want:  []protocol.Value{protocol.BulkStringText("hello")},
		},
		{
			name:  "null bulk string",
			input: "$-1\r\n",
			want:  []protocol.Value{protocol.NullBulkString()},
		},
		{
			name:  "lone CR stays content",
			input: "+a\rb\r\n",
			want:  []protocol.Value{protocol.SimpleString("a\rb")},
		},
		{
			name:  "CR run keeps all but final CR",
			input: "+a\r\r\n",
			want:  []protocol.Value{protocol.SimpleString("a\r")},
		},
		{
			name:  "nested array",
			input: "*2\r\n*1\r\n:1\r\n+x\r\n",
			want: []protocol.Value{protocol.Array(
				protocol.Array(protocol.Integer(1)),
				protocol.SimpleString("x"),
			)},
		},
		{
			name:  "several values in one chunk",
			input: "+a\r\n:2\r\n$1\r\nc\r\n",
			want: []protocol.Value{
				protocol.SimpleString("a"),
				protocol.Integer(2),
				protocol.BulkStringText("c"),
			},
		},
		{
			name:  "NUL in tag position ends the chunk",
			input: "+OK\r\n\x00\x00\x00",
			want:  []protocol.Value{protocol.SimpleString("OK")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewBatch(bytes.NewReader([]byte(tt.input)))
			got, err := drain(d)
			if !errors.Is(err, ErrClosed) {
				t.Fatalf("drain error = %v, want ErrClosed", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d values, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if !protocol.Equal(got[i], tt.want[i]) {
					t.Errorf("value %d = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBatchFailsOnChunkBoundary(t *testing.T) {
	// Each source read is one chunk to the batch decoder. A value whose
	// encoding straddles a read is a decode failure, not a suspend point.
	tests := []struct {
		name  string
		first string
	}{
		{name: "truncated simple string", first: "+OK\r"},
		{name: "truncated bulk payload", first: "$5\r\nhel"},
		{name: "truncated array", first: "*2\r\n:1\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewBatch(&segmentReader{data: []byte(tt.first + "rest\r\n"), size: len(tt.first)})
			_, err := drain(d)
			if !errors.Is(err, ErrProtocol) {
				t.Fatalf("drain error = %v, want ErrProtocol", err)
			}
		})
	}
}

func TestBatchRejectsOversizedLengths(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "array count near max int64", input: "*9223372036854775000\r\n"},
		{name: "bulk length near max int64", input: "$9223372036854775000\r\nx\r\n"},
		{name: "array count just over the limit", input: "*1025\r\n"},
		{name: "bulk length just over the limit", input: "$524289\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewBatch(bytes.NewReader([]byte(tt.input)))
			_, err := d.Next()
			if !errors.Is(err, ErrLimitExceeded) {
				t.Fatalf("Next error = %v, want ErrLimitExceeded", err)
			}
		})
	}
}

func TestBatchRejectsUnknownTag(t *testing.T) {
	d := NewBatch(bytes.NewReader([]byte("?x\r\n")))
	_, err := d.Next()
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("Next error = %v, want ErrProtocol", err)
	}
}

func TestBatchErrorIsSticky(t *testing.T) {
	d := NewBatch(bytes.NewReader([]byte("?x\r\n")))
	_, first := d.Next()
	_, second := d.Next()
	if second != first {
		t.Fatalf("second Next error = %v, want the first error repeated", second)
	}
}
