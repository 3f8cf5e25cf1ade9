package decoder

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/yndnr/wirekv-go/internal/protocol"
)

func TestDecodeEncodeRoundTrip(t *testing.T) {
	// Every valid wire sequence must decode and re-encode to itself.
	wires := []string{
		"+OK\r\n",
		"+\r\n",
		"-ERR boom\r\n",
		":0\r\n",
		":-9223372036854775808\r\n",
		"$0\r\n\r\n",
		"$4\r\na\r\nb\r\n",
		"$-1\r\n",
		"*0\r\n",
		"*3\r\n$3\r\nSET\r\n$1\r\na\r\n$1\r\n1\r\n",
		"*2\r\n*2\r\n:1\r\n$-1\r\n*1\r\n+x\r\n",
		"*1\r\n*1\r\n*1\r\n*1\r\n:7\r\n",
	}

	for _, wire := range wires {
		t.Run(wire, func(t *testing.T) {
			d := NewStream(bytes.NewReader([]byte(wire)))
			v, err := d.Next()
			if err != nil {
				t.Fatalf("Next: %v", err)
			}
			if got := protocol.Encode(v); string(got) != wire {
				t.Fatalf("re-encoded %s to %q, want %q", v, got, wire)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	// Every constructible value must survive an encode/decode cycle.
	values := []protocol.Value{
		protocol.SimpleString("PONG"),
		protocol.SimpleString(""),
		protocol.Integer(-1),
		protocol.BulkString([]byte{0, 1, 2, '\r', '\n', 255}),
		protocol.BulkString([]byte{}),
		protocol.NullBulkString(),
		protocol.Array(),
		protocol.Array(
			protocol.Array(protocol.Array(protocol.Integer(1))),
			protocol.NullBulkString(),
			protocol.BulkStringText("tail"),
		),
	}

	for _, v := range values {
		t.Run(v.String(), func(t *testing.T) {
			d := NewStream(bytes.NewReader(protocol.Encode(v)))
			got, err := d.Next()
			if err != nil {
				t.Fatalf("Next: %v", err)
			}
			if !protocol.Equal(got, v) {
				t.Fatalf("decoded %s, want %s", got, v)
			}
		})
	}
}

func TestStreamSplitIndependence(t *testing.T) {
	// Splitting a valid sequence into two reads at any byte offset must
	// not change the parsed result.
	wire := []byte("*2\r\n*2\r\n+a\rb\r\n$-1\r\n:42\r\n")
	want := []protocol.Value{
		protocol.Array(
			protocol.Array(protocol.SimpleString("a\rb"), protocol.NullBulkString()),
			protocol.Integer(42),
		),
	}

	for split := 0; split <= len(wire); split++ {
		d := NewStream(io.MultiReader(
			bytes.NewReader(wire[:split]),
			bytes.NewReader(wire[split:]),
		))
		got, err := drain(d)
		if !errors.Is(err, ErrClosed) {
			t.Fatalf("split %d: drain error = %v, want ErrClosed", split, err)
		}
		if len(got) != len(want) {
			t.Fatalf("split %d: got %d values, want %d", split, len(got), len(want))
		}
		for i := range got {
			if !protocol.Equal(got[i], want[i]) {
				t.Errorf("split %d: value %d = %s, want %s", split, i, got[i], want[i])
			}
		}
	}
}
