package connection

import (
	"net"
	"testing"

	"github.com/yndnr/wirekv-go/internal/protocol"
)

// fakeServer accepts one connection, records the request bytes and writes
// a canned reply.
func fakeServer(t *testing.T, reply []byte) (addr string, requests <-chan []byte) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	ch := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		buf := make([]byte, 4096)
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		ch <- buf[:n]
		conn.Write(reply)
	}()

	return ln.Addr().String(), ch
}

func TestClientDo(t *testing.T) {
	addr, requests := fakeServer(t, []byte("+PONG\r\n"))

	client, err := Dial(addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	reply, err := client.Do([]byte("PING"))
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !protocol.Equal(reply, protocol.SimpleString("PONG")) {
		t.Fatalf("reply = %s, want +PONG", reply)
	}

	if got := string(<-requests); got != "*1\r\n$4\r\nPING\r\n" {
		t.Errorf("request on the wire = %q", got)
	}
}

func TestClientDoMultipleArguments(t *testing.T) {
	addr, requests := fakeServer(t, []byte("+OK\r\n"))

	client, err := Dial(addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	if _, err := client.Do([]byte("SET"), []byte("k"), []byte("v")); err != nil {
		t.Fatalf("Do: %v", err)
	}

	if got := string(<-requests); got != "*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n" {
		t.Errorf("request on the wire = %q", got)
	}
}

func TestDialFailure(t *testing.T) {
	if _, err := Dial("127.0.0.1:1"); err == nil {
		t.Fatal("Dial succeeded against a closed port")
	}
}
