// Package connection provides the wire client used by wirekv-cli to talk
// to a wirekv server.
package connection

import (
	"fmt"
	"net"
	"time"

	"github.com/yndnr/wirekv-go/internal/decoder"
	"github.com/yndnr/wirekv-go/internal/protocol"
)

// DefaultDialTimeout bounds how long Dial waits for the TCP connect.
const DefaultDialTimeout = 5 * time.Second

// Client is a simple request/reply client over one TCP connection.
type Client struct {
	conn net.Conn
	dec  decoder.Decoder
}

// Dial connects to a wirekv server.
func Dial(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, DefaultDialTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	return &Client{
		conn: conn,
		dec:  decoder.NewStream(conn),
	}, nil
}

// Do sends one command as an array of bulk strings and returns the reply.
func (c *Client) Do(args ...[]byte) (protocol.Value, error) {
	items := make([]protocol.Value, len(args))
	for i, arg := range args {
		items[i] = protocol.BulkString(arg)
	}

	if _, err := c.conn.Write(protocol.Encode(protocol.Array(items...))); err != nil {
		return protocol.Value{}, fmt.Errorf("write request: %w", err)
	}

	reply, err := c.dec.Next()
	if err != nil {
		return protocol.Value{}, fmt.Errorf("read reply: %w", err)
	}
	return reply, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
