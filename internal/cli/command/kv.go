package command

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/wirekv-go/internal/cli/connection"
	"github.com/yndnr/wirekv-go/internal/protocol"
)

// PingCommand checks server liveness.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Check server liveness",
		Action: func(c *cli.Context) error {
			return roundTrip(c, []byte("PING"))
		},
	}
}

// EchoCommand sends a message and prints the server's echo.
func EchoCommand() *cli.Command {
	return &cli.Command{
		Name:      "echo",
		Usage:     "Echo a message back from the server",
		ArgsUsage: "<message>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("echo requires exactly one argument")
			}
			return roundTrip(c, []byte("ECHO"), []byte(c.Args().Get(0)))
		},
	}
}

// GetCommand fetches the value stored at a key.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get the value of a key",
		ArgsUsage: "<key>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("get requires exactly one argument")
			}
			return roundTrip(c, []byte("GET"), []byte(c.Args().Get(0)))
		},
	}
}

// SetCommand stores a value at a key, optionally with an expiry.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Set a key to a value",
		ArgsUsage: "<key> <value>",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "px",
				Usage: "Expiry in milliseconds (0 means no expiry)",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("set requires exactly two arguments")
			}
			args := [][]byte{
				[]byte("SET"),
				[]byte(c.Args().Get(0)),
				[]byte(c.Args().Get(1)),
			}
			if c.IsSet("px") {
				px := c.Int64("px")
				if px < 0 {
					return fmt.Errorf("px must not be negative")
				}
				args = append(args, []byte("PX"), []byte(strconv.FormatInt(px, 10)))
			}
			return roundTrip(c, args...)
		},
	}
}

// roundTrip dials the configured server, sends one request and prints the
// reply.
func roundTrip(c *cli.Context, args ...[]byte) error {
	client, err := connection.Dial(c.String("server"))
	if err != nil {
		return err
	}
	defer client.Close()

	reply, err := client.Do(args...)
	if err != nil {
		return err
	}

	printValue(reply, "")
	if reply.Kind == protocol.KindError {
		return cli.Exit("", 1)
	}
	return nil
}

// printValue renders a reply value, indenting nested array items.
func printValue(v protocol.Value, indent string) {
	switch v.Kind {
	case protocol.KindSimpleString:
		fmt.Println(indent + v.Str)
	case protocol.KindError:
		if v.ErrKind != "" {
			fmt.Println(indent + "(error) " + v.ErrKind + " " + v.ErrMsg)
		} else {
			fmt.Println(indent + "(error) " + v.ErrMsg)
		}
	case protocol.KindInteger:
		fmt.Println(indent + "(integer) " + strconv.FormatInt(v.Int, 10))
	case protocol.KindBulkString:
		fmt.Printf("%s%q\n", indent, v.Bulk)
	case protocol.KindNullBulkString:
		fmt.Println(indent + "(nil)")
	case protocol.KindArray:
		for i, item := range v.Items {
			fmt.Printf("%s%d)", indent, i+1)
			printValue(item, " ")
		}
	}
}
