// Package server implements the TCP front end: it accepts client
// connections, decodes request values off the wire, dispatches them to the
// command layer and writes encoded replies back. One goroutine serves each
// connection; replies are written in request order.
package server
