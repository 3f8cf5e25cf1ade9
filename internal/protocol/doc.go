// Package protocol defines the RESP-style wire value model and its
// byte-exact encoder.
//
// The decoders in internal/decoder produce Values; the command layer in
// internal/command consumes and produces them. Encoding is total: every
// constructible Value has exactly one wire form.
package protocol
