// Package decoder turns raw connection bytes into protocol Values.
//
// Two implementations share the same pull contract:
//
//   - Stream is the primary decoder: an explicit per-byte state machine
//     that suspends only when it needs more source bytes, so values may
//     span any number of reads and arrays may nest to any depth.
//   - Batch is the legacy decoder: one fixed-size read per fill, with a
//     non-incremental recursive descent over that chunk. Values that
//     straddle the chunk boundary fail. Kept for compatibility testing
//     and selectable via configuration.
//
// Both report a cleanly closed source as ErrClosed, distinct from the
// fatal ErrProtocol raised on structurally malformed input. Declared
// lengths are bounded by MaxArrayLen and MaxBulkLen; exceeding them is
// the fatal ErrLimitExceeded.
package decoder
