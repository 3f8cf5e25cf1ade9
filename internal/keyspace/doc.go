// Package keyspace provides the shared in-memory key/value store backing
// GET and SET.
//
// One store instance is created at startup and handed to every
// connection handler; a single mutex covers the whole keyspace. Expiry
// is lazy: an entry's deadline is checked only when the key is read or
// overwritten, never by a background sweep.
package keyspace
