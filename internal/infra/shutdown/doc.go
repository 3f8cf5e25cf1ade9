// Package shutdown provides graceful shutdown handling for the server
// process: it waits for SIGINT/SIGTERM and runs registered hooks in
// reverse order under a bounded timeout.
package shutdown
