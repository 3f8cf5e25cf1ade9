// Package config defines the wirekv-server configuration structure:
// the koanf-tagged schema, defaults, and validation.
//
// Configuration is loaded by internal/infra/confloader with priority
// environment > file > defaults. The server.decoder key is the external
// decoder-version selector: it picks which decoder implementation every
// accepted connection uses.
package config
