// Package confloader provides configuration loading for wirekv.
//
// It uses koanf to merge configuration from multiple sources with
// priority: Env > File > Default, and a fsnotify-based watcher for
// applying live configuration changes such as log level.
package confloader
