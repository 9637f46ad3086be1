// Package app wires the application together: logger, settings file,
// execution service client, definition store, and the watch coordinator. It
// owns the lifecycle of everything it builds; the cli package only parses
// flags into an app.Config.
package app
