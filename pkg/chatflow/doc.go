// Package chatflow provides a minimal public facade for building and
// running conversation flows without importing internal packages. It
// re-exports the core flow types for convenience and exposes a Runtime
// with simple methods to save flows, start sessions and deliver
// inbound messages.
package chatflow
