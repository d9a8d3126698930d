// Package audit delivers security events to a sink off the request path.
//
// # Components
//
//   - [Event]: one login, refresh, or logout outcome.
//   - [Sink]: the consumer. Channel, JSON-lines, zap, and no-op sinks are provided.
//   - [Dispatcher]: a buffered relay that either drops or blocks when the buffer is full.
//
// The Engine decides which events exist. This package only moves them.
//
// # What this package must NOT do
//
//   - Filter events.
//   - Import the root package.
//   - Record raw token strings.
package audit
