// Package goSession provides a pluggable session storage engine for web-server
// session middleware: durable per-session records, expiry-policy evaluation,
// and a caller-scheduled background sweeper that reclaims expired sessions
// without disrupting concurrent request traffic.
//
// The primary backend stores each session in its own file under a root
// directory (see the filestore subpackage); a Redis backend with the same
// contract lives in redisstore. Both are addressed exclusively through the
// [Store] contract, so middleware code never touches the storage medium.
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Manager], [Builder], [Config],
// the [Store] contract, the [Record] model, the [Expiry] policy, and the
// record codec. Backends (filestore, redisstore) import goSession and
// implement [Store]; goSession never imports a backend (no import cycles).
//
// # What this package must NOT do
//
//   - Construct or configure a concrete backend. Callers build one and hand
//     it to [Builder.WithStore].
//   - Implement HTTP middleware or bind to a web framework. The session id
//     travels in a client-held token; see the token subpackage and
//     examples/http-minimal for the integration seam.
//   - Log. Sweep failures are counted in metrics and optionally forwarded to
//     the hook installed with [Builder.WithSweepErrorHook].
//
// # Concurrency contract
//
// A built [Manager] is a shareable handle: all methods are safe for
// concurrent use, and the request path and the sweeper operate on the same
// Manager from independent goroutines. Operations on different session ids
// never serialize against each other; same-id writes are last-replace-wins,
// and a concurrent load observes either the full old record or the full new
// one, never a mixture (the backends guarantee atomic replace).
package goSession
