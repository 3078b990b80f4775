// Package filestore implements the goSession [goSession.Store] contract on
// the local filesystem: one file per session under a configured root
// directory, named by the session id.
//
// Useful when you want something more persistent than an in-memory store
// but don't want to operate a database, especially during local
// development. It holds up in production on a single storage root shared by
// one process (or cooperating processes on the same filesystem).
//
// # Atomic replace
//
// The store never mutates a record file in place. Every write builds the
// new content in a uniquely named temporary file and swaps it in with a
// single os.Rename, which gives per-record crash consistency without a
// write-ahead log: a concurrent reader sees either the complete old record
// or the complete new one. The rename is the synchronization point; no
// in-process lock is held, so operations on different ids never block each
// other.
//
// # Sweep fast path
//
// Deciding expiry requires opening every record. Config.MinRecordAge sets
// the minimum age (by file modification time) before a sweep pass bothers
// to open a file; young files are skipped wholesale. Ideally set it near
// your session TTL — and never above it, or freshly expired sessions wait
// an extra pass.
//
// # What this package must NOT do
//
//   - Construct a path from an id that has not passed validation.
//   - Evaluate expiry policy on the request path; that belongs to the
//     Manager. Only DeleteExpired consumes the policy, for the sweep.
package filestore
