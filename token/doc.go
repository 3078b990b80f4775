// Package token binds session ids to signed bearer tokens for callers that
// hand the session reference to a client instead of an opaque cookie value.
// It is optional glue: the session core never depends on it.
package token
