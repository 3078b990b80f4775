// Package internal holds helpers shared by the goSession backends that are
// not part of the public API, currently session id generation and parsing.
package internal
