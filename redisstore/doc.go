// Package redisstore implements the goSession [goSession.Store] contract on
// Redis: one key per session under a configured prefix, with the expiry
// policy mapped onto native key TTLs so Redis reclaims most expired
// sessions on its own. The sweeper still works against this backend (SCAN
// enumeration) and catches what TTLs cannot express.
//
// Single SET/GET/DEL round-trips per operation; SETNX provides the
// create-new guarantee the contract requires. Atomic replace comes for free
// from Redis's single-key command atomicity.
package redisstore
