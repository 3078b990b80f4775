package internal

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

// SessionID is 16 bytes of crypto/rand entropy. Collision probability over
// any realistic session population is negligible; the stores still reserve
// ids with create-new semantics and retry on the impossible case.
type SessionID [16]byte

// EncodedSessionIDLength is the length of SessionID.String output.
const EncodedSessionIDLength = 22

func NewSessionID() (SessionID, error) {
	var sid SessionID
	_, err := rand.Read(sid[:])
	return sid, err
}

func (s SessionID) Bytes() []byte {
	return s[:]
}

func (s SessionID) String() string {
	// base64url, no padding, compact
	return base64.RawURLEncoding.EncodeToString(s[:])
}

func ParseSessionID(sessionID string) (SessionID, error) {
	var sid SessionID

	raw, err := base64.RawURLEncoding.DecodeString(sessionID)
	if err != nil {
		return sid, err
	}
	if len(raw) != len(sid) {
		return sid, errors.New("invalid session id size")
	}

	copy(sid[:], raw)
	return sid, nil
}
