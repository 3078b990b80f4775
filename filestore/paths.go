package filestore

import (
	"path/filepath"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/internal"
)

// pathFor is the only place a session id becomes a filesystem path.
func (s *Store) pathFor(sessionID string) (string, error) {
	if err := validateSessionID(sessionID); err != nil {
		return "", err
	}
	return filepath.Join(s.root, sessionID), nil
}

// validateSessionID admits exactly the ids this store generates: 22
// base64url characters. Separators, dot segments, and anything else that
// could escape the root are rejected before a path is ever constructed.
func validateSessionID(sessionID string) error {
	if len(sessionID) != internal.EncodedSessionIDLength {
		return goSession.ErrInvalidSessionID
	}
	for i := 0; i < len(sessionID); i++ {
		c := sessionID[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return goSession.ErrInvalidSessionID
		}
	}
	return nil
}
