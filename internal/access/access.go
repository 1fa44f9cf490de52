// Package access decides which Telegram user is the store authority.
// The authority is the only user allowed to mutate the catalog and to
// approve or reject purchases.
package access

import "errors"

// ErrPermissionDenied indicates a non-authority invoked an authority-only action.
var ErrPermissionDenied = errors.New("access: permission denied")

// Gate answers whether a user is the configured authority.
type Gate struct {
	authorityID int64
}

// NewGate builds a gate for the given authority user id.
func NewGate(authorityID int64) Gate {
	return Gate{authorityID: authorityID}
}

// IsAuthority reports whether userID is the configured authority.
func (g Gate) IsAuthority(userID int64) bool {
	return g.authorityID != 0 && userID == g.authorityID
}

// AuthorityID returns the configured authority user id.
func (g Gate) AuthorityID() int64 {
	return g.authorityID
}

// Require returns ErrPermissionDenied unless userID is the authority.
func (g Gate) Require(userID int64) error {
	if !g.IsAuthority(userID) {
		return ErrPermissionDenied
	}
	return nil
}
