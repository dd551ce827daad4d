package domain

import "time"

// Workspace is the tenant container owning origin records and access tokens.
type Workspace struct {
	ID         string
	Name       string
	IsArchived bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AccessToken is a workspace-scoped bearer credential. The raw value is
// returned exactly once at issue time; only its SHA-256 hash is stored.
type AccessToken struct {
	ID          string
	WorkspaceID string
	Prefix      string
	Description string
	CreatedAt   time.Time
	LastUsedAt  *time.Time
	ExpiresAt   *time.Time // nil = never expires
	IsRevoked   bool
}

// Usable reports whether the token may authenticate a request at time now.
func (t AccessToken) Usable(now time.Time) error {
	if t.IsRevoked {
		return ErrTokenRevoked
	}
	if t.ExpiresAt != nil && !t.ExpiresAt.After(now) {
		return ErrTokenExpired
	}
	return nil
}
