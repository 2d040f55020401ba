package auth

import (
	"errors"
	"time"
)

var ErrInvalidToken = errors.New("invalid auth token")

// Role identifies the kind of party acting on the platform.
type Role string

const (
	RoleDonor        Role = "donor"
	RoleOrganization Role = "organization"
	RoleReceiver     Role = "receiver"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleDonor, RoleOrganization, RoleReceiver:
		return true
	}
	return false
}

// Actor is the authenticated caller.
type Actor struct {
	ID   int64
	Role Role
}

type Strategy interface {
	IssueToken(actor Actor) (string, error)
	ParseToken(token string) (Actor, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
