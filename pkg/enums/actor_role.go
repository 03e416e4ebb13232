package enums

import (
	pkgerrors "github.com/luisvillanueva/driveshare-backend/pkg/errors"
)

// ActorRole identifies the party attempting a booking transition.
type ActorRole string

const (
	ActorRoleRenter ActorRole = "renter"
	ActorRoleOwner  ActorRole = "owner"
	ActorRoleAdmin  ActorRole = "admin"
	ActorRoleSystem ActorRole = "system"
)

var validActorRoles = []ActorRole{
	ActorRoleRenter,
	ActorRoleOwner,
	ActorRoleAdmin,
	ActorRoleSystem,
}

// String implements fmt.Stringer.
func (r ActorRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ActorRole.
func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseActorRole converts raw input into an ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, "unknown actor role").
		WithDetails(map[string]any{"role": value})
}
