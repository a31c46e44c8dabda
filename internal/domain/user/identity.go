package user

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the caller decoded from a verified session token.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

func (i Identity) IsStaff() bool {
	return i.Role.IsStaff()
}

// CanAccess reports whether the caller may read ownerID's records.
func (i Identity) CanAccess(ownerID uuid.UUID) bool {
	return i.IsStaff() || i.UserID == ownerID
}

type identityKey struct{}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}
