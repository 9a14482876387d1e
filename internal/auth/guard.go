package auth

import "taskhub/internal/model"

// Identity is the authenticated caller, passed explicitly into every
// operation that needs to know who is acting.
type Identity struct {
	UserID uint
	Role   model.Role
}

// IsAdmin reports whether the caller holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == model.RoleAdmin
}

// CanAccess decides whether caller may read, change or delete a resource
// owned by ownerID.
func CanAccess(caller Identity, ownerID uint) bool {
	return caller.IsAdmin() || (caller.UserID != 0 && caller.UserID == ownerID)
}

// OwnerScope returns the owner filter for listings: nil for admins, who see
// everything, otherwise the caller's own id.
func OwnerScope(caller Identity) *uint {
	if caller.IsAdmin() {
		return nil
	}
	id := caller.UserID
	return &id
}
