package domain

import (
	"slices"
	"strings"
)

// HasPermission reports whether user's role grants permission.
//
// A grant matches when it is "*", equals permission, or is "<resource>:*"
// for a permission of the form "<resource>:<action>". Permissions without a
// colon only match exactly. Comparison is case-sensitive.
func HasPermission(user *User, permission string) bool {
	if user == nil {
		return false
	}
	grants := user.Role.Permissions
	if slices.Contains(grants, PermissionAll) {
		return true
	}
	if slices.Contains(grants, permission) {
		return true
	}
	resource, _, found := strings.Cut(permission, ":")
	if !found {
		return false
	}
	return slices.Contains(grants, resource+":*")
}

// RequirePermission is HasPermission for call sites that must abort.
func RequirePermission(user *User, permission string) error {
	if !HasPermission(user, permission) {
		return &AuthorizationError{RequiredPermission: permission}
	}
	return nil
}
