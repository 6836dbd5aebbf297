package auth

import (
	"context"
	"fmt"

	"github.com/mmynk/bistro/internal/models"
)

// Capability is a permission checked before an operation runs.
type Capability string

const (
	CapBrowse        Capability = "browse"
	CapOrder         Capability = "order"
	CapAdvanceItem   Capability = "advance-item-status"
	CapManageCatalog Capability = "manage-catalog"
)

var roleCapabilities = map[models.Role][]Capability{
	models.RoleCustomer: {CapBrowse, CapOrder},
	models.RoleStaff:    {CapBrowse, CapOrder, CapAdvanceItem},
	models.RoleAdmin:    {CapBrowse, CapOrder, CapAdvanceItem, CapManageCatalog},
}

// Capabilities returns the capability set granted to role.
func Capabilities(role models.Role) []Capability {
	return append([]Capability(nil), roleCapabilities[role]...)
}

// Principal is the actor performing an operation. The zero value is an
// unauthenticated caller.
type Principal struct {
	UserID string
	Email  string
	Role   models.Role
}

// PrincipalFor builds a principal from a stored user record.
func PrincipalFor(u *models.User) Principal {
	return Principal{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// Authenticated reports whether p identifies a user.
func (p Principal) Authenticated() bool {
	return p.UserID != ""
}

// Can reports whether p holds capability c.
func (p Principal) Can(c Capability) bool {
	if !p.Authenticated() {
		return false
	}
	for _, granted := range roleCapabilities[p.Role] {
		if granted == c {
			return true
		}
	}
	return false
}

// Require returns ErrUnauthenticated for an anonymous principal and
// ErrForbidden when the capability is missing.
func (p Principal) Require(c Capability) error {
	if !p.Authenticated() {
		return models.ErrUnauthenticated
	}
	if !p.Can(c) {
		return fmt.Errorf("%w: %s lacks %s", models.ErrForbidden, p.Role, c)
	}
	return nil
}

type principalKey struct{}

// WithPrincipal stores p in ctx. Only the transport edge should call this.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom extracts the principal from ctx, or the zero principal.
func PrincipalFrom(ctx context.Context) Principal {
	p, _ := ctx.Value(principalKey{}).(Principal)
	return p
}
