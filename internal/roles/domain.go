// Package roles holds the closed set of console roles and the lookups built on it.
package roles

import (
	"errors"
	"fmt"
	"strings"
)

// Role identifies the category of an authenticated console user.
type Role string

// Known roles. The list is closed; anything else is treated as no access.
const (
	SuperAdmin  Role = "superadmin"
	Manager     Role = "manager"
	BranchAdmin Role = "branchadmin"
	Staff       Role = "staff"
	Trainer     Role = "trainer"
	Member      Role = "member"
)

// ErrUnknownRole is returned by Parse for values outside the enumeration.
var ErrUnknownRole = errors.New("roles: unknown role")

var ordered = []Role{SuperAdmin, Manager, BranchAdmin, Staff, Trainer, Member}

var labels = map[Role]string{
	SuperAdmin:  "Super Admin",
	Manager:     "Manager",
	BranchAdmin: "Branch Admin",
	Staff:       "Staff",
	Trainer:     "Trainer",
	Member:      "Member",
}

// All returns every known role in declaration order.
func All() []Role {
	out := make([]Role, len(ordered))
	copy(out, ordered)
	return out
}

// Parse converts a stored or submitted value into a Role.
func Parse(raw string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
	return r, nil
}

// Valid reports whether r belongs to the enumeration.
func (r Role) Valid() bool {
	_, ok := bits[r]
	return ok
}

// Label is the human readable name.
func (r Role) Label() string {
	if l, ok := labels[r]; ok {
		return l
	}
	return "Unknown"
}

func (r Role) String() string {
	return string(r)
}
