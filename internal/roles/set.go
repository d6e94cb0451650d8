package roles

import "strings"

var bits = map[Role]uint8{
	SuperAdmin:  1 << 0,
	Manager:     1 << 1,
	BranchAdmin: 1 << 2,
	Staff:       1 << 3,
	Trainer:     1 << 4,
	Member:      1 << 5,
}

const allBits uint8 = 1<<6 - 1

// Set is an immutable collection of roles. The zero value is empty.
type Set struct {
	mask uint8
	any  bool
}

// Anyone matches every known role. Unknown roles are still rejected.
var Anyone = Set{mask: allBits, any: true}

// NewSet builds a Set from explicit roles. Unknown values are ignored.
func NewSet(rs ...Role) Set {
	var s Set
	for _, r := range rs {
		s.mask |= bits[r]
	}
	return s
}

// Has reports whether r is a member of s.
func (s Set) Has(r Role) bool {
	b, ok := bits[r]
	if !ok {
		return false
	}
	return s.mask&b != 0
}

// IsMember is the free-function form of Set.Has.
func IsMember(r Role, s Set) bool {
	return s.Has(r)
}

// Union returns the roles present in either set.
func (s Set) Union(o Set) Set {
	return Set{mask: s.mask | o.mask, any: s.any || o.any}
}

// Without returns s minus the given roles.
func (s Set) Without(rs ...Role) Set {
	out := Set{mask: s.mask}
	for _, r := range rs {
		out.mask &^= bits[r]
	}
	return out
}

// IsAny reports whether s is the Anyone set.
func (s Set) IsAny() bool {
	return s.any
}

// Empty reports whether s contains no roles.
func (s Set) Empty() bool {
	return s.mask == 0
}

// Roles lists the members in declaration order.
func (s Set) Roles() []Role {
	out := make([]Role, 0, len(ordered))
	for _, r := range ordered {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s Set) String() string {
	if s.any {
		return "any"
	}
	names := make([]string, 0, len(ordered))
	for _, r := range s.Roles() {
		names = append(names, string(r))
	}
	return strings.Join(names, ",")
}
