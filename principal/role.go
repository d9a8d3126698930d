package principal

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles.
type Role uint8

const (
	RoleCandidate Role = iota + 1
	RoleRecruiter
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleCandidate: "CANDIDATE",
	RoleRecruiter: "RECRUITER",
	RoleAdmin:     "ADMIN",
}

// String returns the canonical upper-case role name, or "" for the zero value.
func (r Role) String() string {
	return roleNames[r]
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// ParseRole maps a role name to a Role. Matching ignores case and surrounding
// whitespace; an optional "ROLE_" prefix is accepted.
func ParseRole(name string) (Role, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	n = strings.TrimPrefix(n, "ROLE_")
	for r, s := range roleNames {
		if s == n {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", uint8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
