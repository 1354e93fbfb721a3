package token

import "strings"

// Role is the closed set of account roles carried in access tokens.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole maps a "ROLE_*" claim value back onto the enumeration.
// Unknown or missing values are a token error, not a panic.
func ParseRole(claim string) (Role, error) {
	if !strings.HasPrefix(claim, rolePrefix) {
		return "", &Error{Reason: "missing role claim"}
	}
	switch Role(strings.TrimPrefix(claim, rolePrefix)) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", &Error{Reason: "unknown role: " + claim}
}
