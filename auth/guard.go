package auth

import "github.com/princinho/knowledgebase/models"

// Requirement is the role an operation needs. The zero value is Public.
type Requirement struct {
	role models.Role
}

var Public = Requirement{}

func RequireRole(role models.Role) Requirement {
	return Requirement{role: role}
}

var (
	Authenticated = RequireRole(models.RoleUser)
	AdminOnly     = RequireRole(models.RoleAdmin)
)

type DenyReason uint8

const (
	ReasonNone DenyReason = iota
	ReasonUnauthenticated
	ReasonForbidden
)

func (r DenyReason) String() string {
	switch r {
	case ReasonUnauthenticated:
		return "unauthenticated"
	case ReasonForbidden:
		return "forbidden"
	}
	return ""
}

type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Err maps a denial to ErrUnauthenticated or ErrForbidden; nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case ReasonUnauthenticated:
		return ErrUnauthenticated
	default:
		return ErrForbidden
	}
}

func allow() Decision { return Decision{Allowed: true} }
func deny(r DenyReason) Decision { return Decision{Reason: r} }

// Authorize is a pure function of its inputs. A nil session is anonymous.
func Authorize(s *Session, req Requirement) Decision {
	if req.role == 0 {
		return allow()
	}
	if s == nil {
		return deny(ReasonUnauthenticated)
	}
	if s.Role.Satisfies(req.role) {
		return allow()
	}
	return deny(ReasonForbidden)
}
