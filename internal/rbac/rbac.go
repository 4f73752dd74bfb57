package rbac

import (
	"context"
	"errors"
)

// Role is a project-scoped grant. A user's global role uses the same
// values; a global admin overrides any membership lookup.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

var (
	ErrNoAccess         = errors.New("no access to project")
	ErrInsufficientRole = errors.New("insufficient permissions")
)

// Parse returns the role for a raw string, or false when the value is not
// one of the three known roles.
func Parse(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleViewer, RoleEditor, RoleAdmin:
		return Role(raw), true
	default:
		return "", false
	}
}

func (r Role) Rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleEditor:
		return 2
	case RoleViewer:
		return 1
	default:
		return 0
	}
}

// Meets reports whether r satisfies the given minimum role.
func (r Role) Meets(min Role) bool {
	return r.Rank() >= min.Rank()
}

// Principal is the authenticated identity the evaluator trusts. It is
// supplied by the auth layer; the evaluator never verifies credentials.
type Principal struct {
	ID          string
	DisplayName string
	GlobalRole  string
}

// MembershipReader is the only surface that reads memberships for
// authorization decisions.
type MembershipReader interface {
	// GetMemberRole returns the raw role for (projectID, userID) or ""
	// when the user holds no membership in the project.
	GetMemberRole(ctx context.Context, projectID, userID string) (string, error)
}

// Evaluator resolves effective project roles and enforces minimum-role
// requirements. It performs no writes.
type Evaluator struct {
	memberships MembershipReader
}

func NewEvaluator(memberships MembershipReader) *Evaluator {
	return &Evaluator{memberships: memberships}
}

// ResolveRole returns the principal's effective role for the project.
// Global admins resolve to admin for every project without a membership
// lookup. The boolean is false when the principal has no access at all.
func (e *Evaluator) ResolveRole(ctx context.Context, principal Principal, projectID string) (Role, bool, error) {
	if Role(principal.GlobalRole) == RoleAdmin {
		return RoleAdmin, true, nil
	}
	raw, err := e.memberships.GetMemberRole(ctx, projectID, principal.ID)
	if err != nil {
		return "", false, err
	}
	role, ok := Parse(raw)
	if !ok {
		return "", false, nil
	}
	return role, true, nil
}

// Authorize resolves the principal's role and checks it against min. It
// returns ErrNoAccess when the principal has neither a membership nor the
// global admin role, and ErrInsufficientRole when the resolved role ranks
// below the requirement.
func (e *Evaluator) Authorize(ctx context.Context, principal Principal, projectID string, min Role) (Role, error) {
	role, ok, err := e.ResolveRole(ctx, principal, projectID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNoAccess
	}
	if !role.Meets(min) {
		return "", ErrInsufficientRole
	}
	return role, nil
}
