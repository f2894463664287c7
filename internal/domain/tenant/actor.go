package tenant

import (
	"context"

	"github.com/google/uuid"
)

// ActorKind discriminates the Actor union
type ActorKind string

const (
	ActorOwner ActorKind = "owner"
	ActorStaff ActorKind = "staff"
)

// Actor is the resolved identity acting on one company: either the company
// Owner or a Staff member bound to a role. It is resolved once per request.
type Actor struct {
	Kind      ActorKind
	UserID    uuid.UUID
	CompanyID uuid.UUID
	RoleID    uuid.UUID // zero for owners
}

// NewOwner builds an Owner actor
func NewOwner(userID, companyID uuid.UUID) Actor {
	return Actor{Kind: ActorOwner, UserID: userID, CompanyID: companyID}
}

// NewStaff builds a Staff actor
func NewStaff(userID, companyID, roleID uuid.UUID) Actor {
	return Actor{Kind: ActorStaff, UserID: userID, CompanyID: companyID, RoleID: roleID}
}

// IsOwner reports whether the actor is the company owner
func (a Actor) IsOwner() bool { return a.Kind == ActorOwner }

// IsStaff reports whether the actor is a staff member
func (a Actor) IsStaff() bool { return a.Kind == ActorStaff }

type actorKey struct{}

// WithActor stores the actor on the context
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor stored on the context
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}
