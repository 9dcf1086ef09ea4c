package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/progress-api/internal/domain"
	"github.com/straye-as/progress-api/internal/policy"
)

// SystemUserID identifies calls authenticated with the service API key
var SystemUserID = uuid.MustParse("00000000-0000-0000-0000-000000000000")

// UserContext holds authenticated user information
type UserContext struct {
	UserID      uuid.UUID
	DisplayName string
	Email       string
	Role        domain.UserRole
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role domain.UserRole) bool {
	return u.Role == role
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...domain.UserRole) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// IsReviewer reports whether the user reviews daily reports
func (u *UserContext) IsReviewer() bool {
	return policy.IsReviewer(u.Role)
}

// IsSystem reports whether the user is the API key system user
func (u *UserContext) IsSystem() bool {
	return u.UserID == SystemUserID
}

// ManagerFilter returns the manager id visibility is restricted to.
// Reviewers and the system user see every project and get nil.
func (u *UserContext) ManagerFilter() *uuid.UUID {
	if u.IsReviewer() || u.IsSystem() {
		return nil
	}
	id := u.UserID
	return &id
}
