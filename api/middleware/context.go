package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/ADRCoding/college-bites-delivery/internal/booking"
	"github.com/ADRCoding/college-bites-delivery/pkg/enums"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "user_type"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// ActorFromContext rebuilds the authenticated caller from the values the auth
// middleware stored. The second return is false when the context lacks a
// valid identity.
func ActorFromContext(ctx context.Context) (booking.Actor, bool) {
	userID, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return booking.Actor{}, false
	}
	role := enums.UserType(RoleFromContext(ctx))
	if !role.IsValid() {
		return booking.Actor{}, false
	}
	return booking.Actor{ID: userID, Role: role}, true
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithRole injects the caller role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}
