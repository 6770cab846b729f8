package domain

import "context"

type ownerKey struct{}

// ContextWithOwner stores the authenticated caller identity in the context.
func ContextWithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey{}, ownerID)
}

// OwnerFromContext returns the caller identity, or "" when the request is anonymous.
func OwnerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey{}).(string)
	return owner
}
