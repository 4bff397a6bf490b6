package internal

import (
	"context"
)

type ctxKey string

const ContextUserKey ctxKey = "userID"

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if userID, ok := ctx.Value(ContextUserKey).(string); ok {
		return userID
	}
	return ""
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextUserKey, userID)
}

// OwnerFromContext returns the authenticated owner id or ErrAuthMissing.
func OwnerFromContext(ctx context.Context) (string, error) {
	ownerID := UserIDFromContext(ctx)
	if ownerID == "" {
		return "", ErrAuthMissing
	}
	return ownerID, nil
}
