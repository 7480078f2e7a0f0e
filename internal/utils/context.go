package utils

import (
	"context"
)

type contextKey string

const (
	ContextUserIDKey contextKey = "userID"
	ContextOrgIDKey  contextKey = "orgID"
)

func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID := ctx.Value(ContextUserIDKey)
	userIDStr, ok := userID.(string)
	return userIDStr, ok
}

func GetOrgIDFromContext(ctx context.Context) (string, bool) {
	orgID := ctx.Value(ContextOrgIDKey)
	orgIDStr, ok := orgID.(string)
	return orgIDStr, ok
}
