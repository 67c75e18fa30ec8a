package types

import (
	"context"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID     ContextKey = "ctx_request_id"
	CtxUserID        ContextKey = "ctx_user_id"
	CtxActorType     ContextKey = "ctx_actor_type"
	CtxDBTransaction ContextKey = "ctx_db_transaction"

	// Default values
	DefaultUserID = "00000000-0000-0000-0000-000000000000"

	// HTTP headers propagated into the context
	HeaderRequestID = "X-Request-ID"
	HeaderActorType = "X-Actor-Type"
)

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(CtxUserID).(string); ok {
		return userID
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

// GetActorType returns the actor kind resolved at the API boundary.
// Defaults to recipient when the context carries none.
func GetActorType(ctx context.Context) ActorType {
	if actorType, ok := ctx.Value(CtxActorType).(ActorType); ok {
		return actorType
	}
	return ActorTypeRecipient
}

func SetActorType(ctx context.Context, actorType ActorType) context.Context {
	return context.WithValue(ctx, CtxActorType, actorType)
}
