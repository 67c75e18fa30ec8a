package testutil

import (
	"context"

	"github.com/milkround/milkround/internal/types"
)

func SetupContext() context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, types.CtxUserID, types.DefaultUserID)
	ctx = context.WithValue(ctx, types.CtxRequestID, types.GenerateUUID())
	ctx = types.SetActorType(ctx, types.ActorTypeRecipient)
	return ctx
}
