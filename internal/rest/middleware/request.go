package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/milkround/milkround/internal/types"
)

func RequestIDMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	ctx = context.WithValue(ctx, types.CtxRequestID, requestID)
	c.Request = c.Request.WithContext(ctx)

	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}

// ActorTypeMiddleware resolves the caller's actor kind once at the
// boundary so handlers never re-derive it
func ActorTypeMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	actorType := types.ActorType(c.GetHeader(types.HeaderActorType))
	if actorType.Validate() != nil {
		actorType = types.ActorTypeRecipient
	}

	c.Request = c.Request.WithContext(types.SetActorType(ctx, actorType))
	c.Next()
}
