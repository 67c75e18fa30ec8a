package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/milkround/milkround/internal/api/v1"
	"github.com/milkround/milkround/internal/rest/middleware"
)

type Handlers struct {
	Health     *v1.HealthHandler
	Delivery   *v1.DeliveryHandler
	Adjustment *v1.AdjustmentHandler
	Invoice    *v1.InvoiceHandler
	Payment    *v1.PaymentHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.ActorTypeMiddleware)
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.ErrorHandler())

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	// Delivery ledger routes
	deliveries := router.Group("/deliveries")
	{
		deliveries.POST("", handlers.Delivery.RecordOutcome)
		deliveries.GET("", handlers.Delivery.ListEntries)
		deliveries.GET("/:id", handlers.Delivery.GetEntry)
	}

	// Adjustment workflow routes
	adjustments := router.Group("/adjustments")
	{
		adjustments.POST("", handlers.Adjustment.Submit)
		adjustments.GET("", handlers.Adjustment.ListRequests)
		adjustments.GET("/:id", handlers.Adjustment.GetRequest)
		adjustments.POST("/:id/approve", handlers.Adjustment.Approve)
		adjustments.POST("/:id/reject", handlers.Adjustment.Reject)
	}

	// Billing routes
	invoices := router.Group("/invoices")
	{
		invoices.POST("/aggregate", handlers.Invoice.Aggregate)
		invoices.POST("/aggregate/period", handlers.Invoice.AggregateForPeriod)
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
	}

	// Payment routes
	payments := router.Group("/payments")
	{
		payments.POST("/orders", handlers.Payment.CreateOrder)
		payments.POST("/verify", handlers.Payment.Verify)
		payments.GET("", handlers.Payment.ListPayments)
		payments.GET("/:id", handlers.Payment.GetPayment)
	}
}
