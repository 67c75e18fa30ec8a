package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/milkround/milkround/internal/api"
	v1 "github.com/milkround/milkround/internal/api/v1"
	"github.com/milkround/milkround/internal/config"
	"github.com/milkround/milkround/internal/gateway/razorpay"
	"github.com/milkround/milkround/internal/logger"
	"github.com/milkround/milkround/internal/notifier"
	"github.com/milkround/milkround/internal/postgres"
	"github.com/milkround/milkround/internal/repository"
	"github.com/milkround/milkround/internal/service"
	"github.com/milkround/milkround/internal/validator"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// External integrations
			razorpay.NewClient,
			notifier.NewNotifier,

			// Repositories
			repository.NewDeliveryRepository,
			repository.NewAdjustmentRepository,
			repository.NewInvoiceRepository,
			repository.NewLineItemRepository,
			repository.NewPaymentRepository,
			repository.NewProviderDirectory,
			repository.NewRecipientProfile,
		),
		postgres.Module(),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,
			service.NewLedgerService,
			service.NewAdjustmentService,
			service.NewBillingService,
			service.NewPaymentService,
		),
	)

	// API layer
	opts = append(opts,
		fx.Provide(
			v1.NewHealthHandler,
			v1.NewDeliveryHandler,
			v1.NewAdjustmentHandler,
			v1.NewInvoiceHandler,
			v1.NewPaymentHandler,
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(startServer),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	health *v1.HealthHandler,
	delivery *v1.DeliveryHandler,
	adjustment *v1.AdjustmentHandler,
	invoice *v1.InvoiceHandler,
	payment *v1.PaymentHandler,
) api.Handlers {
	return api.Handlers{
		Health:     health,
		Delivery:   delivery,
		Adjustment: adjustment,
		Invoice:    invoice,
		Payment:    payment,
	}
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting server", "address", cfg.Server.Address)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server")
			return server.Shutdown(ctx)
		},
	})
}
