package service

import (
	"github.com/milkround/milkround/internal/config"
	"github.com/milkround/milkround/internal/domain/adjustment"
	"github.com/milkround/milkround/internal/domain/delivery"
	"github.com/milkround/milkround/internal/domain/invoice"
	"github.com/milkround/milkround/internal/domain/payment"
	"github.com/milkround/milkround/internal/domain/provider"
	"github.com/milkround/milkround/internal/domain/recipient"
	"github.com/milkround/milkround/internal/gateway/razorpay"
	"github.com/milkround/milkround/internal/logger"
	"github.com/milkround/milkround/internal/notifier"
	"github.com/milkround/milkround/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	// Repositories
	DeliveryRepo   delivery.Repository
	AdjustmentRepo adjustment.Repository
	InvoiceRepo    invoice.Repository
	LineItemRepo   invoice.LineItemRepository
	PaymentRepo    payment.Repository

	// Read-side projections owned by other services
	ProviderDirectory provider.Directory
	RecipientProfile  recipient.Profile

	// External integrations
	Gateway  razorpay.Gateway
	Notifier notifier.Notifier
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	deliveryRepo delivery.Repository,
	adjustmentRepo adjustment.Repository,
	invoiceRepo invoice.Repository,
	lineItemRepo invoice.LineItemRepository,
	paymentRepo payment.Repository,
	providerDirectory provider.Directory,
	recipientProfile recipient.Profile,
	gateway razorpay.Gateway,
	notifier notifier.Notifier,
) ServiceParams {
	return ServiceParams{
		Logger:            logger,
		Config:            config,
		DB:                db,
		DeliveryRepo:      deliveryRepo,
		AdjustmentRepo:    adjustmentRepo,
		InvoiceRepo:       invoiceRepo,
		LineItemRepo:      lineItemRepo,
		PaymentRepo:       paymentRepo,
		ProviderDirectory: providerDirectory,
		RecipientProfile:  recipientProfile,
		Gateway:           gateway,
		Notifier:          notifier,
	}
}
