package repository

import (
	"github.com/milkround/milkround/internal/domain/adjustment"
	"github.com/milkround/milkround/internal/domain/delivery"
	"github.com/milkround/milkround/internal/domain/invoice"
	"github.com/milkround/milkround/internal/domain/payment"
	"github.com/milkround/milkround/internal/domain/provider"
	"github.com/milkround/milkround/internal/domain/recipient"
	"github.com/milkround/milkround/internal/logger"
	"github.com/milkround/milkround/internal/postgres"
	postgresRepo "github.com/milkround/milkround/internal/repository/postgres"
)

func NewDeliveryRepository(db *postgres.DB, logger *logger.Logger) delivery.Repository {
	return postgresRepo.NewDeliveryRepository(db, logger)
}

func NewAdjustmentRepository(db *postgres.DB, logger *logger.Logger) adjustment.Repository {
	return postgresRepo.NewAdjustmentRepository(db, logger)
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(db, logger)
}

func NewLineItemRepository(db *postgres.DB, logger *logger.Logger) invoice.LineItemRepository {
	return postgresRepo.NewLineItemRepository(db, logger)
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return postgresRepo.NewPaymentRepository(db, logger)
}

func NewProviderDirectory(db *postgres.DB, logger *logger.Logger) provider.Directory {
	return postgresRepo.NewProviderDirectory(db, logger)
}

func NewRecipientProfile(db *postgres.DB, logger *logger.Logger) recipient.Profile {
	return postgresRepo.NewRecipientProfile(db, logger)
}
