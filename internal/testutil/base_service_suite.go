package testutil

import (
	"context"
	"time"

	"github.com/milkround/milkround/internal/config"
	"github.com/milkround/milkround/internal/domain/adjustment"
	"github.com/milkround/milkround/internal/domain/delivery"
	"github.com/milkround/milkround/internal/domain/invoice"
	"github.com/milkround/milkround/internal/domain/payment"
	"github.com/milkround/milkround/internal/logger"
	"github.com/milkround/milkround/internal/postgres"
	"github.com/milkround/milkround/internal/types"
	"github.com/milkround/milkround/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	DeliveryRepo   delivery.Repository
	AdjustmentRepo adjustment.Repository
	InvoiceRepo    invoice.Repository
	LineItemRepo   invoice.LineItemRepository
	PaymentRepo    payment.Repository
}

// BaseServiceTestSuite provides common functionality for all service
// test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	stores    Stores
	directory *InMemoryProviderDirectory
	profile   *InMemoryRecipientProfile
	gateway   *FakeGateway
	db        postgres.IClient
	logger    *logger.Logger
	config    *config.Configuration
	now       time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	s.config = config.GetDefaultConfig()

	var err error
	s.logger, err = logger.NewLogger()
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = SetupContext()
}

func (s *BaseServiceTestSuite) setupStores() {
	lineItems := NewInMemoryLineItemStore()
	s.stores = Stores{
		DeliveryRepo:   NewInMemoryDeliveryStore(),
		AdjustmentRepo: NewInMemoryAdjustmentStore(),
		InvoiceRepo:    NewInMemoryInvoiceStore(lineItems),
		LineItemRepo:   lineItems,
		PaymentRepo:    NewInMemoryPaymentStore(),
	}
	s.directory = NewInMemoryProviderDirectory()
	s.profile = NewInMemoryRecipientProfile()
	s.gateway = NewFakeGateway()
	s.db = NewMockPostgresClient(s.logger)
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.DeliveryRepo.(*InMemoryDeliveryStore).Clear()
	s.stores.AdjustmentRepo.(*InMemoryAdjustmentStore).Clear()
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.stores.LineItemRepo.(*InMemoryLineItemStore).Clear()
	s.stores.PaymentRepo.(*InMemoryPaymentStore).Clear()
	s.directory.Clear()
	s.profile.Clear()
	s.gateway.Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetDirectory returns the test provider directory
func (s *BaseServiceTestSuite) GetDirectory() *InMemoryProviderDirectory {
	return s.directory
}

// GetProfile returns the test recipient profile store
func (s *BaseServiceTestSuite) GetProfile() *InMemoryRecipientProfile {
	return s.profile
}

// GetGateway returns the fake payment gateway
func (s *BaseServiceTestSuite) GetGateway() *FakeGateway {
	return s.gateway
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}

// GetUUID returns a new UUID string
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
