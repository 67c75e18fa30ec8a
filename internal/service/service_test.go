package service

import (
	"github.com/milkround/milkround/internal/notifier"
	"github.com/milkround/milkround/internal/testutil"
)

// newTestServiceParams wires a ServiceParams onto the suite's in-memory
// stores and fakes
func newTestServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:            s.GetLogger(),
		Config:            s.GetConfig(),
		DB:                s.GetDB(),
		DeliveryRepo:      stores.DeliveryRepo,
		AdjustmentRepo:    stores.AdjustmentRepo,
		InvoiceRepo:       stores.InvoiceRepo,
		LineItemRepo:      stores.LineItemRepo,
		PaymentRepo:       stores.PaymentRepo,
		ProviderDirectory: s.GetDirectory(),
		RecipientProfile:  s.GetProfile(),
		Gateway:           s.GetGateway(),
		Notifier:          notifier.NoopNotifier{},
	}
}
