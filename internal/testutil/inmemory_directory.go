package testutil

import (
	"context"
	"sync"

	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/milkround/milkround/internal/types"
)

// InMemoryProviderDirectory implements provider.Directory from plain maps
type InMemoryProviderDirectory struct {
	mu          sync.RWMutex
	rates       map[string]types.QuantityMap
	assignments map[string]string
}

// NewInMemoryProviderDirectory creates an empty directory
func NewInMemoryProviderDirectory() *InMemoryProviderDirectory {
	return &InMemoryProviderDirectory{
		rates:       make(map[string]types.QuantityMap),
		assignments: make(map[string]string),
	}
}

// SetRates sets the provider's rate card
func (d *InMemoryProviderDirectory) SetRates(providerID string, rates types.QuantityMap) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rates[providerID] = rates
}

// Assign assigns the recipient to the provider
func (d *InMemoryProviderDirectory) Assign(recipientID, providerID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.assignments[recipientID] = providerID
}

func (d *InMemoryProviderDirectory) GetRates(ctx context.Context, providerID string) (types.QuantityMap, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	rates, ok := d.rates[providerID]
	if !ok {
		return nil, ierr.NewError("provider not found").
			Mark(ierr.ErrNotFound)
	}
	return rates, nil
}

func (d *InMemoryProviderDirectory) GetAssignedProvider(ctx context.Context, recipientID string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	providerID, ok := d.assignments[recipientID]
	if !ok || providerID == "" {
		return "", ierr.NewError("recipient has no provider").
			Mark(ierr.ErrNotFound)
	}
	return providerID, nil
}

// Clear removes all rates and assignments
func (d *InMemoryProviderDirectory) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rates = make(map[string]types.QuantityMap)
	d.assignments = make(map[string]string)
}

// InMemoryRecipientProfile implements recipient.Profile from plain maps
type InMemoryRecipientProfile struct {
	mu         sync.RWMutex
	quantities map[string]types.QuantityMap
	tokens     map[string]string
}

// NewInMemoryRecipientProfile creates an empty profile store
func NewInMemoryRecipientProfile() *InMemoryRecipientProfile {
	return &InMemoryRecipientProfile{
		quantities: make(map[string]types.QuantityMap),
		tokens:     make(map[string]string),
	}
}

// SetStandingQuantities sets the recipient's standing daily quantities
func (p *InMemoryRecipientProfile) SetStandingQuantities(recipientID string, q types.QuantityMap) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quantities[recipientID] = q
}

// SetNotificationToken sets the recipient's push token
func (p *InMemoryRecipientProfile) SetNotificationToken(recipientID, token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens[recipientID] = token
}

func (p *InMemoryRecipientProfile) GetStandingQuantities(ctx context.Context, recipientID string) (types.QuantityMap, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	q, ok := p.quantities[recipientID]
	if !ok {
		return nil, ierr.NewError("recipient not found").
			Mark(ierr.ErrNotFound)
	}
	return q, nil
}

func (p *InMemoryRecipientProfile) GetNotificationToken(ctx context.Context, recipientID string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tokens[recipientID], nil
}

// Clear removes all profiles
func (p *InMemoryRecipientProfile) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quantities = make(map[string]types.QuantityMap)
	p.tokens = make(map[string]string)
}
