package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"

	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/milkround/milkround/internal/logger"
	"github.com/milkround/milkround/internal/postgres"
	"github.com/milkround/milkround/internal/types"

	"github.com/milkround/milkround/internal/domain/provider"
	"github.com/milkround/milkround/internal/domain/recipient"
)

const rateCacheTTL = 5 * time.Minute

// providerDirectory reads the provider projection maintained by the
// assignment workflow. Rate cards are cached; they change rarely and
// are read on every aggregation.
type providerDirectory struct {
	db     *postgres.DB
	logger *logger.Logger
	cache  *gocache.Cache
}

func NewProviderDirectory(db *postgres.DB, logger *logger.Logger) provider.Directory {
	return &providerDirectory{
		db:     db,
		logger: logger,
		cache:  gocache.New(rateCacheTTL, 10*time.Minute),
	}
}

func (r *providerDirectory) GetRates(ctx context.Context, providerID string) (types.QuantityMap, error) {
	if cached, found := r.cache.Get("rates:" + providerID); found {
		return cached.(types.QuantityMap), nil
	}

	query := `SELECT rates FROM providers WHERE id = $1`

	var rates types.QuantityMap
	err := r.db.GetQuerier(ctx).GetContext(ctx, &rates, query, providerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ierr.NewError("provider not found").
			WithHintf("Provider %s does not exist", providerID).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get provider rates").
			Mark(ierr.ErrDatabase)
	}

	r.cache.Set("rates:"+providerID, rates, gocache.DefaultExpiration)
	return rates, nil
}

func (r *providerDirectory) GetAssignedProvider(ctx context.Context, recipientID string) (string, error) {
	query := `SELECT provider_id FROM recipients WHERE id = $1`

	var providerID sql.NullString
	err := r.db.GetQuerier(ctx).GetContext(ctx, &providerID, query, recipientID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ierr.NewError("recipient not found").
			WithHintf("Recipient %s does not exist", recipientID).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to get assigned provider").
			Mark(ierr.ErrDatabase)
	}
	if !providerID.Valid || providerID.String == "" {
		return "", ierr.NewError("recipient has no provider").
			WithHint("No provider is assigned to this recipient").
			Mark(ierr.ErrNotFound)
	}
	return providerID.String, nil
}

// recipientProfile reads the recipient projection maintained by the
// profile service
type recipientProfile struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewRecipientProfile(db *postgres.DB, logger *logger.Logger) recipient.Profile {
	return &recipientProfile{db: db, logger: logger}
}

func (r *recipientProfile) GetStandingQuantities(ctx context.Context, recipientID string) (types.QuantityMap, error) {
	query := `SELECT standing_quantities FROM recipients WHERE id = $1`

	var quantities types.QuantityMap
	err := r.db.GetQuerier(ctx).GetContext(ctx, &quantities, query, recipientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ierr.NewError("recipient not found").
			WithHintf("Recipient %s does not exist", recipientID).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get standing quantities").
			Mark(ierr.ErrDatabase)
	}
	return quantities, nil
}

func (r *recipientProfile) GetNotificationToken(ctx context.Context, recipientID string) (string, error) {
	query := `SELECT notification_token FROM recipients WHERE id = $1`

	var token sql.NullString
	err := r.db.GetQuerier(ctx).GetContext(ctx, &token, query, recipientID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ierr.NewError("recipient not found").
			WithHintf("Recipient %s does not exist", recipientID).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to get notification token").
			Mark(ierr.ErrDatabase)
	}
	return token.String, nil
}
