package types

import (
	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/samber/lo"
)

// ActorType is the closed set of parties the system coordinates. The
// kind is resolved once at the API boundary and carried in the request
// context rather than re-derived per handler.
type ActorType string

const (
	// ActorTypeRecipient receives deliveries and is billed
	ActorTypeRecipient ActorType = "recipient"
	// ActorTypeProvider sets rates and owns the invoice relationship
	ActorTypeProvider ActorType = "provider"
	// ActorTypeFulfiller physically completes deliveries
	ActorTypeFulfiller ActorType = "fulfiller"
)

func (a ActorType) String() string {
	return string(a)
}

func (a ActorType) Validate() error {
	allowed := []ActorType{
		ActorTypeRecipient,
		ActorTypeProvider,
		ActorTypeFulfiller,
	}
	if !lo.Contains(allowed, a) {
		return ierr.NewError("invalid actor type").
			WithHint("Please provide a valid actor type").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
