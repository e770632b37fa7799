package model

import "github.com/google/uuid"

type ContractType struct {
	ID   uuid.UUID
	Name string
	Code string
}

// PriceRule is one pricing tier. ContractTypeID is nil for the ODCEC bulk
// quantity tiers, which are not tied to any contract type.
type PriceRule struct {
	ID               uuid.UUID
	ContractTypeID   *uuid.UUID
	MinQuantity      int
	MaxQuantity      *int
	BasePrice        float64
	IsPercentageRule bool
	PercentageValue  *float64
	ThresholdValue   *float64
	IsOdcec          bool
	IsRenewal        bool
}

// AppliesTo reports whether the rule's quantity band covers quantity.
// A nil MaxQuantity means the band is unbounded above.
func (r PriceRule) AppliesTo(quantity int) bool {
	if quantity < r.MinQuantity {
		return false
	}
	return r.MaxQuantity == nil || quantity <= *r.MaxQuantity
}

type Convention struct {
	ID                 uuid.UUID
	Code               string
	DiscountPercentage float64
	IsActive           bool
}
