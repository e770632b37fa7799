package pricing

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/certify-dev/practices-service/internal/model"
)

const DefaultVATRate = 22.0

type TariffCatalog interface {
	// ListPriceRules returns the rules for a contract type, or the
	// quantity-tier rules not bound to any contract type when
	// contractTypeID is nil.
	ListPriceRules(ctx context.Context, contractTypeID *uuid.UUID) ([]model.PriceRule, error)
	ListContractTypes(ctx context.Context) ([]model.ContractType, error)
}

type ConventionRegistry interface {
	// FindActiveConvention resolves an active convention by exact code
	// match. Returns (nil, nil) when no active convention has the code.
	FindActiveConvention(ctx context.Context, code string) (*model.Convention, error)
}

type Selection struct {
	ContractTypeID uuid.UUID
	Quantity       int
	ContractValue  float64
	IsOdcec        bool
	IsRenewal      bool
	ConventionCode *string
}

type Engine struct {
	catalog     TariffCatalog
	conventions ConventionRegistry
	vatRate     float64
}

func NewEngine(catalog TariffCatalog, conventions ConventionRegistry, vatRate float64) *Engine {
	if vatRate <= 0 {
		vatRate = DefaultVATRate
	}
	return &Engine{
		catalog:     catalog,
		conventions: conventions,
		vatRate:     vatRate,
	}
}

// ComputePrice computes the full breakdown for a selection. The steps run in
// a fixed order: base or percentage amount, ODCEC tier override, renewal
// halving, convention discount, VAT. The order matters because each step
// works on the running amount produced by the previous one.
func (e *Engine) ComputePrice(ctx context.Context, sel Selection) (*model.PriceBreakdown, error) {
	if err := validateSelection(sel); err != nil {
		return nil, err
	}

	rule, err := e.resolveRule(ctx, sel)
	if err != nil {
		return nil, err
	}

	base, surcharge, err := ruleAmount(*rule, sel)
	if err != nil {
		return nil, err
	}
	amount := base + surcharge

	var odcecAmount *float64
	if sel.IsOdcec {
		tier, err := e.resolveOdcecTier(ctx, sel.Quantity)
		if err != nil {
			return nil, err
		}
		// No matching tier leaves the step-1 amount in place. The flag
		// degrades gracefully rather than failing the whole quote.
		if tier != nil {
			override := tier.BasePrice * float64(sel.Quantity)
			amount = override
			odcecAmount = &override
		}
	}

	if sel.IsRenewal {
		amount *= 0.5
	}

	var conventionCode *string
	var conventionDiscount *float64
	if sel.ConventionCode != nil && *sel.ConventionCode != "" {
		convention, err := e.conventions.FindActiveConvention(ctx, *sel.ConventionCode)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
		}
		if convention == nil {
			return nil, fmt.Errorf("%w: no active convention with code %q", ErrInvalidConventionCode, *sel.ConventionCode)
		}
		amount *= 1 - convention.DiscountPercentage/100
		conventionCode = &convention.Code
		conventionDiscount = &convention.DiscountPercentage
	}

	gross := amount * (1 + e.vatRate/100)

	return &model.PriceBreakdown{
		BaseAmount:                   base,
		SurchargeAmount:              surcharge,
		OdcecAdjustedAmount:          odcecAmount,
		RenewalDiscountApplied:       sel.IsRenewal,
		ConventionCode:               conventionCode,
		ConventionDiscountPercentage: conventionDiscount,
		NetBeforeVAT:                 amount,
		VATRate:                      e.vatRate,
		VATAmount:                    gross - amount,
		GrossTotal:                   gross,
	}, nil
}

func validateSelection(sel Selection) error {
	if sel.ContractTypeID == uuid.Nil {
		return fmt.Errorf("%w: contract_type_id is required", ErrInvalidSelection)
	}
	if sel.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1, got %d", ErrInvalidSelection, sel.Quantity)
	}
	if sel.ContractValue < 0 {
		return fmt.Errorf("%w: contract_value must not be negative, got %f", ErrInvalidSelection, sel.ContractValue)
	}
	return nil
}

// resolveRule picks the tariff rule for the selection's contract type and
// quantity. A tier marked is_renewal is preferred when the selection is a
// renewal; otherwise the generic tier is used.
func (e *Engine) resolveRule(ctx context.Context, sel Selection) (*model.PriceRule, error) {
	rules, err := e.catalog.ListPriceRules(ctx, &sel.ContractTypeID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	var generic *model.PriceRule
	var renewal *model.PriceRule
	for i := range rules {
		rule := rules[i]
		if rule.IsOdcec || !rule.AppliesTo(sel.Quantity) {
			continue
		}
		if rule.IsRenewal {
			if renewal == nil {
				renewal = &rules[i]
			}
			continue
		}
		if generic == nil {
			generic = &rules[i]
		}
	}

	if sel.IsRenewal && renewal != nil {
		return renewal, nil
	}
	if generic != nil {
		return generic, nil
	}
	return nil, fmt.Errorf("%w: contract type %s has no rule covering quantity %d",
		ErrNoApplicableTariff, sel.ContractTypeID, sel.Quantity)
}

// ruleAmount returns the flat part and the percentage surcharge of the
// step-1 amount. Percentage rules price the unit tier and add a surcharge on
// the contract value above the threshold; flat rules scale by quantity.
func ruleAmount(rule model.PriceRule, sel Selection) (base, surcharge float64, err error) {
	if !rule.IsPercentageRule {
		return rule.BasePrice * float64(sel.Quantity), 0, nil
	}
	if rule.PercentageValue == nil || rule.ThresholdValue == nil {
		return 0, 0, fmt.Errorf("%w: percentage rule %s is missing threshold or percentage",
			ErrInvalidSelection, rule.ID)
	}
	base = rule.BasePrice
	if sel.ContractValue > *rule.ThresholdValue {
		surcharge = (sel.ContractValue - *rule.ThresholdValue) * *rule.PercentageValue / 100
	}
	return base, surcharge, nil
}

// resolveOdcecTier finds the ODCEC quantity tier with the greatest
// min_quantity not exceeding quantity. Tiers must not overlap, so any tier
// at that min_quantity is acceptable.
func (e *Engine) resolveOdcecTier(ctx context.Context, quantity int) (*model.PriceRule, error) {
	tiers, err := e.catalog.ListPriceRules(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	var best *model.PriceRule
	for i := range tiers {
		tier := tiers[i]
		if !tier.IsOdcec || tier.ContractTypeID != nil || tier.MinQuantity > quantity {
			continue
		}
		if best == nil || tier.MinQuantity > best.MinQuantity {
			best = &tiers[i]
		}
	}
	return best, nil
}
