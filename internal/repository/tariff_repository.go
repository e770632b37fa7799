package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/certify-dev/practices-service/internal/model"
)

// TariffRepository serves the read-only reference data: contract types,
// price rules and conventions. It backs both catalog interfaces of the
// pricing engine.
type TariffRepository struct {
	db *gorm.DB
}

func NewTariffRepository(db *gorm.DB) *TariffRepository {
	return &TariffRepository{db: db}
}

func (r *TariffRepository) ListContractTypes(ctx context.Context) ([]model.ContractType, error) {
	var types []model.ContractType
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, code
		FROM contract_types
		ORDER BY name ASC`).Scan(&types).Error
	if err != nil {
		return nil, err
	}
	return types, nil
}

func (r *TariffRepository) ListPriceRules(ctx context.Context, contractTypeID *uuid.UUID) ([]model.PriceRule, error) {
	query := `
		SELECT
			id,
			contract_type_id,
			min_quantity,
			max_quantity,
			base_price,
			is_percentage_rule,
			percentage_value,
			threshold_value,
			is_odcec,
			is_renewal
		FROM price_rules`

	var rules []model.PriceRule
	var err error
	if contractTypeID == nil {
		err = r.db.WithContext(ctx).Raw(query + `
			WHERE contract_type_id IS NULL
			ORDER BY min_quantity ASC`).Scan(&rules).Error
	} else {
		err = r.db.WithContext(ctx).Raw(query+`
			WHERE contract_type_id = ?
			ORDER BY min_quantity ASC`, *contractTypeID).Scan(&rules).Error
	}
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *TariffRepository) FindActiveConvention(ctx context.Context, code string) (*model.Convention, error) {
	var convention model.Convention
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, code, discount_percentage, is_active
		FROM conventions
		WHERE code = ? AND is_active = TRUE
		LIMIT 1`, code).Scan(&convention).Error
	if err != nil {
		return nil, err
	}
	if convention.ID == uuid.Nil {
		return nil, nil
	}
	return &convention, nil
}
