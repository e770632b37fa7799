package pdf

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certify-dev/practices-service/internal/model"
)

func TestGenerate(t *testing.T) {
	generator, err := NewGenerator()
	require.NoError(t, err)

	odcec := 560.0
	code := "ORDINE-10"
	discount := 10.0
	now := time.Now().UTC()
	doc := model.QuoteDocument{
		Practice: model.Practice{
			ID:                   uuid.New(),
			Quantity:             7,
			ContractValue:        120000,
			IsOdcec:              true,
			IsRenewal:            true,
			SubmittedToPaymentAt: &now,
			Breakdown: &model.PriceBreakdown{
				BaseAmount:                   750,
				SurchargeAmount:              250,
				OdcecAdjustedAmount:          &odcec,
				RenewalDiscountApplied:       true,
				ConventionCode:               &code,
				ConventionDiscountPercentage: &discount,
				NetBeforeVAT:                 252,
				VATRate:                      22,
				VATAmount:                    55.44,
				GrossTotal:                   307.44,
			},
		},
		ContractType: model.ContractType{Name: "Subordinate employment"},
	}

	content, err := generator.Generate(doc)
	require.NoError(t, err)
	require.NotEmpty(t, content)
	assert.Equal(t, "%PDF", string(content[:4]))
}

func TestGenerate_RequiresBreakdown(t *testing.T) {
	generator, err := NewGenerator()
	require.NoError(t, err)

	_, err = generator.Generate(model.QuoteDocument{
		Practice: model.Practice{ID: uuid.New()},
	})
	assert.Error(t, err)
}
