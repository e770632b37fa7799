package pricing

import "errors"

var (
	ErrInvalidSelection      = errors.New("invalid selection")
	ErrNoApplicableTariff    = errors.New("no applicable tariff")
	ErrInvalidConventionCode = errors.New("invalid convention code")
	ErrCatalogUnavailable    = errors.New("tariff catalog unavailable")
)
