package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken       = errors.New("INVALID_TOKEN")
	ErrInvalidVasType     = errors.New("INVALID_VAS_TYPE")
	ErrInvalidPriceType   = errors.New("INVALID_PRICE_TYPE")
	ErrInvalidSupplier    = errors.New("INVALID_SUPPLIER")
	ErrVariantNotFound    = errors.New("VARIANT_NOT_FOUND")
	ErrSupplierUnhealthy  = errors.New("SUPPLIER_UNHEALTHY")
	ErrSchedulerInactive  = errors.New("SCHEDULER_INACTIVE")
	ErrCatalogUnavailable = errors.New("CATALOG_UNAVAILABLE")
)
