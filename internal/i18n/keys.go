// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Catalog screen
	KeyCatalogLoading    = "catalog.loading"
	KeyCatalogEmpty      = "catalog.empty"
	KeyCatalogNoResults  = "catalog.no_results"
	KeyCatalogLoadFailed = "catalog.load_failed"
	KeyCatalogSuperseded = "catalog.superseded"

	// Products
	KeyProductCreated      = "product.created"
	KeyProductUpdated      = "product.updated"
	KeyProductDeleted      = "product.deleted"
	KeyProductImported     = "product.imported"
	KeyProductNotFound     = "product.not_found"
	KeyProductInStock      = "product.in_stock"
	KeyProductOutOfStock   = "product.out_of_stock"
	KeyProductRefreshStale = "product.refresh_stale"

	// Charts
	KeyChartByManufacturer    = "chart.by_manufacturer"
	KeyChartByColor           = "chart.by_color"
	KeyChartCountManufacturer = "chart.count_by_manufacturer"
	KeyChartTopStock          = "chart.top_stock"

	// Images
	KeyImageNotFound = "image.not_found"

	// Remote backend
	KeyRemoteUnavailable = "remote.unavailable"
	KeyRemoteTimeout     = "remote.timeout"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// File Upload
	KeyFileUploadFailed = "file.upload_failed"
	KeyFileTooLarge     = "file.too_large"

	// Rate limiting
	KeyRateLimited = "rate.limited"

	// Internal
	KeyInternalError = "internal.error"
)
