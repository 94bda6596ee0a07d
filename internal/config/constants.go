package config

// Default paths
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./bookar.db"

	// DefaultCatalogPath is the default path for the chapter catalog
	DefaultCatalogPath = "./catalog.yaml"

	// DefaultAssetsRoot is the directory local asset sources are resolved against
	DefaultAssetsRoot = "./assets"
)
