package models

// Config represents the application configuration
type Config struct {
	Storage  StorageConfig
	Catalog  CatalogConfig
	Security SecurityConfig
}

// StorageConfig holds the durable storage locations
type StorageConfig struct {
	DataDir   string
	LogDir    string
	ReportDir string
}

// CatalogConfig holds the service catalog settings
type CatalogConfig struct {
	File string
}

// SecurityConfig holds password hashing settings
type SecurityConfig struct {
	BcryptCost int
}
