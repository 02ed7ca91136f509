package store

import (
	"fmt"
	"os"
	"path/filepath"

	"kiwillet/internal/models"
)

// Paths resolves logical file names to durable locations, creating the
// containing directory on demand.
type Paths struct {
	storage models.StorageConfig
	catalog models.CatalogConfig
}

func NewPaths(storage models.StorageConfig, catalog models.CatalogConfig) *Paths {
	return &Paths{storage: storage, catalog: catalog}
}

func (p *Paths) MovementsFile(user string) (string, error) {
	return p.resolve(p.storage.DataDir, "movimientos_"+user+".csv")
}

func (p *Paths) CardsFile(user string) (string, error) {
	return p.resolve(p.storage.DataDir, "tarjetas_"+user+".csv")
}

func (p *Paths) UsersFile() (string, error) {
	return p.resolve(p.storage.DataDir, "usuarios.json")
}

func (p *Paths) CatalogFile() (string, error) {
	if filepath.IsAbs(p.catalog.File) {
		return p.catalog.File, nil
	}
	return p.resolve(p.storage.DataDir, p.catalog.File)
}

func (p *Paths) ReportFile(name string) (string, error) {
	return p.resolve(p.storage.ReportDir, name)
}

func (p *Paths) AuditFile() (string, error) {
	return p.resolve(p.storage.LogDir, "bitacora.log")
}

func (p *Paths) resolve(dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("unable to create directory %s: %w", dir, err)
	}
	return filepath.Join(dir, name), nil
}
