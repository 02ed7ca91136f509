package common

import (
	"log"
	"strings"

	"kiwillet/internal/audit"
	"kiwillet/internal/cards"
	"kiwillet/internal/catalog"
	"kiwillet/internal/ledger"
	"kiwillet/internal/models"
	"kiwillet/internal/report"
	"kiwillet/internal/store"
	"kiwillet/internal/users"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via other means (shell export,
	// docker, etc.), so a missing .env file is fine.
	if err := godotenv.Load(); err == nil {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// Services bundles the initialized wallet collaborators.
type Services struct {
	Paths   *store.Paths
	Audit   *audit.Log
	Users   *users.Registry
	Ledger  *ledger.Ledger
	Cards   *cards.Store
	Reports *report.Exporter
	Catalog []models.Service
}

func InitializeServices(cfg *models.Config) (*Services, error) {
	paths := store.NewPaths(cfg.Storage, cfg.Catalog)

	auditPath, err := paths.AuditFile()
	if err != nil {
		return nil, err
	}
	auditLog, err := audit.Open(auditPath)
	if err != nil {
		return nil, err
	}

	registry, err := users.Load(paths, auditLog, cfg.Security.BcryptCost)
	if err != nil {
		auditLog.Close()
		return nil, err
	}

	services, err := catalog.Load(paths)
	if err != nil {
		auditLog.Close()
		return nil, err
	}

	zap.L().Info("Wallet services initialized",
		zap.String("data_dir", cfg.Storage.DataDir),
		zap.Int("catalog_services", len(services)))

	return &Services{
		Paths:   paths,
		Audit:   auditLog,
		Users:   registry,
		Ledger:  ledger.New(paths, auditLog),
		Cards:   cards.NewStore(paths, auditLog),
		Reports: report.NewExporter(paths, auditLog),
		Catalog: services,
	}, nil
}

func (s *Services) Close() {
	if s.Audit != nil {
		s.Audit.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
