package users

import (
	"errors"
	"path/filepath"
	"testing"

	"kiwillet/internal/audit"
	"kiwillet/internal/models"
	"kiwillet/internal/store"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func setupRegistry(t *testing.T) (*Registry, *store.Paths, *audit.Log) {
	dir := t.TempDir()
	paths := store.NewPaths(models.StorageConfig{
		DataDir:   filepath.Join(dir, "data"),
		LogDir:    filepath.Join(dir, "logs"),
		ReportDir: filepath.Join(dir, "reports"),
	}, models.CatalogConfig{File: "services.yaml"})

	auditPath, err := paths.AuditFile()
	if err != nil {
		t.Fatalf("AuditFile failed: %v", err)
	}
	auditLog, err := audit.Open(auditPath)
	if err != nil {
		t.Fatalf("Failed to open audit log: %v", err)
	}
	t.Cleanup(auditLog.Close)

	registry, err := Load(paths, auditLog, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return registry, paths, auditLog
}

func TestCreateAndAuthenticate(t *testing.T) {
	registry, _, _ := setupRegistry(t)

	user, err := registry.Create("ana", "secreto")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !user.Balance.IsZero() {
		t.Errorf("Expected zero starting balance, got %s", user.Balance.String())
	}

	if _, err := registry.Create("ana", "otra"); !errors.Is(err, ErrUserExists) {
		t.Errorf("Expected ErrUserExists, got %v", err)
	}

	if _, err := registry.Authenticate("ana", "secreto"); err != nil {
		t.Errorf("Authenticate failed: %v", err)
	}
	if _, err := registry.Authenticate("ana", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := registry.Authenticate("nadie", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestCreate_RejectsPathSeparators(t *testing.T) {
	registry, _, _ := setupRegistry(t)

	if _, err := registry.Create("../etc", "x"); !errors.Is(err, ErrInvalidUsername) {
		t.Errorf("Expected ErrInvalidUsername, got %v", err)
	}
	if _, err := registry.Create("", "x"); !errors.Is(err, ErrInvalidUsername) {
		t.Errorf("Expected ErrInvalidUsername for empty name, got %v", err)
	}
}

func TestRegistry_PersistsAcrossLoads(t *testing.T) {
	registry, paths, auditLog := setupRegistry(t)

	if _, err := registry.Create("ana", "secreto"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := registry.UpdateBalance("ana", decimal.RequireFromString("150.50")); err != nil {
		t.Fatalf("UpdateBalance failed: %v", err)
	}

	reloaded, err := Load(paths, auditLog, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	user, ok := reloaded.Get("ana")
	if !ok {
		t.Fatal("Expected ana to survive reload")
	}
	if user.Balance.StringFixed(2) != "150.50" {
		t.Errorf("Expected balance 150.50, got %s", user.Balance.StringFixed(2))
	}
	if _, err := reloaded.Authenticate("ana", "secreto"); err != nil {
		t.Errorf("Authenticate after reload failed: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	registry, _, _ := setupRegistry(t)

	if _, err := registry.Create("ana", "vieja"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := registry.ChangePassword("ana", "nueva"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
	if _, err := registry.Authenticate("ana", "vieja"); !errors.Is(err, ErrInvalidCredentials) {
		t.Error("Expected old password to be rejected")
	}
	if _, err := registry.Authenticate("ana", "nueva"); err != nil {
		t.Errorf("Authenticate with new password failed: %v", err)
	}

	if err := registry.ChangePassword("nadie", "x"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}
