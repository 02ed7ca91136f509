package store

import (
	"os"
	"path/filepath"
	"testing"

	"kiwillet/internal/models"
)

func testPaths(t *testing.T) *Paths {
	dir := t.TempDir()
	storage := models.StorageConfig{
		DataDir:   filepath.Join(dir, "data"),
		LogDir:    filepath.Join(dir, "logs"),
		ReportDir: filepath.Join(dir, "reports"),
	}
	return NewPaths(storage, models.CatalogConfig{File: "services.yaml"})
}

func TestLoadRows_MissingFile(t *testing.T) {
	rows, err := LoadRows(filepath.Join(t.TempDir(), "nope.csv"))
	if err != nil {
		t.Fatalf("LoadRows failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected empty sequence, got %d rows", len(rows))
	}
}

func TestSaveRows_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	fields := []string{"id", "name", "amount"}
	in := []Row{
		{"id": "1", "name": "Luz", "amount": "4500"},
		{"id": "2", "name": "Agua"}, // amount missing on purpose
	}

	if err := SaveRows(path, fields, in); err != nil {
		t.Fatalf("SaveRows failed: %v", err)
	}

	out, err := LoadRows(path)
	if err != nil {
		t.Fatalf("LoadRows failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(out))
	}
	if out[0]["name"] != "Luz" || out[0]["amount"] != "4500" {
		t.Errorf("Unexpected first row: %v", out[0])
	}
	if out[1]["amount"] != "" {
		t.Errorf("Expected empty string for missing field, got %q", out[1]["amount"])
	}
}

func TestSaveRows_OverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	fields := []string{"k", "v"}

	if err := SaveRows(path, fields, []Row{{"k": "a", "v": "1"}, {"k": "b", "v": "2"}}); err != nil {
		t.Fatalf("SaveRows failed: %v", err)
	}
	if err := SaveRows(path, fields, []Row{{"k": "c", "v": "3"}}); err != nil {
		t.Fatalf("SaveRows failed: %v", err)
	}

	out, err := LoadRows(path)
	if err != nil {
		t.Fatalf("LoadRows failed: %v", err)
	}
	if len(out) != 1 || out[0]["k"] != "c" {
		t.Errorf("Expected single replaced row, got %v", out)
	}
}

func TestLoadJSON_MissingAndCorrupt(t *testing.T) {
	dir := t.TempDir()

	var v []string
	ok, err := LoadJSON(filepath.Join(dir, "nope.json"), &v)
	if err != nil {
		t.Fatalf("LoadJSON failed: %v", err)
	}
	if ok {
		t.Error("Expected ok=false for missing file")
	}

	corrupt := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	v = []string{"untouched"}
	ok, err = LoadJSON(corrupt, &v)
	if err != nil {
		t.Fatalf("LoadJSON failed: %v", err)
	}
	if ok {
		t.Error("Expected ok=false for corrupt file")
	}
	if len(v) != 1 || v[0] != "untouched" {
		t.Errorf("Expected target untouched, got %v", v)
	}
}

func TestSaveJSON_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	in := map[string]string{"usuario": "ana"}

	if err := SaveJSON(path, in); err != nil {
		t.Fatalf("SaveJSON failed: %v", err)
	}

	var out map[string]string
	ok, err := LoadJSON(path, &out)
	if err != nil {
		t.Fatalf("LoadJSON failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected ok=true")
	}
	if out["usuario"] != "ana" {
		t.Errorf("Expected usuario ana, got %q", out["usuario"])
	}
}

func TestPaths_CreatesDirectories(t *testing.T) {
	paths := testPaths(t)

	path, err := paths.MovementsFile("ana")
	if err != nil {
		t.Fatalf("MovementsFile failed: %v", err)
	}
	if filepath.Base(path) != "movimientos_ana.csv" {
		t.Errorf("Unexpected movements file name: %s", path)
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("Expected data directory to exist: %v", err)
	}

	if _, err := paths.AuditFile(); err != nil {
		t.Fatalf("AuditFile failed: %v", err)
	}
	if _, err := paths.ReportFile("reporte_ana_x.csv"); err != nil {
		t.Fatalf("ReportFile failed: %v", err)
	}
}
