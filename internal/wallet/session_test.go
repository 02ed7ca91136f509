package wallet

import (
	"errors"
	"path/filepath"
	"testing"

	"kiwillet/internal/audit"
	"kiwillet/internal/cards"
	"kiwillet/internal/ledger"
	"kiwillet/internal/models"
	"kiwillet/internal/report"
	"kiwillet/internal/store"
	"kiwillet/internal/users"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func setupSession(t *testing.T) (*Session, Deps) {
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

	registry, err := users.Load(paths, auditLog, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("users.Load failed: %v", err)
	}
	user, err := registry.Create("ana", "secreto")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	deps := Deps{
		Ledger:  ledger.New(paths, auditLog),
		Cards:   cards.NewStore(paths, auditLog),
		Users:   registry,
		Reports: report.NewExporter(paths, auditLog),
		Audit:   auditLog,
	}
	session, err := Start(user, deps)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return session, deps
}

func TestDeposit_UpdatesLedgerAndAccount(t *testing.T) {
	session, deps := setupSession(t)

	if err := session.Deposit(decimal.RequireFromString("100.00")); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	if session.Balance().StringFixed(2) != "100.00" {
		t.Errorf("Expected balance 100.00, got %s", session.Balance().StringFixed(2))
	}
	if session.User.Balance.StringFixed(2) != "100.00" {
		t.Errorf("Expected account balance 100.00, got %s", session.User.Balance.StringFixed(2))
	}

	account, ok := deps.Users.Get("ana")
	if !ok {
		t.Fatal("Expected account to exist")
	}
	if account.Balance.StringFixed(2) != "100.00" {
		t.Errorf("Expected stored balance 100.00, got %s", account.Balance.StringFixed(2))
	}

	reloaded, err := deps.Ledger.Load("ana")
	if err != nil {
		t.Fatalf("Ledger reload failed: %v", err)
	}
	if len(reloaded) != 1 {
		t.Fatalf("Expected 1 persisted movement, got %d", len(reloaded))
	}
}

func TestPayService_ChecksFunds(t *testing.T) {
	session, _ := setupSession(t)
	luz := models.Service{Id: "1", Name: "Luz", Category: "Hogar", SuggestedAmount: decimal.RequireFromString("4500")}

	err := session.PayService(luz, decimal.RequireFromString("50"))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
	}

	if err := session.Deposit(decimal.RequireFromString("200")); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if err := session.PayService(luz, decimal.RequireFromString("50")); err != nil {
		t.Fatalf("PayService failed: %v", err)
	}

	if session.Balance().StringFixed(2) != "150.00" {
		t.Errorf("Expected balance 150.00, got %s", session.Balance().StringFixed(2))
	}

	snapshot := session.Snapshot()
	if snapshot.TotalCredit.StringFixed(2) != "200.00" || snapshot.TotalDebit.StringFixed(2) != "50.00" {
		t.Errorf("Unexpected totals: credit=%s debit=%s",
			snapshot.TotalCredit.StringFixed(2), snapshot.TotalDebit.StringFixed(2))
	}
	if snapshot.MostPaidService != "Luz" {
		t.Errorf("Expected Luz, got %q", snapshot.MostPaidService)
	}
}

func TestSession_CardManagement(t *testing.T) {
	session, _ := setupSession(t)

	card := models.Card{Id: "visa1", Kind: "débito", Issuer: "Banco Sur", Number: "4111222233334444", Expiry: "09/27"}
	if err := session.AddCard(card); err != nil {
		t.Fatalf("AddCard failed: %v", err)
	}
	if err := session.AddCard(card); !errors.Is(err, cards.ErrDuplicateCard) {
		t.Errorf("Expected ErrDuplicateCard, got %v", err)
	}
	if len(session.Cards) != 1 {
		t.Fatalf("Expected 1 card, got %d", len(session.Cards))
	}

	if err := session.RemoveCard("visa1"); err != nil {
		t.Fatalf("RemoveCard failed: %v", err)
	}
	if len(session.Cards) != 0 {
		t.Errorf("Expected no cards, got %d", len(session.Cards))
	}
}

func TestExportReport(t *testing.T) {
	session, _ := setupSession(t)

	if err := session.Deposit(decimal.RequireFromString("100")); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	path, err := session.ExportReport()
	if err != nil {
		t.Fatalf("ExportReport failed: %v", err)
	}

	rows, err := store.LoadRows(path)
	if err != nil {
		t.Fatalf("LoadRows failed: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("Expected 4 metric rows, got %d", len(rows))
	}
	if rows[1]["valor"] != "100.00" {
		t.Errorf("Expected total ingresos 100.00, got %q", rows[1]["valor"])
	}
}

func TestSessionSurvivesRestart(t *testing.T) {
	session, deps := setupSession(t)

	if err := session.Deposit(decimal.RequireFromString("75.25")); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	session.Close()

	user, ok := deps.Users.Get("ana")
	if !ok {
		t.Fatal("Expected account to exist")
	}
	restarted, err := Start(user, deps)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if restarted.Balance().StringFixed(2) != "75.25" {
		t.Errorf("Expected balance 75.25 after restart, got %s", restarted.Balance().StringFixed(2))
	}
	if len(restarted.Movements) != 1 {
		t.Errorf("Expected 1 movement after restart, got %d", len(restarted.Movements))
	}
}
