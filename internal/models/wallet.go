package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the second-precision layout used for movement
// timestamps and audit log lines.
const TimestampLayout = "2006-01-02 15:04:05"

// MovementKind is the closed set of movement classifications. The kind is
// decided once, when the movement is created; statistics never infer it
// from free text.
type MovementKind string

const (
	KindCredit         MovementKind = "credit"
	KindDebit          MovementKind = "debit"
	KindServicePayment MovementKind = "service_payment"
	KindAdjustment     MovementKind = "adjustment"
)

// IsCredit reports whether the kind increases the balance.
func (k MovementKind) IsCredit() bool {
	return k == KindCredit
}

// IsDebit reports whether the kind decreases the balance. Service payments
// are a debit sub-kind.
func (k MovementKind) IsDebit() bool {
	return k == KindDebit || k == KindServicePayment
}

// KindFromLabel classifies a legacy free-text "tipo" label. Labels matching
// neither classification map to KindAdjustment, which contributes to
// neither the credit nor the debit total.
func KindFromLabel(label string) MovementKind {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "servicio"):
		return KindServicePayment
	case strings.Contains(l, "pago"):
		return KindDebit
	case strings.Contains(l, "ingreso"), strings.Contains(l, "recarga"):
		return KindCredit
	default:
		return KindAdjustment
	}
}

// Movement is one immutable ledger entry. Amount is a non-negative
// magnitude; the sign is carried by Kind. Amount and Balance are invalid
// (Valid == false) when the stored field did not parse as a decimal, in
// which case the value is excluded from every aggregate.
type Movement struct {
	Timestamp   time.Time
	Kind        MovementKind
	Category    string // human label persisted in the "tipo" column
	Description string
	Amount      decimal.NullDecimal
	Balance     decimal.NullDecimal // balance immediately after this movement
}

// User is a wallet account. The JSON tags match the legacy usuarios.json
// layout.
type User struct {
	Username     string          `json:"usuario"`
	PasswordHash string          `json:"password_hash"`
	Balance      decimal.Decimal `json:"saldo"`
}

// Card is a payment card registered by a user.
type Card struct {
	Id     string
	Kind   string
	Issuer string
	Number string
	Expiry string
}

// Service is one entry of the payable service catalog.
type Service struct {
	Id              string
	Name            string
	Category        string
	SuggestedAmount decimal.Decimal
}

// Snapshot holds the aggregate statistics derived from a movement
// sequence. It is always fully populated; MostPaidService is "N/A" when no
// service payment exists.
type Snapshot struct {
	AverageBalance  decimal.Decimal
	TotalCredit     decimal.Decimal
	TotalDebit      decimal.Decimal
	MostPaidService string
}
