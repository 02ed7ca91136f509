/**
 * Copyright 2025-present Kiwillet Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ledger

import (
	"errors"
	"fmt"
	"time"

	"kiwillet/internal/audit"
	"kiwillet/internal/models"
	"kiwillet/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Sentinel errors for ledger operations
var (
	ErrInvalidAmount = errors.New("movement amount must be positive")
	ErrInvalidKind   = errors.New("movement kind cannot be appended")
)

var movementFields = []string{"fecha", "tipo", "descripcion", "monto", "saldo_resultante"}

// Ledger records balance-affecting movements append-only, one tabular file
// per user. The ledger owns balance derivation: the resulting balance of a
// new movement is computed from the prior balance and the signed amount,
// never accepted from the caller.
type Ledger struct {
	paths *store.Paths
	audit *audit.Log
}

func New(paths *store.Paths, auditLog *audit.Log) *Ledger {
	return &Ledger{paths: paths, audit: auditLog}
}

// Load returns the user's full movement sequence. A missing file is an
// empty history, not an error.
func (l *Ledger) Load(user string) ([]models.Movement, error) {
	path, err := l.paths.MovementsFile(user)
	if err != nil {
		return nil, err
	}
	rows, err := store.LoadRows(path)
	if err != nil {
		return nil, fmt.Errorf("unable to load movements for %s: %w", user, err)
	}

	movements := make([]models.Movement, 0, len(rows))
	for _, row := range rows {
		movements = append(movements, movementFromRow(row))
	}
	return movements, nil
}

// AppendParams contains the parameters for recording a movement
type AppendParams struct {
	Kind        models.MovementKind
	Category    string
	Description string
	Amount      decimal.Decimal
}

// Append records a movement at the end of seq and persists the whole
// sequence (the log is compacted on every write). It returns the grown
// sequence and the derived resulting balance.
//
// On a persistence failure the in-memory append has already happened and
// is not rolled back; the error tells the caller that disk and memory may
// disagree.
func (l *Ledger) Append(user string, seq []models.Movement, params AppendParams) ([]models.Movement, decimal.Decimal, error) {
	if !params.Amount.IsPositive() {
		return seq, decimal.Zero, fmt.Errorf("%w: got %s", ErrInvalidAmount, params.Amount.String())
	}

	prior := PriorBalance(seq)
	var balance decimal.Decimal
	switch {
	case params.Kind.IsCredit():
		balance = prior.Add(params.Amount)
	case params.Kind.IsDebit():
		balance = prior.Sub(params.Amount)
	default:
		// Adjustments only arise from decoding legacy rows.
		return seq, decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidKind, params.Kind)
	}

	movement := models.Movement{
		Timestamp:   time.Now().Truncate(time.Second),
		Kind:        params.Kind,
		Category:    params.Category,
		Description: params.Description,
		Amount:      decimal.NewNullDecimal(params.Amount),
		Balance:     decimal.NewNullDecimal(balance),
	}
	seq = append(seq, movement)

	if err := l.save(user, seq); err != nil {
		return seq, balance, err
	}

	l.audit.Event("movimiento", fmt.Sprintf("%s:%s:%s", user, params.Category, params.Amount.StringFixed(2)))
	zap.L().Info("Movement recorded",
		zap.String("user", user),
		zap.String("kind", string(params.Kind)),
		zap.String("category", params.Category),
		zap.String("amount", params.Amount.StringFixed(2)),
		zap.String("balance", balance.StringFixed(2)))

	return seq, balance, nil
}

// PriorBalance returns the resulting balance of the most recent movement
// whose stored balance decoded cleanly, or zero for an empty history.
func PriorBalance(seq []models.Movement) decimal.Decimal {
	for i := len(seq) - 1; i >= 0; i-- {
		if seq[i].Balance.Valid {
			return seq[i].Balance.Decimal
		}
	}
	return decimal.Zero
}

func (l *Ledger) save(user string, seq []models.Movement) error {
	path, err := l.paths.MovementsFile(user)
	if err != nil {
		return err
	}
	rows := make([]store.Row, 0, len(seq))
	for _, m := range seq {
		rows = append(rows, movementToRow(m))
	}
	if err := store.SaveRows(path, movementFields, rows); err != nil {
		return fmt.Errorf("unable to persist movements for %s: %w", user, err)
	}
	return nil
}

// movementFromRow decodes a stored row with an explicit default policy:
// an unparseable timestamp decodes to the zero time, an unparseable
// numeric field decodes to an invalid decimal, and the kind is classified
// once from the stored label.
func movementFromRow(row store.Row) models.Movement {
	m := models.Movement{
		Kind:        models.KindFromLabel(row["tipo"]),
		Category:    row["tipo"],
		Description: row["descripcion"],
		Amount:      parseDecimal(row["monto"]),
		Balance:     parseDecimal(row["saldo_resultante"]),
	}
	if ts, err := time.ParseInLocation(models.TimestampLayout, row["fecha"], time.Local); err == nil {
		m.Timestamp = ts
	}
	return m
}

// movementToRow encodes a movement; invalid numerics and zero timestamps
// are written as empty strings.
func movementToRow(m models.Movement) store.Row {
	row := store.Row{
		"tipo":        m.Category,
		"descripcion": m.Description,
	}
	if !m.Timestamp.IsZero() {
		row["fecha"] = m.Timestamp.Format(models.TimestampLayout)
	}
	if m.Amount.Valid {
		row["monto"] = m.Amount.Decimal.StringFixed(2)
	}
	if m.Balance.Valid {
		row["saldo_resultante"] = m.Balance.Decimal.StringFixed(2)
	}
	return row
}

func parseDecimal(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
