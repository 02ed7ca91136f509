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

package wallet

import (
	"errors"
	"fmt"

	"kiwillet/internal/audit"
	"kiwillet/internal/cards"
	"kiwillet/internal/ledger"
	"kiwillet/internal/models"
	"kiwillet/internal/report"
	"kiwillet/internal/stats"
	"kiwillet/internal/users"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrInsufficientFunds is returned when a payment exceeds the available
// balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Deps bundles the collaborators a session operates on.
type Deps struct {
	Ledger  *ledger.Ledger
	Cards   *cards.Store
	Users   *users.Registry
	Reports *report.Exporter
	Audit   *audit.Log
}

// Session owns one user's in-memory movement sequence for the lifetime of
// an interactive session. Memory and disk stay consistent because every
// mutation goes through the session.
type Session struct {
	Id        string
	User      *models.User
	Movements []models.Movement
	Cards     []models.Card

	deps Deps
}

// Start loads the user's movements and cards and opens a session.
func Start(user *models.User, deps Deps) (*Session, error) {
	movements, err := deps.Ledger.Load(user.Username)
	if err != nil {
		return nil, err
	}
	userCards, err := deps.Cards.Load(user.Username)
	if err != nil {
		return nil, err
	}

	session := &Session{
		Id:        uuid.New().String(),
		User:      user,
		Movements: movements,
		Cards:     userCards,
		deps:      deps,
	}

	if derived := ledger.PriorBalance(movements); !derived.Equal(user.Balance) {
		zap.L().Warn("Account balance disagrees with ledger",
			zap.String("user", user.Username),
			zap.String("account_balance", user.Balance.StringFixed(2)),
			zap.String("ledger_balance", derived.StringFixed(2)))
	}

	deps.Audit.Event("inicio_sesion", fmt.Sprintf("%s:%s", user.Username, session.Id))
	zap.L().Info("Session started",
		zap.String("user", user.Username),
		zap.String("session_id", session.Id),
		zap.Int("movements", len(movements)))
	return session, nil
}

// Close records the end of the session.
func (s *Session) Close() {
	s.deps.Audit.Event("cierre_sesion", fmt.Sprintf("%s:%s", s.User.Username, s.Id))
	zap.L().Info("Session closed",
		zap.String("user", s.User.Username),
		zap.String("session_id", s.Id))
}

// Balance returns the current ledger-derived balance.
func (s *Session) Balance() decimal.Decimal {
	return ledger.PriorBalance(s.Movements)
}

// Deposit credits amount to the wallet.
func (s *Session) Deposit(amount decimal.Decimal) error {
	if err := s.append(ledger.AppendParams{
		Kind:        models.KindCredit,
		Category:    "Ingreso",
		Description: "Carga de saldo",
		Amount:      amount,
	}); err != nil {
		return err
	}
	s.deps.Audit.Event("ingreso_saldo", fmt.Sprintf("%s:%s", s.User.Username, amount.StringFixed(2)))
	return nil
}

// PayService debits a service payment. The balance check happens here, at
// the caller side of the ledger: the ledger itself records what it is
// told.
func (s *Session) PayService(service models.Service, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: got %s", ledger.ErrInvalidAmount, amount.String())
	}
	if amount.GreaterThan(s.Balance()) {
		return fmt.Errorf("%w: balance %s, payment %s", ErrInsufficientFunds, s.Balance().StringFixed(2), amount.StringFixed(2))
	}
	if err := s.append(ledger.AppendParams{
		Kind:        models.KindServicePayment,
		Category:    "Pago servicio",
		Description: service.Name,
		Amount:      amount,
	}); err != nil {
		return err
	}
	s.deps.Audit.Event("pago_servicio", fmt.Sprintf("%s:%s:%s", s.User.Username, service.Name, amount.StringFixed(2)))
	return nil
}

func (s *Session) append(params ledger.AppendParams) error {
	seq, balance, err := s.deps.Ledger.Append(s.User.Username, s.Movements, params)
	s.Movements = seq
	if err != nil {
		return err
	}
	s.User.Balance = balance
	return s.deps.Users.UpdateBalance(s.User.Username, balance)
}

// AddCard registers a card for the session user.
func (s *Session) AddCard(card models.Card) error {
	updated, err := s.deps.Cards.Add(s.User.Username, s.Cards, card)
	if err != nil {
		return err
	}
	s.Cards = updated
	return nil
}

// RemoveCard deletes one of the session user's cards.
func (s *Session) RemoveCard(id string) error {
	updated, err := s.deps.Cards.Remove(s.User.Username, s.Cards, id)
	if err != nil {
		return err
	}
	s.Cards = updated
	return nil
}

// ChangePassword updates the account credential.
func (s *Session) ChangePassword(password string) error {
	return s.deps.Users.ChangePassword(s.User.Username, password)
}

// Snapshot computes the statistics for the session's movement history.
func (s *Session) Snapshot() models.Snapshot {
	return stats.Compute(s.Movements)
}

// ExportReport writes the statistics as a CSV artifact and returns its
// path.
func (s *Session) ExportReport() (string, error) {
	return s.deps.Reports.Generate(s.User.Username, s.Movements)
}

// ExportReportXLSX writes the statistics as an XLSX artifact and returns
// its path.
func (s *Session) ExportReportXLSX() (string, error) {
	return s.deps.Reports.GenerateXLSX(s.User.Username, s.Movements)
}
