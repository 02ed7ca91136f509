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

package users

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"kiwillet/internal/audit"
	"kiwillet/internal/models"
	"kiwillet/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Sentinel errors for account operations
var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidUsername    = errors.New("invalid username")
)

// Registry is the JSON-backed account store. Usernames are the external
// identity everything else is keyed by.
type Registry struct {
	paths *store.Paths
	audit *audit.Log
	cost  int
	users map[string]*models.User
}

// Load reads the account registry; a missing or unparseable file starts an
// empty registry.
func Load(paths *store.Paths, auditLog *audit.Log, bcryptCost int) (*Registry, error) {
	path, err := paths.UsersFile()
	if err != nil {
		return nil, err
	}

	var records []models.User
	if _, err := store.LoadJSON(path, &records); err != nil {
		return nil, err
	}

	users := make(map[string]*models.User, len(records))
	for i := range records {
		if records[i].Username == "" {
			continue
		}
		users[records[i].Username] = &records[i]
	}

	return &Registry{paths: paths, audit: auditLog, cost: bcryptCost, users: users}, nil
}

// Create registers a new account with zero balance.
func (r *Registry) Create(username, password string) (*models.User, error) {
	if username == "" || strings.ContainsAny(username, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUsername, username)
	}
	if _, ok := r.users[username]; ok {
		return nil, fmt.Errorf("%w: %s", ErrUserExists, username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.cost)
	if err != nil {
		return nil, fmt.Errorf("unable to hash password: %w", err)
	}

	user := &models.User{Username: username, PasswordHash: string(hash), Balance: decimal.Zero}
	r.users[username] = user
	if err := r.save(); err != nil {
		delete(r.users, username)
		return nil, err
	}

	r.audit.Event("alta_usuario", username)
	zap.L().Info("User created", zap.String("user", username))
	return user, nil
}

// Authenticate validates the credentials and returns the account. Both an
// unknown user and a wrong password map to ErrInvalidCredentials.
func (r *Registry) Authenticate(username, password string) (*models.User, error) {
	user, ok := r.users[username]
	if !ok {
		r.audit.Event("login_fallido", username)
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		r.audit.Event("login_fallido", username)
		return nil, ErrInvalidCredentials
	}

	r.audit.Event("login_exitoso", username)
	return user, nil
}

// ChangePassword replaces the stored hash.
func (r *Registry) ChangePassword(username, password string) error {
	user, ok := r.users[username]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.cost)
	if err != nil {
		return fmt.Errorf("unable to hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	if err := r.save(); err != nil {
		return err
	}

	r.audit.Event("cambio_password", username)
	return nil
}

// UpdateBalance stores the ledger-derived balance on the account record.
func (r *Registry) UpdateBalance(username string, balance decimal.Decimal) error {
	user, ok := r.users[username]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	user.Balance = balance
	return r.save()
}

// Get returns the account for username.
func (r *Registry) Get(username string) (*models.User, bool) {
	user, ok := r.users[username]
	return user, ok
}

func (r *Registry) save() error {
	path, err := r.paths.UsersFile()
	if err != nil {
		return err
	}

	records := make([]models.User, 0, len(r.users))
	for _, user := range r.users {
		records = append(records, *user)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Username < records[j].Username })

	if err := store.SaveJSON(path, records); err != nil {
		return fmt.Errorf("unable to persist users: %w", err)
	}
	return nil
}
