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

package main

import (
	"errors"
	"flag"
	"fmt"

	"kiwillet/internal/common"
	"kiwillet/internal/config"
	"kiwillet/internal/users"

	"go.uber.org/zap"
)

const minPasswordLength = 4

func validatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

func main() {
	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	userFlag := flag.String("user", "", "Username for the new account (required)")
	passwordFlag := flag.String("password", "", "Password for the new account (required)")
	flag.Parse()

	if *userFlag == "" || *passwordFlag == "" {
		zap.L().Fatal("Both flags are required: --user and --password")
	}

	if err := validatePassword(*passwordFlag); err != nil {
		zap.L().Fatal("Invalid password", zap.Error(err))
	}

	zap.L().Info("Starting user creation process", zap.String("user", *userFlag))

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	account, err := services.Users.Create(*userFlag, *passwordFlag)
	if err != nil {
		if errors.Is(err, users.ErrUserExists) {
			zap.L().Fatal("User already exists", zap.String("user", *userFlag))
		}
		zap.L().Fatal("Failed to create user", zap.Error(err))
	}

	fmt.Println()
	common.PrintHeader("USUARIO CREADO", common.DefaultWidth)
	fmt.Printf("Usuario: %s\n", account.Username)
	fmt.Printf("Saldo:   $%s\n", account.Balance.StringFixed(2))
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()

	zap.L().Info("User created successfully", zap.String("user", account.Username))
}
