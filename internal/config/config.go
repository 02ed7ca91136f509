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

package config

import (
	"fmt"
	"os"
	"strconv"

	"kiwillet/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func Load() (*models.Config, error) {
	cost := getEnvInt("KIWILLET_BCRYPT_COST", bcrypt.DefaultCost)
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, cost)
	}

	return &models.Config{
		Storage: models.StorageConfig{
			DataDir:   getEnvString("KIWILLET_DATA_DIR", "data"),
			LogDir:    getEnvString("KIWILLET_LOG_DIR", "logs"),
			ReportDir: getEnvString("KIWILLET_REPORT_DIR", "reports"),
		},
		Catalog: models.CatalogConfig{
			File: getEnvString("KIWILLET_CATALOG_FILE", "services.yaml"),
		},
		Security: models.SecurityConfig{
			BcryptCost: cost,
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
