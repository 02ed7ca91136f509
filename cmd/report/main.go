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
	"flag"
	"fmt"

	"kiwillet/internal/common"
	"kiwillet/internal/config"
	"kiwillet/internal/models"
	"kiwillet/internal/stats"

	"go.uber.org/zap"
)

func printSnapshot(snapshot models.Snapshot, movementCount int) {
	fmt.Printf("│  Movimientos analizados: %d\n", movementCount)
	fmt.Printf("│  Saldo promedio:         %s\n", snapshot.AverageBalance.StringFixed(2))
	fmt.Printf("│  Total ingresos:         %s\n", snapshot.TotalCredit.StringFixed(2))
	fmt.Printf("│  Total gastos:           %s\n", snapshot.TotalDebit.StringFixed(2))
	fmt.Printf("│  Servicio más pagado:    %s\n", snapshot.MostPaidService)
}

func main() {
	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	userFlag := flag.String("user", "", "Username to generate the report for (required)")
	xlsxFlag := flag.Bool("xlsx", false, "Export the report as XLSX instead of CSV")
	flag.Parse()

	if *userFlag == "" {
		logger.Fatal("Missing required -user flag")
	}

	logger.Info("Starting report generation", zap.String("user", *userFlag))

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if _, ok := services.Users.Get(*userFlag); !ok {
		logger.Fatal("Unknown user", zap.String("user", *userFlag))
	}

	movements, err := services.Ledger.Load(*userFlag)
	if err != nil {
		logger.Fatal("Failed to load movements", zap.String("user", *userFlag), zap.Error(err))
	}

	common.PrintHeader("REPORTE DE MOVIMIENTOS", common.DefaultWidth)
	printSnapshot(stats.Compute(movements), len(movements))

	var path string
	if *xlsxFlag {
		path, err = services.Reports.GenerateXLSX(*userFlag, movements)
	} else {
		path, err = services.Reports.Generate(*userFlag, movements)
	}
	if err != nil {
		logger.Fatal("Failed to generate report", zap.String("user", *userFlag), zap.Error(err))
	}

	common.PrintFooter(fmt.Sprintf("Reporte generado: %s", path), common.DefaultWidth)

	logger.Info("Report generation completed",
		zap.String("user", *userFlag),
		zap.String("path", path),
		zap.Int("movements", len(movements)))
}
