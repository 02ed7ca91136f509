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

package report

import (
	"fmt"
	"time"

	"kiwillet/internal/audit"
	"kiwillet/internal/models"
	"kiwillet/internal/stats"
	"kiwillet/internal/store"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const nameTimestampLayout = "20060102_150405"

var reportFields = []string{"metrica", "valor"}

// Exporter renders statistics snapshots to durable report artifacts named
// by user and generation timestamp.
type Exporter struct {
	paths *store.Paths
	audit *audit.Log
}

func NewExporter(paths *store.Paths, auditLog *audit.Log) *Exporter {
	return &Exporter{paths: paths, audit: auditLog}
}

// Generate computes the snapshot for seq and writes it as a two-column
// metric/value table. It returns the artifact path.
func (e *Exporter) Generate(user string, seq []models.Movement) (string, error) {
	snapshot := stats.Compute(seq)
	name := fmt.Sprintf("reporte_%s_%s.csv", user, time.Now().Format(nameTimestampLayout))
	path, err := e.paths.ReportFile(name)
	if err != nil {
		return "", err
	}

	if err := store.SaveRows(path, reportFields, metricRows(snapshot)); err != nil {
		return "", fmt.Errorf("unable to write report for %s: %w", user, err)
	}

	e.audit.Event("reporte_generado", fmt.Sprintf("%s:%s", user, name))
	zap.L().Info("Report generated",
		zap.String("user", user),
		zap.String("path", path))
	return path, nil
}

// GenerateXLSX writes the same four metrics as an XLSX workbook.
func (e *Exporter) GenerateXLSX(user string, seq []models.Movement) (string, error) {
	snapshot := stats.Compute(seq)
	name := fmt.Sprintf("reporte_%s_%s.xlsx", user, time.Now().Format(nameTimestampLayout))
	path, err := e.paths.ReportFile(name)
	if err != nil {
		return "", err
	}

	xlsx := excelize.NewFile()
	sheet := xlsx.GetSheetName(xlsx.GetActiveSheetIndex())

	_ = xlsx.SetColWidth(sheet, "A", "A", 24)
	_ = xlsx.SetColWidth(sheet, "B", "B", 18)

	style, _ := xlsx.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = xlsx.SetCellStyle(sheet, "A1", "B1", style)
	_ = xlsx.SetCellValue(sheet, "A1", "Métrica")
	_ = xlsx.SetCellValue(sheet, "B1", "Valor")

	for i, row := range metricRows(snapshot) {
		_ = xlsx.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), row["metrica"])
		_ = xlsx.SetCellValue(sheet, fmt.Sprintf("B%d", i+2), row["valor"])
	}
	_ = xlsx.SetSheetName(sheet, "Reporte")

	if err := xlsx.SaveAs(path); err != nil {
		return "", fmt.Errorf("unable to write report for %s: %w", user, err)
	}

	e.audit.Event("reporte_generado", fmt.Sprintf("%s:%s", user, name))
	zap.L().Info("Report generated",
		zap.String("user", user),
		zap.String("path", path))
	return path, nil
}

// metricRows renders the four fixed metrics in their fixed order.
func metricRows(s models.Snapshot) []store.Row {
	return []store.Row{
		{"metrica": "Saldo promedio", "valor": s.AverageBalance.StringFixed(2)},
		{"metrica": "Total ingresos", "valor": s.TotalCredit.StringFixed(2)},
		{"metrica": "Total gastos", "valor": s.TotalDebit.StringFixed(2)},
		{"metrica": "Servicio más pagado", "valor": s.MostPaidService},
	}
}
