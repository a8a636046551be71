// Package report renders carts as spreadsheets for quote follow-up.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"knife-atelier/internal/cart"
)

const sheetName = "Panier"

var headers = []string{"Article", "Type", "Prix unitaire (€)", "Quantité", "Sous-total (€)", "Personnalisations"}

// FileName is the attachment name of a cart export.
func FileName(createdAt time.Time) string {
	return fmt.Sprintf("panier_%s.xlsx", createdAt.Format("20060102_1504"))
}

// CartWorkbook writes one row per cart line followed by the totals.
func CartWorkbook(snap cart.Snapshot, createdAt time.Time) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	f.SetCellValue(sheetName, "A1", "Date")
	f.SetCellValue(sheetName, "B1", createdAt.Format("2006-01-02 15:04"))

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 3)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve header cell: %w", err)
		}
		f.SetCellValue(sheetName, cell, h)
	}

	row := 4
	for _, item := range snap.Items {
		values := []any{
			item.Name,
			string(item.Type),
			item.Price,
			item.Quantity,
			item.Subtotal(),
			customizationText(item.Customizations),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve item cell: %w", err)
			}
			f.SetCellValue(sheetName, cell, v)
		}
		row++
	}

	row++
	f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), "Articles")
	f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), snap.TotalItems)
	f.SetCellValue(sheetName, fmt.Sprintf("C%d", row+1), "TOTAL")
	f.SetCellValue(sheetName, fmt.Sprintf("E%d", row+1), snap.TotalPrice)

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A3", "F3", style); err != nil {
		return nil, fmt.Errorf("failed to style headers: %w", err)
	}
	if err := f.SetCellStyle(sheetName, fmt.Sprintf("C%d", row), fmt.Sprintf("E%d", row+1), style); err != nil {
		return nil, fmt.Errorf("failed to style totals: %w", err)
	}
	f.SetColWidth(sheetName, "A", "A", 32)
	f.SetColWidth(sheetName, "F", "F", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

func customizationText(c cart.Customizations) string {
	parts := make([]string, 0, len(c))
	for _, entry := range c {
		parts = append(parts, entry.Label+" : "+entry.Value)
	}
	return strings.Join(parts, "\n")
}
