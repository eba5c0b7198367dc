package ledger

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/m3rciful/intakebot/internal/order"
)

const exportSheet = "Orders"

var exportHeader = []string{"ID", "Chat", "Domains", "Status", "Admin message", "Processed"}

// ExportXLSX writes orders as a single-sheet workbook, one row per order.
func ExportXLSX(w io.Writer, orders []order.Order) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for i, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, title); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for i, o := range orders {
		row := []any{
			o.ID,
			o.ChatID,
			strings.Join(o.Domains, "\n"),
			o.Answer,
			o.AdminNotification.MessageID,
			o.AdminNotification.Touched,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write order %d: %w", o.ID, err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
