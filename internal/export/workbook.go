package export

import (
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the exported leads.
const SheetName = "Leads"

var headers = []any{
	"ID", "Criado em", "Produto", "Formulário", "Nome", "Cargo", "Município", "UF",
	"E-mail", "WhatsApp", "Interesse", "Módulos", "Mensagem", "Observações",
	"Página", "UTM Source", "UTM Medium", "UTM Campaign",
}

// WriteWorkbook renders rows as an XLSX workbook with a bold, frozen header.
func WriteWorkbook(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("export: freeze header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export: cell for row %d: %w", i, err)
		}
		values := []any{
			row.ID,
			row.CreatedAt.UTC().Format(time.DateTime),
			row.Product,
			row.FormType,
			row.Name,
			nullable(row.Role),
			nullable(row.Municipality),
			nullable(row.UF),
			row.Email,
			nullable(row.Whatsapp),
			nullable(row.Interest),
			strings.Join(row.Modules, ", "),
			nullable(row.Message),
			nullable(row.Observations),
			nullable(row.PageURL),
			nullable(row.UTMSource),
			nullable(row.UTMMedium),
			nullable(row.UTMCampaign),
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("export: write row %d: %w", row.ID, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func nullable(s sql.NullString) string {
	if !s.Valid {
		return ""
	}
	return s.String
}
