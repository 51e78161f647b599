package dashboard

import (
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/domain"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/i18n"
)

// ExportSheet is the worksheet name used by WriteXLSX
const ExportSheet = "Visits"

var exportColumns = []string{
	"visit_date",
	"rep_name",
	"client_name",
	"client_type",
	"employee_name",
	"employee_phone",
	"company_email",
	"purpose_of_visit",
	"client_location",
	"notes",
}

// WriteXLSX writes rows as a spreadsheet with headers and enum values in lang
func WriteXLSX(w io.Writer, rows []domain.Visit, lang i18n.Language) error {
	t := i18n.For(lang)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := lo.Map(exportColumns, func(key string, _ int) any { return t(key) })
	if err := f.SetSheetRow(ExportSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(ExportSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, v := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		record := []any{
			v.VisitDate,
			v.RepName,
			v.ClientName,
			t(string(v.ClientType)),
			v.EmployeeName,
			v.EmployeePhone,
			v.CompanyEmail,
			strings.Join(lo.Map(v.VisitPurposes, func(p domain.VisitPurpose, _ int) string { return t(string(p)) }), ", "),
			formatLocation(v.ClientLocation),
			v.Notes,
		}
		if err := f.SetSheetRow(ExportSheet, cell, &record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(ExportSheet, "A", "J", 20); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	if i18n.Direction(lang) == i18n.RTL {
		rtl := true
		if err := f.SetSheetView(ExportSheet, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
			return fmt.Errorf("failed to set sheet direction: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func formatLocation(c *domain.Coordinates) string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("%.6f, %.6f", c.Latitude, c.Longitude)
}
