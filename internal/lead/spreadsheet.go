// AngelaMos | 2026
// spreadsheet.go

package lead

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/finyara/leadflow/internal/core"
)

const (
	exportSheet  = "Leads"
	columnName   = "Name"
	columnPhone  = "Phone"
	XLSXMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeader = []any{
	columnName,
	columnPhone,
	"Status",
	"AssignedTo",
	"Notes",
	"UploadedBy",
	"FirstCallDate",
	"NextFollowupDate",
}

// ParseSheet reads the first worksheet and returns every row carrying both a
// Name and a Phone. Other columns are ignored.
func ParseSheet(r io.Reader) ([]NewRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, core.BadRequestError("could not read spreadsheet")
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.BadRequestError("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, core.BadRequestError("could not read spreadsheet")
	}
	if len(rows) == 0 {
		return nil, core.BadRequestError("no valid leads found in the uploaded file")
	}

	nameCol, phoneCol := -1, -1
	for i, cell := range rows[0] {
		switch {
		case strings.EqualFold(strings.TrimSpace(cell), columnName):
			nameCol = i
		case strings.EqualFold(strings.TrimSpace(cell), columnPhone):
			phoneCol = i
		}
	}
	if nameCol < 0 || phoneCol < 0 {
		return nil, core.BadRequestError("spreadsheet must have Name and Phone columns")
	}

	out := make([]NewRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name := cellAt(row, nameCol)
		phone := cellAt(row, phoneCol)
		if name == "" || phone == "" {
			continue
		}
		out = append(out, NewRow{Name: name, Phone: phone})
	}

	return out, nil
}

func cellAt(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// WriteSheet renders leads as an xlsx workbook with a single "Leads" sheet.
func WriteSheet(w io.Writer, leads []Lead) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return fmt.Errorf("export leads: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("export leads: %w", err)
	}

	for i := range leads {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export leads: %w", err)
		}
		row := exportRow(&leads[i])
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("export leads: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export leads: %w", err)
	}

	return nil
}

func exportRow(l *Lead) []any {
	assignee := "Unassigned"
	if l.IsAssigned() {
		if name := l.Assignee.FullName(); name != "" {
			assignee = name
		}
	}

	uploader := l.Uploader.FullName()
	if uploader == "" {
		uploader = "Unknown"
	}

	return []any{
		l.Name,
		l.Phone,
		string(l.Status),
		assignee,
		l.Notes,
		uploader,
		formatDate(l.FirstCallDate),
		formatDate(l.NextFollowupDate),
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
