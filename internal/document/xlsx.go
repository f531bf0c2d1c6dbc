package document

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/dillanmilo/railcore/internal/reports/domain"
)

const punchSheet = "Punch List"

var punchHeaders = []string{"Title", "Status", "Description", "Assignee", "Created"}

// RenderPunchListXLSX writes punch items to a single-sheet workbook, one row
// per item in input order.
func (r *Renderer) RenderPunchListXLSX(items []domain.PunchItem, projectName string) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", punchSheet); err != nil {
		return nil, fmt.Errorf("punch xlsx: %w", err)
	}
	_ = f.SetDocProps(&excelize.DocProperties{
		Title:   projectName + " punch list",
		Creator: "railcore",
		Created: r.today().Format("2006-01-02T15:04:05Z07:00"),
	})

	if err := f.SetSheetRow(punchSheet, "A1", &[]any{"Project", projectName}); err != nil {
		return nil, fmt.Errorf("punch xlsx: %w", err)
	}
	header := make([]any, len(punchHeaders))
	for i, h := range punchHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(punchSheet, "A3", &header); err != nil {
		return nil, fmt.Errorf("punch xlsx: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetCellStyle(punchSheet, "A1", "A1", bold)
		_ = f.SetCellStyle(punchSheet, "A3", "E3", bold)
	}

	for i, it := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+4)
		if err != nil {
			return nil, fmt.Errorf("punch xlsx: %w", err)
		}
		created := ""
		if !it.CreatedAt.IsZero() {
			created = it.CreatedAt.In(r.loc).Format("2006-01-02 15:04")
		}
		row := []any{it.Title, it.Status.Label(), it.Description, it.Assignee, created}
		if err := f.SetSheetRow(punchSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("punch xlsx: %w", err)
		}
	}
	_ = f.SetColWidth(punchSheet, "A", "A", 40)
	_ = f.SetColWidth(punchSheet, "C", "C", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("punch xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
