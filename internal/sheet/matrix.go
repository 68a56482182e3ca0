// Package sheet confines spreadsheet reading to one place. The rest of the
// system only ever sees the raw 2-D cell matrix it yields.
package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheets lists the sheet names of the workbook at path.
func Sheets(path string) ([]string, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()
	return wb.GetSheetList(), nil
}

// ReadMatrix returns all cell values of one sheet as raw strings. An empty
// sheetName selects the first sheet.
func ReadMatrix(path, sheetName string) ([][]string, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	if sheetName == "" {
		list := wb.GetSheetList()
		if len(list) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheetName = list[0]
	}

	rows, err := wb.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}
	return rows, nil
}
