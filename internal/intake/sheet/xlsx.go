package sheet

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX reads the first sheet of an XLSX stream into a 2-D cell array.
func ParseXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	return rows, nil
}

// Parse picks the decoder from the file name extension.
func Parse(fileName string, r io.Reader) ([][]string, error) {
	if isXLSX(fileName) {
		return ParseXLSX(r)
	}
	return ParseCSV(r)
}

func isXLSX(fileName string) bool {
	return strings.EqualFold(filepath.Ext(fileName), ".xlsx")
}
