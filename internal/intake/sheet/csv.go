package sheet

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
)

// utf8BOM is prepended by Excel when exporting CSV on Windows; left in place
// it corrupts the first header cell.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV reads a CSV stream into a 2-D cell array, stripping a UTF-8 BOM
// if present. Rows may have varying field counts; short rows are padded
// later during normalization.
func ParseCSV(r io.Reader) ([][]string, error) {
	buffered := bufio.NewReader(r)

	head, err := buffered.Peek(len(utf8BOM))
	if err == nil && head[0] == utf8BOM[0] && head[1] == utf8BOM[1] && head[2] == utf8BOM[2] {
		if _, err := buffered.Discard(len(utf8BOM)); err != nil {
			return nil, fmt.Errorf("strip BOM: %w", err)
		}
	}

	reader := csv.NewReader(buffered)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return records, nil
}
