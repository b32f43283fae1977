// Package sheet turns uploaded spreadsheets (CSV or XLSX) into normalized
// row objects keyed by canonical column names.
package sheet

import (
	"fmt"
	"sort"
	"strings"
)

// Canonical column names after header normalization.
const (
	ColNumber = "Number"
	ColName   = "Name"
	ColEmail  = "Email"
	ColSource = "Lead Source"
)

// headerSynonyms maps lower-cased raw headers onto canonical names.
// Unrecognized headers pass through unchanged.
var headerSynonyms = map[string]string{
	"phone":       ColNumber,
	"number":      ColNumber,
	"phonenumber": ColNumber,
	"name":        ColName,
	"email":       ColEmail,
	"lead source": ColSource,
	"leadsource":  ColSource,
	"source":      ColSource,
}

// Row is one data row keyed by normalized header. Missing cells are present
// as empty strings.
type Row map[string]string

// NormalizeHeader maps a single raw header onto its canonical name.
func NormalizeHeader(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := headerSynonyms[key]; ok {
		return canonical
	}
	return strings.TrimSpace(raw)
}

// Normalize converts a parsed 2-D cell array (first row = header) into row
// objects. It fails fast when a required column is missing after synonym
// mapping, and drops rows where both Number and Name are empty, treating
// them as blank trailing rows rather than data.
func Normalize(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("sheet is empty")
	}

	headers := make([]string, len(records[0]))
	seen := make(map[string]bool, len(records[0]))
	for i, raw := range records[0] {
		headers[i] = NormalizeHeader(raw)
		seen[headers[i]] = true
	}

	missing := make([]string, 0, 3)
	for _, required := range []string{ColNumber, ColName, ColSource} {
		if !seen[required] {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(headers))
		for i, header := range headers {
			value := ""
			if i < len(record) {
				value = strings.TrimSpace(record[i])
			}
			row[header] = value
		}
		if row[ColNumber] == "" && row[ColName] == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
