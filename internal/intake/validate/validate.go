// Package validate implements the bulk intake validation engine: per-row
// checks, cross-store duplicate warnings, and intra-batch duplicate errors.
package validate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"iqol_crm_backend/internal/dedupe"
	"iqol_crm_backend/internal/intake/sheet"
	"iqol_crm_backend/internal/vocab"
	"iqol_crm_backend/platform/phone"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// DupChecker is the slice of the duplicate detector the engine needs.
type DupChecker interface {
	Check(ctx context.Context, normalized, raw string) dedupe.Result
}

// RowReport annotates one uploaded row with its validation outcome.
// Index is 1-based over the data rows, matching what the uploader sees in
// their spreadsheet below the header.
type RowReport struct {
	Index         int         `json:"index"`
	Row           sheet.Row   `json:"row"`
	Normalized    string      `json:"normalizedNumber,omitempty"`
	Errors        []string    `json:"errors,omitempty"`
	Warnings      []string    `json:"warnings,omitempty"`
	IsDuplicate   bool        `json:"isDuplicate"`
	DuplicateType dedupe.Type `json:"duplicateType,omitempty"`
}

// Report is the outcome of validating a whole upload.
type Report struct {
	Rows     []RowReport `json:"rows"`
	Errors   []string    `json:"errors,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
}

// HasCriticalErrors reports whether the batch must be rejected outright.
func (r Report) HasCriticalErrors() bool {
	return len(r.Errors) > 0
}

// ErrorMessage joins all critical errors into the single aggregated message
// shown to the uploader.
func (r Report) ErrorMessage() string {
	return strings.Join(r.Errors, "\n")
}

// Committable returns the rows eligible for commit: no critical errors, not
// already present in either record store.
func (r Report) Committable() []RowReport {
	out := make([]RowReport, 0, len(r.Rows))
	for _, row := range r.Rows {
		if len(row.Errors) == 0 && !row.IsDuplicate {
			out = append(out, row)
		}
	}
	return out
}

// Engine validates uploaded rows against the phone contract, the lead-source
// vocabulary, and both record stores.
type Engine struct {
	detector DupChecker
	vocab    vocab.Vocabulary
}

func NewEngine(detector DupChecker, voc vocab.Vocabulary) *Engine {
	return &Engine{detector: detector, vocab: voc}
}

// Validate runs the per-row checks in order, then a second pass for numbers
// appearing twice inside the same upload. Cross-store duplicates are
// warnings and only exclude their row from commit; intra-batch duplicates
// are critical for both occurrences, because they mean the source file
// itself is malformed and must be fixed, not skipped.
func (e *Engine) Validate(ctx context.Context, rows []sheet.Row) Report {
	report := Report{Rows: make([]RowReport, 0, len(rows))}
	byNumber := make(map[string][]int)

	for i, row := range rows {
		rr := RowReport{Index: i + 1, Row: row}

		number := row[sheet.ColNumber]
		name := row[sheet.ColName]
		source := row[sheet.ColSource]
		email := row[sheet.ColEmail]

		if number == "" || name == "" || source == "" {
			rr.Errors = append(rr.Errors, fmt.Sprintf("row %d: Number, Name and Lead Source are required", rr.Index))
		}

		if number != "" {
			normalized, err := phone.Normalize(number)
			if err != nil {
				rr.Errors = append(rr.Errors, fmt.Sprintf("row %d: %s", rr.Index, err))
			} else {
				rr.Normalized = normalized
				byNumber[normalized] = append(byNumber[normalized], len(report.Rows))

				// Passes the 10-digit contract but not a number a carrier
				// would issue. Warning only; legacy data has plenty of these.
				if !phone.IsPlausibleMobile(normalized) {
					rr.Warnings = append(rr.Warnings, fmt.Sprintf("row %d: number %s does not look like a reachable mobile number", rr.Index, normalized))
				}

				if dup := e.detector.Check(ctx, normalized, number); dup.IsDuplicate {
					rr.IsDuplicate = true
					rr.DuplicateType = dup.Type
					rr.Warnings = append(rr.Warnings, fmt.Sprintf("row %d: number %s already exists in %s", rr.Index, normalized, dup.Type))
				}
			}
		}

		if email != "" && !emailPattern.MatchString(email) {
			rr.Errors = append(rr.Errors, fmt.Sprintf("row %d: invalid email address %q", rr.Index, email))
		}

		if source != "" && !e.vocab.HasSource(source) {
			rr.Errors = append(rr.Errors, fmt.Sprintf("row %d: unknown lead source %q", rr.Index, source))
		}

		report.Rows = append(report.Rows, rr)
	}

	for normalized, indices := range byNumber {
		if len(indices) < 2 {
			continue
		}
		rowNumbers := make([]string, 0, len(indices))
		for _, idx := range indices {
			rowNumbers = append(rowNumbers, fmt.Sprintf("%d", report.Rows[idx].Index))
		}
		msg := fmt.Sprintf("number %s appears in rows %s of this upload", normalized, strings.Join(rowNumbers, ", "))
		for _, idx := range indices {
			report.Rows[idx].Errors = append(report.Rows[idx].Errors, msg)
			report.Rows[idx].IsDuplicate = true
			report.Rows[idx].DuplicateType = dedupe.TypeCSV
		}
	}

	for _, rr := range report.Rows {
		report.Errors = append(report.Errors, rr.Errors...)
		report.Warnings = append(report.Warnings, rr.Warnings...)
	}
	return report
}
