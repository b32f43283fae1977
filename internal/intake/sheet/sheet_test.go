package sheet

import (
	"strings"
	"testing"
)

func TestNormalizeMapsHeaderSynonyms(t *testing.T) {
	records := [][]string{
		{"Phone", "NAME", "email", "LeadSource"},
		{"9876543210", "Asha", "asha@example.com", "instagram"},
	}

	rows, err := Normalize(records)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}

	row := rows[0]
	if row[ColNumber] != "9876543210" {
		t.Errorf("Number = %q", row[ColNumber])
	}
	if row[ColName] != "Asha" {
		t.Errorf("Name = %q", row[ColName])
	}
	if row[ColEmail] != "asha@example.com" {
		t.Errorf("Email = %q", row[ColEmail])
	}
	if row[ColSource] != "instagram" {
		t.Errorf("Lead Source = %q", row[ColSource])
	}
}

func TestNormalizePassesUnknownHeadersThrough(t *testing.T) {
	records := [][]string{
		{"number", "name", "source", "City"},
		{"9876543210", "Asha", "referral", "Bengaluru"},
	}

	rows, err := Normalize(records)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if rows[0]["City"] != "Bengaluru" {
		t.Errorf("City = %q, want Bengaluru", rows[0]["City"])
	}
}

func TestNormalizeFailsFastOnMissingColumns(t *testing.T) {
	records := [][]string{
		{"name", "email"},
		{"Asha", "asha@example.com"},
	}

	_, err := Normalize(records)
	if err == nil {
		t.Fatal("expected error for missing columns")
	}
	if !strings.Contains(err.Error(), ColNumber) || !strings.Contains(err.Error(), ColSource) {
		t.Errorf("error %q should name the missing columns", err)
	}
}

func TestNormalizeDropsBlankTrailingRows(t *testing.T) {
	records := [][]string{
		{"number", "name", "source"},
		{"9876543210", "Asha", "referral"},
		{"", "", ""},
		{"", "", "direct"},
	}

	rows, err := Normalize(records)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1 (blank rows dropped)", len(rows))
	}
}

func TestNormalizePadsShortRows(t *testing.T) {
	records := [][]string{
		{"number", "name", "email", "source"},
		{"9876543210", "Asha"},
	}

	rows, err := Normalize(records)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if rows[0][ColEmail] != "" || rows[0][ColSource] != "" {
		t.Errorf("short row should default missing cells to empty, got %v", rows[0])
	}
}

func TestParseCSVStripsBOM(t *testing.T) {
	input := "\xEF\xBB\xBFnumber,name,source\n9876543210,Asha,referral\n"

	records, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if records[0][0] != "number" {
		t.Errorf("first header = %q, want bare \"number\"", records[0][0])
	}
}

func TestParseCSVHandlesRaggedRows(t *testing.T) {
	input := "number,name,source\n9876543210,Asha,referral\n9876543211,Ravi\n"

	records, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
}

func TestXLSXExtensionMatchIsCaseInsensitive(t *testing.T) {
	for _, name := range []string{"leads.xlsx", "LEADS.XLSX", "Leads.Xlsx"} {
		if !isXLSX(name) {
			t.Errorf("isXLSX(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"leads.csv", "leads.xlsx.csv", "xlsx", "leads"} {
		if isXLSX(name) {
			t.Errorf("isXLSX(%q) = true, want false", name)
		}
	}
}
