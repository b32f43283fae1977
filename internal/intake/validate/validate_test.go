package validate

import (
	"context"
	"strings"
	"testing"

	"iqol_crm_backend/internal/dedupe"
	"iqol_crm_backend/internal/intake/sheet"
	"iqol_crm_backend/internal/vocab"
)

type fakeDetector struct {
	known map[string]dedupe.Type
}

func (f *fakeDetector) Check(ctx context.Context, normalized, raw string) dedupe.Result {
	if t, ok := f.known[normalized]; ok {
		return dedupe.Result{IsDuplicate: true, Type: t}
	}
	return dedupe.Result{}
}

func newEngine(known map[string]dedupe.Type) *Engine {
	return NewEngine(&fakeDetector{known: known}, vocab.Default())
}

func row(number, name, source string) sheet.Row {
	return sheet.Row{
		sheet.ColNumber: number,
		sheet.ColName:   name,
		sheet.ColSource: source,
		sheet.ColEmail:  "",
	}
}

func TestValidateAcceptsCleanBatch(t *testing.T) {
	engine := newEngine(nil)
	report := engine.Validate(context.Background(), []sheet.Row{
		row("9876543210", "Asha", "instagram"),
		row("+919876543211", "Ravi", "referral"),
	})

	if report.HasCriticalErrors() {
		t.Fatalf("unexpected errors: %v", report.Errors)
	}
	committable := report.Committable()
	if len(committable) != 2 {
		t.Fatalf("committable = %d, want 2", len(committable))
	}
	if committable[1].Normalized != "9876543211" {
		t.Errorf("normalized = %q, want prefix stripped", committable[1].Normalized)
	}
}

func TestValidateRejectsMalformedPhone(t *testing.T) {
	engine := newEngine(nil)
	report := engine.Validate(context.Background(), []sheet.Row{
		row("12345", "Asha", "instagram"),
	})

	if !report.HasCriticalErrors() {
		t.Fatal("expected critical error for short number")
	}
	if !strings.Contains(report.ErrorMessage(), "10 digits") {
		t.Errorf("error message %q should explain the phone contract", report.ErrorMessage())
	}
	if len(report.Committable()) != 0 {
		t.Error("batch with critical errors must commit zero rows")
	}
}

func TestValidateRejectsMissingRequiredFields(t *testing.T) {
	engine := newEngine(nil)
	report := engine.Validate(context.Background(), []sheet.Row{
		row("9876543210", "", "instagram"),
	})

	if !report.HasCriticalErrors() {
		t.Fatal("expected critical error for missing name")
	}
}

func TestValidateRejectsBadEmailAndUnknownSource(t *testing.T) {
	engine := newEngine(nil)
	r := row("9876543210", "Asha", "carrier pigeon")
	r[sheet.ColEmail] = "not-an-email"

	report := engine.Validate(context.Background(), []sheet.Row{r})
	if len(report.Errors) != 2 {
		t.Fatalf("errors = %v, want email and source failures", report.Errors)
	}
}

func TestValidateCrossStoreDuplicateIsWarningOnly(t *testing.T) {
	engine := newEngine(map[string]dedupe.Type{"9876543210": dedupe.TypeAgents})
	report := engine.Validate(context.Background(), []sheet.Row{
		row("9876543210", "Asha", "instagram"),
		row("9876543211", "Ravi", "referral"),
	})

	if report.HasCriticalErrors() {
		t.Fatalf("cross-store duplicate must not block the batch: %v", report.Errors)
	}
	if len(report.Warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", report.Warnings)
	}

	committable := report.Committable()
	if len(committable) != 1 || committable[0].Normalized != "9876543211" {
		t.Fatalf("committable = %v, want only the fresh number", committable)
	}
	if report.Rows[0].DuplicateType != dedupe.TypeAgents {
		t.Errorf("duplicateType = %q, want agents", report.Rows[0].DuplicateType)
	}
}

func TestValidateIntraBatchDuplicateBlocksBothRows(t *testing.T) {
	engine := newEngine(nil)
	report := engine.Validate(context.Background(), []sheet.Row{
		row("9876543210", "Asha", "instagram"),
		row("+919876543210", "Asha again", "referral"),
	})

	if !report.HasCriticalErrors() {
		t.Fatal("intra-batch duplicate must reject the batch")
	}
	msg := report.ErrorMessage()
	if !strings.Contains(msg, "rows 1, 2") {
		t.Errorf("error %q should name both row indices", msg)
	}
	if len(report.Committable()) != 0 {
		t.Error("zero rows must be committable")
	}
	if report.Rows[0].DuplicateType != dedupe.TypeCSV || report.Rows[1].DuplicateType != dedupe.TypeCSV {
		t.Error("both occurrences should be marked as csv duplicates")
	}
}

func TestValidateRowIndicesAreOneBased(t *testing.T) {
	engine := newEngine(nil)
	report := engine.Validate(context.Background(), []sheet.Row{
		row("9876543210", "Asha", "instagram"),
		row("bad", "Ravi", "referral"),
	})

	if !strings.Contains(report.ErrorMessage(), "row 2:") {
		t.Errorf("error %q should reference row 2", report.ErrorMessage())
	}
}

func TestValidateImplausibleNumberWarnsWithoutBlocking(t *testing.T) {
	engine := newEngine(nil)
	report := engine.Validate(context.Background(), []sheet.Row{
		row("1234567890", "Asha", "instagram"),
	})

	if report.HasCriticalErrors() {
		t.Fatalf("implausible number must not block the batch: %v", report.Errors)
	}
	if len(report.Warnings) != 1 || !strings.Contains(report.Warnings[0], "1234567890") {
		t.Fatalf("warnings = %v, want one naming the number", report.Warnings)
	}
	if len(report.Committable()) != 1 {
		t.Fatal("warned row must stay committable")
	}
}
