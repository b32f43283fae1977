package service

import (
	"context"
	"errors"
	"testing"

	"iqol_crm_backend/internal/counter"
	"iqol_crm_backend/internal/dedupe"
	"iqol_crm_backend/internal/intake/sheet"
	"iqol_crm_backend/internal/intake/validate"
	leadrepo "iqol_crm_backend/internal/leads/repository"
	"iqol_crm_backend/platform/logger"
)

type fakeReserver struct {
	next     int64
	reserved []int
}

func (f *fakeReserver) ReserveLeadIDs(ctx context.Context, n int) (counter.Block, error) {
	f.reserved = append(f.reserved, n)
	block := counter.NewBlock("M", "", f.next+1, n)
	f.next += int64(n)
	return block, nil
}

type fakeCommitDetector struct {
	known map[string]bool
}

func (f *fakeCommitDetector) Check(ctx context.Context, normalized, raw string) dedupe.Result {
	if f.known[normalized] {
		return dedupe.Result{IsDuplicate: true, Type: dedupe.TypeLeads}
	}
	return dedupe.Result{}
}

type fakeKams struct {
	assignments map[string][2]string
}

func (f *fakeKams) Lookup(ctx context.Context, normalized string) (string, string, bool) {
	a, ok := f.assignments[normalized]
	return a[0], a[1], ok
}

type fakeWriter struct {
	inserted []leadrepo.Lead
	failFor  map[string]bool
}

func (f *fakeWriter) Insert(ctx context.Context, lead leadrepo.Lead) error {
	if f.failFor[lead.PhoneNumber] {
		return errors.New("write failed")
	}
	f.inserted = append(f.inserted, lead)
	return nil
}

func committableRow(index int, number, name, source string) validate.RowReport {
	return validate.RowReport{
		Index:      index,
		Normalized: number,
		Row: sheet.Row{
			sheet.ColNumber: number,
			sheet.ColName:   name,
			sheet.ColSource: source,
		},
	}
}

func newCommitter(reserver *fakeReserver, detector *fakeCommitDetector, kams *fakeKams, writer *fakeWriter) *Committer {
	return NewCommitter(reserver, detector, kams, writer, logger.New("test"))
}

func TestCommitPersistsAllRows(t *testing.T) {
	reserver := &fakeReserver{next: 100}
	writer := &fakeWriter{}
	c := newCommitter(reserver, &fakeCommitDetector{}, &fakeKams{}, writer)

	result, err := c.Commit(context.Background(), []validate.RowReport{
		committableRow(1, "9876543210", "Asha", "instagram"),
		committableRow(2, "9876543211", "Ravi", "referral"),
	}, "kam-1", "Priya")
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	if result.Committed != 2 || result.Skipped != 0 || result.Failed != 0 {
		t.Fatalf("result = %+v, want 2 committed", result)
	}
	if len(writer.inserted) != 2 {
		t.Fatalf("inserted = %d, want 2", len(writer.inserted))
	}
	if writer.inserted[0].LeadID != "M101" || writer.inserted[1].LeadID != "M102" {
		t.Errorf("lead IDs = %s, %s; want M101, M102", writer.inserted[0].LeadID, writer.inserted[1].LeadID)
	}
	if writer.inserted[0].KamID == nil || *writer.inserted[0].KamID != "kam-1" {
		t.Errorf("lead should default to uploader's KAM")
	}
}

func TestCommitSkipsLateDuplicatesAndBurnsTheirIDs(t *testing.T) {
	reserver := &fakeReserver{next: 100}
	writer := &fakeWriter{}
	detector := &fakeCommitDetector{known: map[string]bool{"9876543210": true}}
	c := newCommitter(reserver, detector, &fakeKams{}, writer)

	result, err := c.Commit(context.Background(), []validate.RowReport{
		committableRow(1, "9876543210", "Asha", "instagram"),
		committableRow(2, "9876543211", "Ravi", "referral"),
	}, "kam-1", "Priya")
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	if result.Committed != 1 || result.Skipped != 1 {
		t.Fatalf("result = %+v, want 1 committed 1 skipped", result)
	}
	if len(result.SkippedNumbers) != 1 || result.SkippedNumbers[0] != "9876543210" {
		t.Fatalf("skippedNumbers = %v", result.SkippedNumbers)
	}
	// The whole block was reserved up front; the skipped row's ID is burned.
	if len(reserver.reserved) != 1 || reserver.reserved[0] != 2 {
		t.Fatalf("reserved = %v, want one reservation of 2", reserver.reserved)
	}
	if writer.inserted[0].LeadID != "M102" {
		t.Errorf("surviving row keeps its positional ID M102, got %s", writer.inserted[0].LeadID)
	}
}

func TestCommitInheritsPipelineAssignment(t *testing.T) {
	writer := &fakeWriter{}
	kams := &fakeKams{assignments: map[string][2]string{
		"9876543210": {"kam-9", "Meera"},
	}}
	c := newCommitter(&fakeReserver{}, &fakeCommitDetector{}, kams, writer)

	_, err := c.Commit(context.Background(), []validate.RowReport{
		committableRow(1, "9876543210", "Asha", "instagram"),
	}, "kam-1", "Priya")
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	if writer.inserted[0].KamID == nil || *writer.inserted[0].KamID != "kam-9" {
		t.Errorf("pipeline assignment should override the uploader's KAM")
	}
	if writer.inserted[0].KamName == nil || *writer.inserted[0].KamName != "Meera" {
		t.Errorf("kamName = %v, want Meera", writer.inserted[0].KamName)
	}
}

func TestCommitCountsWriteFailuresSeparately(t *testing.T) {
	writer := &fakeWriter{failFor: map[string]bool{"9876543210": true}}
	c := newCommitter(&fakeReserver{}, &fakeCommitDetector{}, &fakeKams{}, writer)

	result, err := c.Commit(context.Background(), []validate.RowReport{
		committableRow(1, "9876543210", "Asha", "instagram"),
		committableRow(2, "9876543211", "Ravi", "referral"),
	}, "kam-1", "Priya")
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	if result.Failed != 1 || result.Committed != 1 || result.Skipped != 0 {
		t.Fatalf("result = %+v, want 1 failed 1 committed", result)
	}
}

func TestCommitEmptySetReservesNothing(t *testing.T) {
	reserver := &fakeReserver{}
	c := newCommitter(reserver, &fakeCommitDetector{}, &fakeKams{}, &fakeWriter{})

	result, err := c.Commit(context.Background(), nil, "kam-1", "Priya")
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if result.Committed != 0 || len(reserver.reserved) != 0 {
		t.Fatalf("empty commit should be a no-op, got %+v", result)
	}
}
