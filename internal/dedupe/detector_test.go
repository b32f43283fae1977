package dedupe

import (
	"context"
	"errors"
	"testing"
)

type fakeStore struct {
	numbers map[string]bool
	err     error
	queried [][]string
}

func (f *fakeStore) ExistsByPhoneVariants(_ context.Context, variants []string) (bool, error) {
	f.queried = append(f.queried, variants)
	if f.err != nil {
		return false, f.err
	}
	for _, v := range variants {
		if f.numbers[v] {
			return true, nil
		}
	}
	return false, nil
}

func TestCheckFindsLeadStoreDuplicateUnderLegacyFormat(t *testing.T) {
	leads := &fakeStore{numbers: map[string]bool{"+919876543210": true}}
	agents := &fakeStore{}
	d := NewDetector(leads, agents, nil)

	result := d.Check(context.Background(), "9876543210", "9876543210")
	if !result.IsDuplicate || result.Type != TypeLeads {
		t.Fatalf("expected lead duplicate, got %+v", result)
	}
}

func TestCheckReportsLeadsWhenNumberExistsInBothStores(t *testing.T) {
	leads := &fakeStore{numbers: map[string]bool{"9876543210": true}}
	agents := &fakeStore{numbers: map[string]bool{"9876543210": true}}
	d := NewDetector(leads, agents, nil)

	result := d.Check(context.Background(), "9876543210", "9876543210")
	if result.Type != TypeLeads {
		t.Fatalf("expected leads tie-break, got %q", result.Type)
	}
}

func TestCheckFindsAgentStoreDuplicate(t *testing.T) {
	leads := &fakeStore{}
	agents := &fakeStore{numbers: map[string]bool{"9876543210": true}}
	d := NewDetector(leads, agents, nil)

	result := d.Check(context.Background(), "9876543210", "+91 98765 43210")
	if !result.IsDuplicate || result.Type != TypeAgents {
		t.Fatalf("expected agent duplicate, got %+v", result)
	}
}

func TestCheckTreatsStoreFailureAsNotDuplicate(t *testing.T) {
	leads := &fakeStore{err: errors.New("store unavailable")}
	agents := &fakeStore{err: errors.New("store unavailable")}
	d := NewDetector(leads, agents, nil)

	result := d.Check(context.Background(), "9876543210", "9876543210")
	if result.IsDuplicate {
		t.Fatalf("expected failure to report not-a-duplicate, got %+v", result)
	}
}

func TestCheckQueriesAllThreeVariants(t *testing.T) {
	leads := &fakeStore{}
	agents := &fakeStore{}
	d := NewDetector(leads, agents, nil)

	d.Check(context.Background(), "9876543210", "91 98765 43210")

	if len(leads.queried) != 1 {
		t.Fatalf("expected one lead query, got %d", len(leads.queried))
	}
	if got := len(leads.queried[0]); got != 3 {
		t.Fatalf("expected 3 variants queried, got %d: %v", got, leads.queried[0])
	}
}
