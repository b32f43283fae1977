package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"iqol_crm_backend/internal/leads/repository"
	"iqol_crm_backend/internal/leads/transport"
	"iqol_crm_backend/platform/logger"
)

type fakeConversionLeads struct {
	stuck   []repository.Lead
	deleted []string
	cleared []uuid.UUID
	listErr error
}

func (f *fakeConversionLeads) ListConverting(ctx context.Context) ([]repository.Lead, error) {
	return f.stuck, f.listErr
}

func (f *fakeConversionLeads) Delete(ctx context.Context, leadID string) error {
	f.deleted = append(f.deleted, leadID)
	return nil
}

func (f *fakeConversionLeads) ClearConverting(ctx context.Context, leadRowID uuid.UUID) error {
	f.cleared = append(f.cleared, leadRowID)
	return nil
}

type fakeConversionAgents struct {
	existing map[string]bool
	err      error
}

func (f *fakeConversionAgents) ExistsByCpID(ctx context.Context, cpID string) (bool, error) {
	return f.existing[cpID], f.err
}

func convertingLead(leadID, cpID string) repository.Lead {
	lead := repository.Lead{ID: uuid.New(), LeadID: leadID, Converting: true}
	if cpID != "" {
		lead.ConvertingCpID = &cpID
	}
	return lead
}

func TestReconcileFinishesCompletedConversion(t *testing.T) {
	leads := &fakeConversionLeads{stuck: []repository.Lead{convertingLead("M101", "A55")}}
	agents := &fakeConversionAgents{existing: map[string]bool{"A55": true}}

	touched, err := ReconcileConversions(context.Background(), leads, agents, logger.New("test"))
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if touched != 1 {
		t.Fatalf("touched = %d, want 1", touched)
	}
	if len(leads.deleted) != 1 || leads.deleted[0] != "M101" {
		t.Fatalf("deleted = %v, want [M101]", leads.deleted)
	}
	if len(leads.cleared) != 0 {
		t.Fatalf("cleared = %v, want none", leads.cleared)
	}
}

func TestReconcileUnwindsIncompleteConversion(t *testing.T) {
	lead := convertingLead("M102", "A56")
	leads := &fakeConversionLeads{stuck: []repository.Lead{lead}}
	agents := &fakeConversionAgents{existing: map[string]bool{}}

	touched, err := ReconcileConversions(context.Background(), leads, agents, logger.New("test"))
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if touched != 1 {
		t.Fatalf("touched = %d, want 1", touched)
	}
	if len(leads.deleted) != 0 {
		t.Fatalf("deleted = %v, want none", leads.deleted)
	}
	if len(leads.cleared) != 1 || leads.cleared[0] != lead.ID {
		t.Fatalf("cleared = %v, want [%s]", leads.cleared, lead.ID)
	}
}

func TestReconcileUnwindsFlagWithoutCpID(t *testing.T) {
	lead := convertingLead("M103", "")
	leads := &fakeConversionLeads{stuck: []repository.Lead{lead}}
	agents := &fakeConversionAgents{existing: map[string]bool{}}

	touched, err := ReconcileConversions(context.Background(), leads, agents, logger.New("test"))
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if touched != 1 {
		t.Fatalf("touched = %d, want 1", touched)
	}
	if len(leads.cleared) != 1 {
		t.Fatalf("cleared = %v, want one entry", leads.cleared)
	}
}

func TestReconcileSkipsLeadOnLookupFailure(t *testing.T) {
	leads := &fakeConversionLeads{stuck: []repository.Lead{convertingLead("M104", "A57")}}
	agents := &fakeConversionAgents{err: errors.New("store down")}

	touched, err := ReconcileConversions(context.Background(), leads, agents, logger.New("test"))
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if touched != 0 {
		t.Fatalf("touched = %d, want 0", touched)
	}
	if len(leads.deleted) != 0 || len(leads.cleared) != 0 {
		t.Fatalf("no writes expected, got deleted=%v cleared=%v", leads.deleted, leads.cleared)
	}
}

func TestReconcilePropagatesListError(t *testing.T) {
	leads := &fakeConversionLeads{listErr: errors.New("store down")}

	_, err := ReconcileConversions(context.Background(), leads, &fakeConversionAgents{}, logger.New("test"))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestConvertedAgentCarriesLeadAcquisitionDate(t *testing.T) {
	email := "asha@example.com"
	kamID := "kam-3"
	kamName := "Meera"
	added := time.Date(2024, 2, 14, 9, 30, 0, 0, time.UTC)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	lead := repository.Lead{
		ID:            uuid.New(),
		LeadID:        "M101",
		Name:          "Asha",
		PhoneNumber:   "9876543210",
		Email:         &email,
		Source:        "instagram",
		ContactStatus: "connected",
		KamID:         &kamID,
		KamName:       &kamName,
		BlackListed:   true,
		Added:         added,
		LastModified:  added,
	}

	agent := agentFromLead(lead, transport.ConvertLeadRequest{FirmName: strPtr("Asha Realty")}, "kam-9", "Ravi", now)

	if !agent.Added.Equal(added) {
		t.Fatalf("Added = %v, want lead's %v", agent.Added, added)
	}
	if !agent.LastModified.Equal(now) {
		t.Fatalf("LastModified = %v, want %v", agent.LastModified, now)
	}
	if !agent.Verified || agent.VerificationDate == nil || !agent.VerificationDate.Equal(now) {
		t.Fatalf("verification not stamped: verified=%v date=%v", agent.Verified, agent.VerificationDate)
	}
	if agent.ContactStatus != "connected" || !agent.BlackListed {
		t.Fatalf("lead state not carried: status=%q blackListed=%v", agent.ContactStatus, agent.BlackListed)
	}
	if agent.KamID == nil || *agent.KamID != "kam-3" {
		t.Fatalf("lead's KAM should win, got %v", agent.KamID)
	}
	if agent.SourceLeadID == nil || *agent.SourceLeadID != "M101" {
		t.Fatalf("SourceLeadID = %v, want M101", agent.SourceLeadID)
	}
}

func TestConvertedAgentFallsBackToConvertingUsersKam(t *testing.T) {
	email := "ravi@example.com"
	lead := repository.Lead{LeadID: "M102", Email: &email, Added: time.Now().UTC()}

	agent := agentFromLead(lead, transport.ConvertLeadRequest{}, "kam-9", "Ravi", time.Now().UTC())

	if agent.KamID == nil || *agent.KamID != "kam-9" || agent.KamName == nil || *agent.KamName != "Ravi" {
		t.Fatalf("converting user's KAM not applied: id=%v name=%v", agent.KamID, agent.KamName)
	}
}

func strPtr(s string) *string { return &s }
