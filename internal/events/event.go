// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"iqol_crm_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCreated is published when a new lead is persisted, whether from manual
// entry or bulk intake.
type LeadCreated struct {
	BaseEvent
	LeadID      string `json:"leadId"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Source      string `json:"source"`
	KamID       string `json:"kamId,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.created" }

// CallLogged is published when a call outcome is recorded against a lead or
// agent and the contact status machine has advanced.
type CallLogged struct {
	BaseEvent
	EntityType    string `json:"entityType"` // "lead" or "agent"
	EntityID      string `json:"entityId"`
	Connection    string `json:"connection"`
	ContactStatus string `json:"contactStatus"`
	KamID         string `json:"kamId,omitempty"`
}

func (e CallLogged) EventName() string { return "contacts.call_logged" }

// LeadConverted is published after a lead has been fully converted into an
// agent (the lead record is gone, the agent record exists).
type LeadConverted struct {
	BaseEvent
	LeadID string `json:"leadId"`
	CpID   string `json:"cpId"`
	KamID  string `json:"kamId,omitempty"`
}

func (e LeadConverted) EventName() string { return "leads.converted" }

// =============================================================================
// Intake Domain Events
// =============================================================================

// BulkImportCompleted is published when a bulk intake commit finishes.
type BulkImportCompleted struct {
	BaseEvent
	UploadID       string   `json:"uploadId"`
	FileName       string   `json:"fileName"`
	Committed      int      `json:"committed"`
	Skipped        int      `json:"skipped"`
	SkippedNumbers []string `json:"skippedNumbers,omitempty"`
	UploaderEmail  string   `json:"uploaderEmail,omitempty"`
}

func (e BulkImportCompleted) EventName() string { return "intake.import_completed" }
