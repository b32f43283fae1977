package transport

import (
	"time"

	"iqol_crm_backend/internal/agents/repository"
)

// Timestamps cross the API boundary as Unix milliseconds.

type CreateAgentRequest struct {
	Name             string   `json:"name" validate:"required,min=1,max=200"`
	PhoneNumber      string   `json:"phoneNumber" validate:"required"`
	Email            *string  `json:"email,omitempty" validate:"omitempty,email"`
	Source           string   `json:"source" validate:"required"`
	FirmName         *string  `json:"firmName,omitempty"`
	FirmSize         *string  `json:"firmSize,omitempty"`
	AreaOfOperation  []string `json:"areaOfOperation,omitempty"`
	BusinessCategory []string `json:"businessCategory,omitempty" validate:"omitempty,dive,oneof=resale rental primary"`
}

type PatchAgentRequest struct {
	AgentStatus      *string  `json:"agentStatus,omitempty" validate:"omitempty,oneof=active inactive suspended"`
	KamID            *string  `json:"kamId,omitempty"`
	KamName          *string  `json:"kamName,omitempty"`
	FirmName         *string  `json:"firmName,omitempty"`
	FirmSize         *string  `json:"firmSize,omitempty"`
	AreaOfOperation  []string `json:"areaOfOperation,omitempty"`
	BusinessCategory []string `json:"businessCategory,omitempty" validate:"omitempty,dive,oneof=resale rental primary"`
	BlackListed      *bool    `json:"blackListed,omitempty"`
	OnBroadcast      *bool    `json:"onBroadcast,omitempty"`
	CommunityJoined  *bool    `json:"communityJoined,omitempty"`
}

type RecordCallRequest struct {
	Connection string  `json:"connection" validate:"required,oneof=connected 'not connected'"`
	Medium     *string `json:"medium,omitempty"`
	Direction  *string `json:"direction,omitempty"`
	Note       *string `json:"note,omitempty"`
}

type CreateNoteRequest struct {
	Note string `json:"note" validate:"required,min=1"`
}

type ListAgentsQuery struct {
	ContactStatus string `form:"contactStatus"`
	AgentStatus   string `form:"agentStatus"`
	KamID         string `form:"kamId"`
	Search        string `form:"search"`
	Page          int    `form:"page"`
	PageSize      int    `form:"pageSize"`
}

type AgentResponse struct {
	CpID             string   `json:"cpId"`
	Name             string   `json:"name"`
	PhoneNumber      string   `json:"phoneNumber"`
	Email            *string  `json:"email,omitempty"`
	Source           string   `json:"source"`
	FirmName         *string  `json:"firmName,omitempty"`
	FirmSize         *string  `json:"firmSize,omitempty"`
	AreaOfOperation  []string `json:"areaOfOperation,omitempty"`
	BusinessCategory []string `json:"businessCategory,omitempty"`
	AgentStatus      string   `json:"agentStatus"`
	ContactStatus    string   `json:"contactStatus"`
	KamID            *string  `json:"kamId,omitempty"`
	KamName          *string  `json:"kamName,omitempty"`
	Verified         bool     `json:"verified"`
	VerificationDate *int64   `json:"verificationDate,omitempty"`
	BlackListed      bool     `json:"blackListed"`
	OnBroadcast      bool     `json:"onBroadcast"`
	CommunityJoined  bool     `json:"communityJoined"`
	SourceLeadID     *string  `json:"sourceLeadId,omitempty"`
	InventoryCount   int      `json:"inventoryCount"`
	CreditBalance    int      `json:"creditBalance"`
	PaymentsCount    int      `json:"paymentsCount"`
	PhoneWarning     string   `json:"phoneWarning,omitempty"`
	LastTried        *int64   `json:"lastTried,omitempty"`
	LastConnect      *int64   `json:"lastConnect,omitempty"`
	Added            int64    `json:"added"`
	LastModified     int64    `json:"lastModified"`
}

type ConnectEntryResponse struct {
	OccurredAt int64  `json:"occurredAt"`
	Connection string `json:"connection"`
	Medium     string `json:"medium"`
	Direction  string `json:"direction"`
}

type NoteResponse struct {
	ID        string `json:"id"`
	KamID     string `json:"kamId"`
	Note      string `json:"note"`
	Source    string `json:"source"`
	CreatedAt int64  `json:"createdAt"`
}

type ListAgentsResponse struct {
	Items      []AgentResponse `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

func unixMS(t time.Time) int64 {
	return t.UnixMilli()
}

func unixMSPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

// ToAgentResponse maps a stored agent onto the wire shape.
func ToAgentResponse(agent repository.Agent, phoneWarning string) AgentResponse {
	return AgentResponse{
		CpID:             agent.CpID,
		Name:             agent.Name,
		PhoneNumber:      agent.PhoneNumber,
		Email:            agent.Email,
		Source:           agent.Source,
		FirmName:         agent.FirmName,
		FirmSize:         agent.FirmSize,
		AreaOfOperation:  agent.AreaOfOperation,
		BusinessCategory: agent.BusinessCategory,
		AgentStatus:      agent.AgentStatus,
		ContactStatus:    agent.ContactStatus,
		KamID:            agent.KamID,
		KamName:          agent.KamName,
		Verified:         agent.Verified,
		VerificationDate: unixMSPtr(agent.VerificationDate),
		BlackListed:      agent.BlackListed,
		OnBroadcast:      agent.OnBroadcast,
		CommunityJoined:  agent.CommunityJoined,
		SourceLeadID:     agent.SourceLeadID,
		InventoryCount:   agent.InventoryCount,
		CreditBalance:    agent.CreditBalance,
		PaymentsCount:    agent.PaymentsCount,
		PhoneWarning:     phoneWarning,
		LastTried:        unixMSPtr(agent.LastTried),
		LastConnect:      unixMSPtr(agent.LastConnect),
		Added:            unixMS(agent.Added),
		LastModified:     unixMS(agent.LastModified),
	}
}

func ToConnectHistoryResponse(entries []repository.ConnectEntry) []ConnectEntryResponse {
	out := make([]ConnectEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ConnectEntryResponse{
			OccurredAt: unixMS(e.OccurredAt),
			Connection: e.Connection,
			Medium:     e.Medium,
			Direction:  e.Direction,
		})
	}
	return out
}

func ToNoteResponse(n repository.AgentNote) NoteResponse {
	return NoteResponse{
		ID:        n.ID.String(),
		KamID:     n.KamID,
		Note:      n.Note,
		Source:    n.Source,
		CreatedAt: unixMS(n.CreatedAt),
	}
}

func ToNotesResponse(notes []repository.AgentNote) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, ToNoteResponse(n))
	}
	return out
}
