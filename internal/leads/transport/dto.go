package transport

import (
	"time"

	"iqol_crm_backend/internal/leads/repository"
)

// All timestamps cross the API boundary as Unix milliseconds.

type CreateLeadRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	PhoneNumber string  `json:"phoneNumber" validate:"required"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Source      string  `json:"source" validate:"required"`
}

type PatchLeadRequest struct {
	LeadStatus      *string `json:"leadStatus,omitempty"`
	KamID           *string `json:"kamId,omitempty"`
	KamName         *string `json:"kamName,omitempty"`
	Verified        *bool   `json:"verified,omitempty"`
	BlackListed     *bool   `json:"blackListed,omitempty"`
	OnBroadcast     *bool   `json:"onBroadcast,omitempty"`
	CommunityJoined *bool   `json:"communityJoined,omitempty"`
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

type ListLeadsQuery struct {
	ContactStatus string `form:"contactStatus"`
	LeadStatus    string `form:"leadStatus"`
	KamID         string `form:"kamId"`
	Search        string `form:"search"`
	Page          int    `form:"page"`
	PageSize      int    `form:"pageSize"`
}

type LeadResponse struct {
	LeadID          string  `json:"leadId"`
	Name            string  `json:"name"`
	PhoneNumber     string  `json:"phoneNumber"`
	Email           *string `json:"email,omitempty"`
	Source          string  `json:"source"`
	LeadStatus      string  `json:"leadStatus"`
	ContactStatus   string  `json:"contactStatus"`
	KamID           *string `json:"kamId,omitempty"`
	KamName         *string `json:"kamName,omitempty"`
	Verified        bool    `json:"verified"`
	BlackListed     bool    `json:"blackListed"`
	OnBroadcast     bool    `json:"onBroadcast"`
	CommunityJoined bool    `json:"communityJoined"`
	PhoneWarning    string  `json:"phoneWarning,omitempty"`
	LastTried       *int64  `json:"lastTried,omitempty"`
	LastConnect     *int64  `json:"lastConnect,omitempty"`
	Added           int64   `json:"added"`
	LastModified    int64   `json:"lastModified"`
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

type ListLeadsResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type ConvertLeadRequest struct {
	FirmName         *string  `json:"firmName,omitempty"`
	FirmSize         *string  `json:"firmSize,omitempty"`
	AreaOfOperation  []string `json:"areaOfOperation,omitempty"`
	BusinessCategory []string `json:"businessCategory,omitempty" validate:"omitempty,dive,oneof=resale rental primary"`
}

type ConvertLeadResponse struct {
	LeadID string `json:"leadId"`
	CpID   string `json:"cpId"`
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

// ToLeadResponse maps a stored lead onto the wire shape.
func ToLeadResponse(lead repository.Lead, phoneWarning string) LeadResponse {
	return LeadResponse{
		LeadID:          lead.LeadID,
		Name:            lead.Name,
		PhoneNumber:     lead.PhoneNumber,
		Email:           lead.Email,
		Source:          lead.Source,
		LeadStatus:      lead.LeadStatus,
		ContactStatus:   lead.ContactStatus,
		KamID:           lead.KamID,
		KamName:         lead.KamName,
		Verified:        lead.Verified,
		BlackListed:     lead.BlackListed,
		OnBroadcast:     lead.OnBroadcast,
		CommunityJoined: lead.CommunityJoined,
		PhoneWarning:    phoneWarning,
		LastTried:       unixMSPtr(lead.LastTried),
		LastConnect:     unixMSPtr(lead.LastConnect),
		Added:           unixMS(lead.Added),
		LastModified:    unixMS(lead.LastModified),
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

func ToNoteResponse(n repository.LeadNote) NoteResponse {
	return NoteResponse{
		ID:        n.ID.String(),
		KamID:     n.KamID,
		Note:      n.Note,
		Source:    n.Source,
		CreatedAt: unixMS(n.CreatedAt),
	}
}

func ToNotesResponse(notes []repository.LeadNote) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, NoteResponse{
			ID:        n.ID.String(),
			KamID:     n.KamID,
			Note:      n.Note,
			Source:    n.Source,
			CreatedAt: unixMS(n.CreatedAt),
		})
	}
	return out
}
