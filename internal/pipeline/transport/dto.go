package transport

import "iqol_crm_backend/internal/pipeline/repository"

type AssignRequest struct {
	KamID   string `json:"kamId" validate:"required"`
	KamName string `json:"kamName" validate:"required"`
}

type AssignmentResponse struct {
	PhoneNumber string `json:"phoneNumber"`
	KamID       string `json:"kamId"`
	KamName     string `json:"kamName"`
	UpdatedAt   int64  `json:"updatedAt"`
}

func ToAssignmentResponse(a repository.Assignment) AssignmentResponse {
	return AssignmentResponse{
		PhoneNumber: a.PhoneNumber,
		KamID:       a.KamID,
		KamName:     a.KamName,
		UpdatedAt:   a.UpdatedAt.UnixMilli(),
	}
}
