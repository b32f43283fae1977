package transport

import (
	"iqol_crm_backend/internal/intake/repository"
	"iqol_crm_backend/internal/intake/validate"
)

// UploadResponse carries the validation outcome back to the uploader,
// including the full annotated row set for preview.
type UploadResponse struct {
	ID             string          `json:"id"`
	FileName       string          `json:"fileName"`
	Status         string          `json:"status"`
	RowCount       int             `json:"rowCount"`
	Report         validate.Report `json:"report"`
	Committed      int             `json:"committed"`
	Skipped        int             `json:"skipped"`
	SkippedNumbers []string        `json:"skippedNumbers,omitempty"`
	CreatedAt      int64           `json:"createdAt"`
	CommittedAt    *int64          `json:"committedAt,omitempty"`
}

func ToUploadResponse(u repository.Upload) UploadResponse {
	resp := UploadResponse{
		ID:             u.ID.String(),
		FileName:       u.FileName,
		Status:         u.Status,
		RowCount:       u.RowCount,
		Report:         u.Report,
		Committed:      u.Committed,
		Skipped:        u.Skipped,
		SkippedNumbers: u.SkippedNumbers,
		CreatedAt:      u.CreatedAt.UnixMilli(),
	}
	if u.CommittedAt != nil {
		ms := u.CommittedAt.UnixMilli()
		resp.CommittedAt = &ms
	}
	return resp
}
