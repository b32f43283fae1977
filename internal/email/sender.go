// Package email delivers operational mail, currently the bulk import
// summary sent to the uploader when a commit finishes.
package email

import "context"

// ImportSummary is the payload for the post-commit summary mail.
type ImportSummary struct {
	FileName       string
	Committed      int
	Skipped        int
	SkippedNumbers []string
}

// Sender delivers operational emails.
type Sender interface {
	SendImportSummary(ctx context.Context, toEmail string, summary ImportSummary) error
}

// NoopSender is used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendImportSummary(ctx context.Context, toEmail string, summary ImportSummary) error {
	return nil
}
