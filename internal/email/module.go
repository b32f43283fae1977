package email

import (
	"context"
	"fmt"

	"iqol_crm_backend/internal/events"
	"iqol_crm_backend/platform/logger"
)

// Module wires email delivery to the domain events that trigger it. It has
// no HTTP surface.
type Module struct {
	sender Sender
	log    *logger.Logger
}

// NewModule creates the email module and subscribes it to the event bus.
func NewModule(sender Sender, bus events.Bus, log *logger.Logger) *Module {
	m := &Module{sender: sender, log: log}

	bus.Subscribe(events.BulkImportCompleted{}.EventName(), events.HandlerFunc(m.onBulkImportCompleted))

	return m
}

func (m *Module) onBulkImportCompleted(ctx context.Context, event events.Event) error {
	completed, ok := event.(events.BulkImportCompleted)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if completed.UploaderEmail == "" {
		return nil
	}

	err := m.sender.SendImportSummary(ctx, completed.UploaderEmail, ImportSummary{
		FileName:       completed.FileName,
		Committed:      completed.Committed,
		Skipped:        completed.Skipped,
		SkippedNumbers: completed.SkippedNumbers,
	})
	if err != nil {
		return fmt.Errorf("send import summary for upload %s: %w", completed.UploadID, err)
	}

	m.log.Info("import summary sent",
		"uploadId", completed.UploadID,
		"to", completed.UploaderEmail,
	)
	return nil
}
