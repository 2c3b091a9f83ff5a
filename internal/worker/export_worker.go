// Package worker drains the export queue: records saved to SQLite are
// mirrored to the external Google Sheets ledger, driven by AMQP messages
// with a periodic catch-up scan for anything the broker lost.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finanze/internal/amqp"
	"finanze/internal/ledger"
	"finanze/internal/storage"
)

type ExportWorker struct {
	storage   *storage.SQLiteRepository
	exporter  ledger.ExportWriter
	batchSize int
}

func NewExportWorker(st *storage.SQLiteRepository, exporter ledger.ExportWriter, batchSize int) *ExportWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &ExportWorker{
		storage:   st,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleMessage processes a single queue message. Returning an error makes
// the consumer nack with requeue, so transient exporter failures retry.
func (w *ExportWorker) HandleMessage(ctx context.Context, msg *amqp.RecordMessage) error {
	switch msg.Op {
	case amqp.OpExport:
		return w.exportRecord(ctx, msg.UserID, msg.ID)
	case amqp.OpDelete:
		// The external ledger is append-only: deletions stay in SQLite as
		// soft deletes and the sheet keeps its historical row.
		slog.InfoContext(ctx, "Record deleted, external ledger row retained",
			"record_id", msg.ID,
			"user_id", msg.UserID)
		return nil
	default:
		// Unknown op: ack and drop, requeueing would loop forever.
		slog.WarnContext(ctx, "Dropping message with unknown op",
			"op", msg.Op,
			"record_id", msg.ID)
		return nil
	}
}

func (w *ExportWorker) exportRecord(ctx context.Context, userID, id string) error {
	rec, err := w.storage.GetRecord(ctx, userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			// Deleted between publish and consume. Nothing left to export.
			slog.InfoContext(ctx, "Record gone before export, skipping",
				"record_id", id,
				"user_id", userID)
			return nil
		}
		return fmt.Errorf("get record from storage: %w", err)
	}

	ref, err := w.exporter.ExportRecord(ctx, userID, rec)
	if err != nil {
		return fmt.Errorf("export record %s: %w", id, err)
	}

	if err := w.storage.MarkExported(ctx, id); err != nil {
		// The row landed in the ledger; the catch-up scan may re-export it,
		// which is tolerable. Log and move on.
		slog.ErrorContext(ctx, "Failed to mark record exported",
			"record_id", id,
			"error", err)
		return nil
	}

	slog.InfoContext(ctx, "Record exported",
		"record_id", id,
		"user_id", userID,
		"row_ref", ref)
	return nil
}

// ProcessUnexported scans for records the AMQP path missed and exports them.
// Called from a ticker in the worker binary.
func (w *ExportWorker) ProcessUnexported(ctx context.Context) error {
	pending, err := w.storage.ListUnexported(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list unexported records: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing unexported records", "count", len(pending))

	var failed int
	for _, p := range pending {
		if err := w.exportRecord(ctx, p.UserID, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export pending record",
				"record_id", p.ID,
				"error", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d pending exports failed", failed, len(pending))
	}
	return nil
}

// StartupCheck drains a larger backlog once at worker startup, recovering
// from downtime or lost messages.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.storage.ListUnexported(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list unexported records at startup: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending exports found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending exports on startup, processing...",
		"count", len(pending))

	success := 0
	for _, p := range pending {
		if err := w.exportRecord(ctx, p.UserID, p.ID); err != nil {
			slog.ErrorContext(ctx, "Startup export failed",
				"record_id", p.ID,
				"error", err)
			continue
		}
		success++
	}

	slog.InfoContext(ctx, "Startup export check completed",
		"total", len(pending),
		"exported", success,
		"errors", len(pending)-success)
	return nil
}
