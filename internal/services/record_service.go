// Package services provides business logic and orchestration above the
// stores: the record write path, settlement and transfer pairs, and the
// per-user account bootstrap.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"finanze/internal/amqp"
	"finanze/internal/core"
	"finanze/internal/storage"
)

// RecordService orchestrates record writes across SQLite and AMQP.
type RecordService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewRecordService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *RecordService {
	return &RecordService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateRecord saves a record locally and publishes an export message.
func (s *RecordService) CreateRecord(ctx context.Context, userID string, r core.Record) (string, error) {
	// Save to SQLite first (fast, reliable)
	id, err := s.storage.Append(ctx, userID, r)
	if err != nil {
		return "", fmt.Errorf("save record: %w", err)
	}

	// Publish async export message (non-blocking)
	if err := s.publishExport(ctx, userID, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			"id", id, "error", err)
		// Don't fail the request - record is saved locally
	}

	return id, nil
}

// UpdateRecord replaces a record locally and re-queues it for export.
func (s *RecordService) UpdateRecord(ctx context.Context, userID string, r core.Record) error {
	if err := s.storage.Update(ctx, userID, r); err != nil {
		return fmt.Errorf("update record: %w", err)
	}

	if err := s.publishExport(ctx, userID, r.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			"id", r.ID, "error", err)
	}

	return nil
}

// DeleteRecord soft deletes a record locally and publishes a delete message.
func (s *RecordService) DeleteRecord(ctx context.Context, userID, id string) error {
	if err := s.storage.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete message")
		return nil
	}
	if err := s.amqpClient.PublishRecordDelete(ctx, userID, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"id", id, "error", err)
		// Don't fail the request - record is deleted locally
	}

	return nil
}

func (s *RecordService) publishExport(ctx context.Context, userID, id string) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping export message")
		return nil
	}
	return s.amqpClient.PublishRecordExport(ctx, userID, id)
}

// Close closes both storage and AMQP connections.
func (s *RecordService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close record service: %v", errs)
	}

	return nil
}
