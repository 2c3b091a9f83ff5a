package adapters

import (
	"context"

	"finanze/internal/core"
	"finanze/internal/services"
	"finanze/internal/storage"
)

// SQLiteAdapter routes record writes through RecordService, so every save
// also publishes an export message, while reads and account operations go
// straight to the repository. HTTP handlers see one store either way.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.RecordService
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.RecordService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

func (a *SQLiteAdapter) Append(ctx context.Context, userID string, r core.Record) (string, error) {
	return a.service.CreateRecord(ctx, userID, r)
}

func (a *SQLiteAdapter) Update(ctx context.Context, userID string, r core.Record) error {
	return a.service.UpdateRecord(ctx, userID, r)
}

func (a *SQLiteAdapter) Delete(ctx context.Context, userID, id string) error {
	return a.service.DeleteRecord(ctx, userID, id)
}

func (a *SQLiteAdapter) ListRecords(ctx context.Context, userID string) ([]core.Record, error) {
	return a.storage.ListRecords(ctx, userID)
}

func (a *SQLiteAdapter) CreateAccount(ctx context.Context, userID string, acc core.Account) (string, error) {
	return a.storage.CreateAccount(ctx, userID, acc)
}

func (a *SQLiteAdapter) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	return a.storage.ListAccounts(ctx, userID)
}

func (a *SQLiteAdapter) DeleteAccount(ctx context.Context, userID, id string) error {
	return a.storage.DeleteAccount(ctx, userID, id)
}
