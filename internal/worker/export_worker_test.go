package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"finanze/internal/amqp"
	"finanze/internal/core"
	"finanze/internal/storage"
)

type fakeExporter struct {
	exported []string
	fail     bool
}

func (f *fakeExporter) ExportRecord(ctx context.Context, userID string, r core.Record) (string, error) {
	if f.fail {
		return "", errors.New("sheets unavailable")
	}
	f.exported = append(f.exported, r.ID)
	return "Registro!A2:J2", nil
}

func newTestWorker(t *testing.T) (*ExportWorker, *storage.SQLiteRepository, *fakeExporter) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "finanze.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	exp := &fakeExporter{}
	return NewExportWorker(repo, exp, 10), repo, exp
}

func saveRecord(t *testing.T, repo *storage.SQLiteRepository, userID string) string {
	t.Helper()
	amount, _ := core.ParseAmount("42.50")
	id, err := repo.Append(context.Background(), userID, core.Record{
		Kind:        core.KindTransaction,
		Flow:        core.FlowExpense,
		Amount:      amount,
		Description: "spesa settimanale",
		Category:    "groceries",
		AccountID:   "main",
	})
	if err != nil {
		t.Fatalf("append record: %v", err)
	}
	return id
}

func TestHandleMessageExport(t *testing.T) {
	w, repo, exp := newTestWorker(t)
	ctx := context.Background()

	id := saveRecord(t, repo, "user-1")

	if err := w.HandleMessage(ctx, amqp.NewExportMessage("user-1", id)); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(exp.exported) != 1 || exp.exported[0] != id {
		t.Errorf("exported = %v, want [%s]", exp.exported, id)
	}

	// The record must leave the pending queue.
	pending, err := repo.ListUnexported(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnexported: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after export = %d, want 0", len(pending))
	}
}

func TestHandleMessageExportFailureRequeues(t *testing.T) {
	w, repo, exp := newTestWorker(t)
	ctx := context.Background()

	id := saveRecord(t, repo, "user-1")
	exp.fail = true

	if err := w.HandleMessage(ctx, amqp.NewExportMessage("user-1", id)); err == nil {
		t.Fatal("expected error when exporter fails")
	}

	pending, err := repo.ListUnexported(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnexported: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("pending after failed export = %d, want 1", len(pending))
	}
}

func TestHandleMessageMissingRecordSkips(t *testing.T) {
	w, _, exp := newTestWorker(t)

	if err := w.HandleMessage(context.Background(), amqp.NewExportMessage("user-1", "no-such-id")); err != nil {
		t.Fatalf("missing record should not error: %v", err)
	}
	if len(exp.exported) != 0 {
		t.Errorf("exported = %v, want none", exp.exported)
	}
}

func TestHandleMessageDeleteIsNoop(t *testing.T) {
	w, _, exp := newTestWorker(t)

	if err := w.HandleMessage(context.Background(), amqp.NewDeleteMessage("user-1", "rec-1")); err != nil {
		t.Fatalf("delete message: %v", err)
	}
	if len(exp.exported) != 0 {
		t.Errorf("delete must not export, got %v", exp.exported)
	}
}

func TestProcessUnexportedDrainsBacklog(t *testing.T) {
	w, repo, exp := newTestWorker(t)
	ctx := context.Background()

	saveRecord(t, repo, "user-1")
	saveRecord(t, repo, "user-2")
	saveRecord(t, repo, "user-1")

	if err := w.ProcessUnexported(ctx); err != nil {
		t.Fatalf("ProcessUnexported: %v", err)
	}
	if len(exp.exported) != 3 {
		t.Errorf("exported %d records, want 3", len(exp.exported))
	}

	pending, err := repo.ListUnexported(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnexported: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after drain = %d, want 0", len(pending))
	}

	// Second pass finds nothing.
	exp.exported = nil
	if err := w.ProcessUnexported(ctx); err != nil {
		t.Fatalf("second ProcessUnexported: %v", err)
	}
	if len(exp.exported) != 0 {
		t.Errorf("re-exported %v, want none", exp.exported)
	}
}
