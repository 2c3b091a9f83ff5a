package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"finanze/internal/core"
	"finanze/internal/ledger"
)

var (
	ErrRecordNotFound  = ledger.ErrRecordNotFound
	ErrAccountNotFound = ledger.ErrAccountNotFound
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append implements ledger.RecordWriter.
func (r *SQLiteRepository) Append(ctx context.Context, userID string, rec core.Record) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	startDate, startMonthOnly := boundColumns(rec.Recurrence.Start)
	endDate, endMonthOnly := boundColumns(rec.Recurrence.End)
	execDate, execMonthOnly := boundColumns(rec.Execution)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO records (
			id, user_id, kind, flow, amount, description, category, account_id,
			is_recurring, start_date, start_month_only, end_date, end_month_only,
			execution_date, execution_month_only, probability, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, string(rec.Kind), string(rec.Flow), rec.Amount.String(),
		rec.Description, rec.Category, rec.AccountID,
		rec.Recurrence.Recurring, startDate, startMonthOnly, endDate, endMonthOnly,
		execDate, execMonthOnly, int(rec.Probability), now.Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}

	slog.InfoContext(ctx, "Record saved to SQLite",
		"id", id,
		"kind", rec.Kind,
		"description", rec.Description,
		"amount", rec.Amount.String())

	return id, nil
}

// Update implements ledger.RecordUpdater.
func (r *SQLiteRepository) Update(ctx context.Context, userID string, rec core.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	startDate, startMonthOnly := boundColumns(rec.Recurrence.Start)
	endDate, endMonthOnly := boundColumns(rec.Recurrence.End)
	execDate, execMonthOnly := boundColumns(rec.Execution)

	res, err := r.db.ExecContext(ctx, `
		UPDATE records SET
			kind = ?, flow = ?, amount = ?, description = ?, category = ?,
			account_id = ?, is_recurring = ?, start_date = ?, start_month_only = ?,
			end_date = ?, end_month_only = ?, execution_date = ?,
			execution_month_only = ?, probability = ?, exported_at = NULL
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		string(rec.Kind), string(rec.Flow), rec.Amount.String(), rec.Description,
		rec.Category, rec.AccountID, rec.Recurrence.Recurring,
		startDate, startMonthOnly, endDate, endMonthOnly,
		execDate, execMonthOnly, int(rec.Probability),
		rec.ID, userID)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Delete implements ledger.RecordDeleter with a soft delete.
func (r *SQLiteRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE records SET deleted_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339), id, userID)
	if err != nil {
		return fmt.Errorf("soft delete record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRecordNotFound
	}

	slog.InfoContext(ctx, "Record soft deleted", "id", id)
	return nil
}

// ListRecords implements ledger.RecordLister.
func (r *SQLiteRepository) ListRecords(ctx context.Context, userID string) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, flow, amount, description, category, account_id,
		       is_recurring, start_date, start_month_only, end_date, end_month_only,
		       execution_date, execution_month_only, probability, created_at
		FROM records
		WHERE user_id = ? AND deleted_at IS NULL
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []core.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetRecord retrieves a single non-deleted record by id.
func (r *SQLiteRepository) GetRecord(ctx context.Context, userID, id string) (core.Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, kind, flow, amount, description, category, account_id,
		       is_recurring, start_date, start_month_only, end_date, end_month_only,
		       execution_date, execution_month_only, probability, created_at
		FROM records
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL`, id, userID)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, ErrRecordNotFound
	}
	return rec, err
}

// UnexportedRecord is the minimal row the export worker needs.
type UnexportedRecord struct {
	ID     string
	UserID string
}

// ListUnexported returns records never exported to the external ledger,
// oldest first. Used by the worker's periodic catch-up scan.
func (r *SQLiteRepository) ListUnexported(ctx context.Context, limit int) ([]UnexportedRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id FROM records
		WHERE exported_at IS NULL AND deleted_at IS NULL
		ORDER BY created_at ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unexported records: %w", err)
	}
	defer rows.Close()

	var pending []UnexportedRecord
	for rows.Next() {
		var p UnexportedRecord
		if err := rows.Scan(&p.ID, &p.UserID); err != nil {
			return nil, fmt.Errorf("scan unexported record: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkExported records a successful ledger export.
func (r *SQLiteRepository) MarkExported(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE records SET exported_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("mark record exported: %w", err)
	}

	slog.InfoContext(ctx, "Record marked as exported", "id", id)
	return nil
}

// CreateAccount implements ledger.AccountWriter.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, userID string, a core.Account) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, name, type, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		id, userID, a.Name, string(a.Type), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("insert account: %w", err)
	}
	return id, nil
}

// ListAccounts implements ledger.AccountLister.
func (r *SQLiteRepository) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, type FROM accounts
		WHERE user_id = ?
		ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var a core.Account
		var accountType string
		if err := rows.Scan(&a.ID, &a.Name, &accountType); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Type = core.AccountType(accountType)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// DeleteAccount implements ledger.AccountDeleter. Records referencing the
// account are left in place (orphaned), matching the weak relation.
func (r *SQLiteRepository) DeleteAccount(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM accounts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func boundColumns(b core.Bound) (date sql.NullString, monthOnly bool) {
	if b.Indefinite() {
		return sql.NullString{}, false
	}
	return sql.NullString{String: b.Date().Format(dateLayout), Valid: true}, b.MonthOnly()
}

func boundFromColumns(date sql.NullString, monthOnly bool) (core.Bound, error) {
	if !date.Valid {
		return core.IndefiniteBound(), nil
	}
	d, err := time.Parse(dateLayout, date.String)
	if err != nil {
		return core.Bound{}, fmt.Errorf("parse stored date %q: %w", date.String, err)
	}
	return core.BoundAt(d, monthOnly), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (core.Record, error) {
	var (
		rec                                   core.Record
		kind, flow, amount, createdAt         string
		startDate, endDate, execDate          sql.NullString
		startMonthly, endMonthly, execMonthly bool
		probability                           int
	)
	err := row.Scan(&rec.ID, &kind, &flow, &amount, &rec.Description,
		&rec.Category, &rec.AccountID, &rec.Recurrence.Recurring,
		&startDate, &startMonthly, &endDate, &endMonthly,
		&execDate, &execMonthly, &probability, &createdAt)
	if err != nil {
		return core.Record{}, err
	}

	rec.Kind = core.Kind(kind)
	rec.Flow = core.Flow(flow)
	rec.Probability = core.Probability(probability)

	if rec.Amount, err = core.ParseAmount(amount); err != nil {
		return core.Record{}, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	if rec.Recurrence.Start, err = boundFromColumns(startDate, startMonthly); err != nil {
		return core.Record{}, err
	}
	if rec.Recurrence.End, err = boundFromColumns(endDate, endMonthly); err != nil {
		return core.Record{}, err
	}
	if rec.Execution, err = boundFromColumns(execDate, execMonthly); err != nil {
		return core.Record{}, err
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return core.Record{}, fmt.Errorf("parse stored created_at %q: %w", createdAt, err)
	}
	return rec, nil
}
