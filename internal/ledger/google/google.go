// Package google exports financial records to a Google Sheets ledger.
// Each user gets one tab named "<base> <userID>"; rows are appended in
// arrival order and the returned A1 reference is logged by the worker.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"finanze/internal/core"
	"finanze/internal/ledger"

	"golang.org/x/oauth2"
	oauthgoogle "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const dateLayout = "2006-01-02"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string

	// knownSheets caches tab titles already verified or created, so we
	// don't issue a spreadsheet Get per exported record.
	knownSheets map[string]bool
}

var _ ledger.ExportWriter = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_SHEET_NAME (default "Registro").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetBase := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetBase == "" {
		sheetBase = "Registro"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     sheetBase,
		knownSheets:   map[string]bool{},
	}, nil
}

// newSheetsService initializes a Sheets service. A user OAuth client plus
// token (minted with cmd/oauth-init) takes precedence over service account
// credentials; personal spreadsheets usually only have the former.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	if client, ok, err := oauthHTTPClient(ctx); err != nil {
		return nil, err
	} else if ok {
		service, err := gsheet.NewService(ctx, goption.WithHTTPClient(client))
		if err != nil {
			return nil, fmt.Errorf("create sheets service: %w", err)
		}
		return service, nil
	}

	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing Google credentials (set the OAuth client and token, GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// oauthHTTPClient builds an authorized HTTP client from a user OAuth client
// and a stored token, when both are configured. Returns ok=false when the
// OAuth pair is absent so the caller can fall back to service accounts.
func oauthHTTPClient(ctx context.Context) (client *http.Client, ok bool, err error) {
	clientJSON, err := readEnvOrFile("GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE")
	if err != nil {
		return nil, false, err
	}
	tokenJSON, err := readEnvOrFile("GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE")
	if err != nil {
		return nil, false, err
	}
	if clientJSON == nil || tokenJSON == nil {
		return nil, false, nil
	}

	cfg, err := oauthgoogle.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, false, fmt.Errorf("oauth client config: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(tokenJSON, &tok); err != nil {
		return nil, false, fmt.Errorf("oauth token: %w", err)
	}
	return cfg.Client(ctx, &tok), true, nil
}

// readEnvOrFile returns the inline env value, or the contents of the file
// the companion env var points at; nil when neither is set.
func readEnvOrFile(inlineKey, fileKey string) ([]byte, error) {
	if v := strings.TrimSpace(os.Getenv(inlineKey)); v != "" {
		return []byte(v), nil
	}
	if path := strings.TrimSpace(os.Getenv(fileKey)); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return b, nil
	}
	return nil, nil
}

// ExportRecord appends the record to the user's tab and returns the A1
// reference of the written row.
func (c *Client) ExportRecord(ctx context.Context, userID string, r core.Record) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if err := r.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}

	sheetName := c.sheetName(userID)
	if err := c.ensureSheet(ctx, sheetName); err != nil {
		return "", err
	}

	rng := fmt.Sprintf("%s!A:A", sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", sheetName, err)
	}
	nextRow := len(resp.Values) + 1
	if nextRow == 1 {
		// Fresh tab: write the header row first.
		headerRange := fmt.Sprintf("%s!A1:J1", sheetName)
		hv := &gsheet.ValueRange{Values: [][]any{recordHeader()}}
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, headerRange, hv).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("write header in sheet %s: %w", sheetName, err)
		}
		nextRow = 2
	}

	dataRange := fmt.Sprintf("%s!A%d:J%d", sheetName, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{recordRow(r)}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("update row in sheet %s: %w", sheetName, err)
	}

	return dataRange, nil
}

func (c *Client) sheetName(userID string) string {
	return fmt.Sprintf("%s %s", c.sheetBase, userID)
}

// ensureSheet creates the user's tab if the spreadsheet does not have it yet.
func (c *Client) ensureSheet(ctx context.Context, sheetName string) error {
	if c.knownSheets[sheetName] {
		return nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == sheetName {
			c.knownSheets[sheetName] = true
			return nil
		}
	}

	slog.InfoContext(ctx, "Creating ledger sheet", "sheet", sheetName)
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: sheetName},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", sheetName, err)
	}
	c.knownSheets[sheetName] = true
	return nil
}

func recordHeader() []any {
	return []any{"ID", "Tipo", "Flusso", "Importo", "Descrizione", "Categoria", "Conto", "Inizio", "Fine", "Scadenza"}
}

// recordRow flattens a record into the spreadsheet column order. Indefinite
// bounds render empty; month-only bounds render as "2006-01".
func recordRow(r core.Record) []any {
	return []any{
		r.ID,
		string(r.Kind),
		string(r.Flow),
		r.Amount.String(),
		r.Description,
		r.Category,
		r.AccountID,
		boundCell(r.Recurrence.Start),
		boundCell(r.Recurrence.End),
		boundCell(r.Execution),
	}
}

func boundCell(b core.Bound) string {
	if b.Indefinite() {
		return ""
	}
	if b.MonthOnly() {
		return b.Date().Format("2006-01")
	}
	return b.Date().Format(dateLayout)
}
