package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"expensetracker/internal/core"
	"expensetracker/internal/sheets"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil {
		t.Fatal("expected error for missing GOOGLE_SPREADSHEET_ID")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := New(context.Background(), Config{SpreadsheetID: "sheet-id"})
	if err == nil {
		t.Fatal("expected error without credentials")
	}
	if !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_RejectsNonServiceAccountJSON(t *testing.T) {
	_, err := New(context.Background(), Config{
		SpreadsheetID:      "sheet-id",
		ServiceAccountJSON: `{"installed":{"client_id":"test"}}`,
	})
	if err == nil {
		t.Fatal("expected error for non service account credentials")
	}
	if !strings.Contains(err.Error(), "parse service account credentials") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCredentialsJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(file, []byte(`{"from":"file"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		cfg  Config
		env  string
		want string
	}{
		{"inline wins", Config{ServiceAccountJSON: `{"from":"inline"}`, ServiceAccountFile: file}, "", `{"from":"inline"}`},
		{"file", Config{ServiceAccountFile: file}, "", `{"from":"file"}`},
		{"application default path", Config{}, file, `{"from":"file"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", tt.env)
			got, err := credentialsJSON(tt.cfg)
			if err != nil {
				t.Fatalf("credentialsJSON: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}

	t.Run("unreadable file", func(t *testing.T) {
		_, err := credentialsJSON(Config{ServiceAccountFile: filepath.Join(dir, "missing.json")})
		if err == nil {
			t.Fatal("expected read error")
		}
	})
}

func TestClient_NotInitialized(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: DefaultSheetName}
	ctx := context.Background()

	if err := c.AppendRow(ctx, sheets.Row{}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("AppendRow: expected ErrNotInitialized, got %v", err)
	}
	if _, err := c.HasMessage(ctx, "m1"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("HasMessage: expected ErrNotInitialized, got %v", err)
	}
	if err := c.EnsureHeader(ctx); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("EnsureHeader: expected ErrNotInitialized, got %v", err)
	}
}

func TestAppendRow_StoresCellsVerbatim(t *testing.T) {
	var (
		gotPath   string
		gotOption string
		gotBody   gsheet.ValueRange
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotOption = r.URL.Query().Get("valueInputOption")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-id","updates":{"updatedRange":"Expenses!A2:F2"}}`))
	}))
	defer ts.Close()

	ctx := context.Background()
	svc, err := gsheet.NewService(ctx,
		goption.WithHTTPClient(ts.Client()),
		goption.WithEndpoint(ts.URL+"/"))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	c := &Client{svc: svc, spreadsheetID: "sheet-id", sheetName: DefaultSheetName}

	row := sheets.Row{
		MessageID: "m1",
		Username:  "=HYPERLINK(\"http://x\")",
		Expense: core.Expense{
			Category: core.Other,
			Amount:   core.MoneyFromInt(5),
			Date:     core.NewDate(2024, 2, 1),
			Note:     "=SUM(A1:A9)",
		},
	}
	if err := c.AppendRow(ctx, row); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}

	if !strings.HasSuffix(gotPath, ":append") {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotOption != "RAW" {
		t.Errorf("valueInputOption = %q, want RAW", gotOption)
	}
	if len(gotBody.Values) != 1 {
		t.Fatalf("got %d rows, want 1", len(gotBody.Values))
	}
	want := []any{"2024-02-01", "=HYPERLINK(\"http://x\")", "Other", "5", "=SUM(A1:A9)", "m1"}
	cells := gotBody.Values[0]
	if len(cells) != len(want) {
		t.Fatalf("got %d cells, want %d", len(cells), len(want))
	}
	for i := range want {
		if cells[i] != want[i] {
			t.Errorf("cell %d = %v, want %v", i, cells[i], want[i])
		}
	}
}

func TestRowValuesMatchHeader(t *testing.T) {
	row := sheets.Row{
		MessageID: "m1",
		Username:  "bob",
		Expense: core.Expense{
			Category: core.Travel,
			Amount:   core.MoneyFromInt(80),
			Date:     core.NewDate(2024, 1, 6),
			Note:     "taxi",
		},
	}
	got := row.Values()
	want := []any{"2024-01-06", "bob", "Travel", "80", "taxi", "m1"}
	if len(got) != len(sheets.Header) {
		t.Fatalf("row has %d cells, header has %d", len(got), len(sheets.Header))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cell %d (%s) = %v, want %v", i, sheets.Header[i], got[i], want[i])
		}
	}
}

func TestContainsCell(t *testing.T) {
	values := [][]any{{"Message ID"}, {}, {" m1 "}, {"m2"}}
	if !containsCell(values, "m1") {
		t.Error("expected m1")
	}
	if containsCell(values, "m3") {
		t.Error("did not expect m3")
	}
}
