package sheets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const sampleCSV = `"Timestamp","Gate No.","Identification No.","Name"
"2024-05-06 08:15:00","1","1001","Ana Reyes"
"2024-05-06 08:20:00","2","1002.0","Ben Cruz"
"2024-05-06 08:25:00","1"
`

func TestReadRows(t *testing.T) {
	var gotSheet string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSheet = r.URL.Query().Get("sheet")
		w.Write([]byte(sampleCSV))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	table, err := client.ReadRows(context.Background(), "Sheet1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotSheet != "Sheet1" {
		t.Fatalf("expected sheet=Sheet1 query, got %q", gotSheet)
	}
	if len(table.Columns) != 4 || table.Columns[1] != "Gate No." {
		t.Fatalf("wrong columns: %v", table.Columns)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(table.Rows))
	}
	if table.Rows[1]["Identification No."] != "1002.0" {
		t.Fatalf("wrong cell value: %q", table.Rows[1]["Identification No."])
	}
	// Short rows are padded so every column is present.
	if v, ok := table.Rows[2]["Name"]; !ok || v != "" {
		t.Fatalf("expected padded empty Name, got %q (present=%v)", v, ok)
	}
}

func TestReadRowsHeaderOnlyIsEmptyNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`"Timestamp","Gate No.","Identification No.","Name"` + "\n"))
	}))
	defer server.Close()

	table, err := NewClient(server.URL, 5*time.Second).ReadRows(context.Background(), "Sheet1")
	if err != nil {
		t.Fatalf("empty sheet must not be an error: %v", err)
	}
	if len(table.Columns) != 4 || len(table.Rows) != 0 {
		t.Fatalf("expected header-only table, got %+v", table)
	}
}

func TestReadRowsServerErrorIsSourceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, 5*time.Second).ReadRows(context.Background(), "Sheet1")
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestReadRowsUnreachableHostIsSourceUnavailable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second)
	_, err := client.ReadRows(context.Background(), "Sheet1")
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestReadCell(t *testing.T) {
	var gotRange string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRange = r.URL.Query().Get("range")
		w.Write([]byte("\"2024-05-06 08:30:00\"\n"))
	}))
	defer server.Close()

	val, err := NewClient(server.URL, 5*time.Second).ReadCell(context.Background(), "Metadata", "A1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotRange != "A1" {
		t.Fatalf("expected range=A1 query, got %q", gotRange)
	}
	if val != "2024-05-06 08:30:00" {
		t.Fatalf("wrong cell value: %q", val)
	}
}

func TestReadCellEmptyIsNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// gviz returns an empty body for an empty cell range
	}))
	defer server.Close()

	val, err := NewClient(server.URL, 5*time.Second).ReadCell(context.Background(), "Metadata", "A1")
	if err != nil {
		t.Fatalf("empty cell must not be an error: %v", err)
	}
	if val != "" {
		t.Fatalf("expected empty value, got %q", val)
	}
}
