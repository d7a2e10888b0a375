package sheets

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrSourceUnavailable indicates the spreadsheet could not be reached at all.
// Callers must treat this differently from an empty worksheet: an empty sheet
// is a legitimate zero-row result, an unavailable source is not.
var ErrSourceUnavailable = errors.New("sheet source unavailable")

// Row is a single worksheet row keyed by column name.
type Row map[string]string

// Table is the raw content of a worksheet: the header columns plus the data
// rows. Columns are kept separately so a schema check works even when the
// sheet has a header but no data.
type Table struct {
	Columns []string
	Rows    []Row
}

// Source is the inbound tabular data source consumed by the poller.
type Source interface {
	// ReadRows returns all rows of the named worksheet.
	ReadRows(ctx context.Context, worksheet string) (*Table, error)
	// ReadCell returns the value of a single cell (e.g. the change marker).
	// An empty cell returns "" with a nil error.
	ReadCell(ctx context.Context, worksheet, cell string) (string, error)
}

// Client reads worksheets through the Google Sheets published-CSV endpoint
// (gviz). The spreadsheet must be shared as "anyone with the link can view";
// no API credentials are involved.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a sheet client for the given spreadsheet base URL, e.g.
// "https://docs.google.com/spreadsheets/d/<id>".
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) csvURL(worksheet, cellRange string) string {
	u := fmt.Sprintf("%s/gviz/tq?tqx=out:csv&sheet=%s", c.baseURL, url.QueryEscape(worksheet))
	if cellRange != "" {
		u += "&range=" + url.QueryEscape(cellRange)
	}
	return u
}

func (c *Client) fetchCSV(ctx context.Context, rawURL string) ([][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %s", ErrSourceUnavailable, resp.Status)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1 // gviz pads rows unevenly
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: malformed csv: %v", ErrSourceUnavailable, err)
	}
	return records, nil
}

// ReadRows fetches the whole worksheet as CSV. The first record is treated as
// the header; rows shorter than the header are padded with empty strings.
func (c *Client) ReadRows(ctx context.Context, worksheet string) (*Table, error) {
	records, err := c.fetchCSV(ctx, c.csvURL(worksheet, ""))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	columns := make([]string, len(records[0]))
	for i, col := range records[0] {
		columns[i] = strings.TrimSpace(col)
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}

	return &Table{Columns: columns, Rows: rows}, nil
}

// ReadCell fetches a single cell range and returns its first value, trimmed.
func (c *Client) ReadCell(ctx context.Context, worksheet, cell string) (string, error) {
	records, err := c.fetchCSV(ctx, c.csvURL(worksheet, cell))
	if err != nil {
		return "", err
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return "", nil
	}
	return strings.TrimSpace(records[0][0]), nil
}
